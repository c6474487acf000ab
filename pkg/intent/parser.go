package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	"github.com/kr0ner/multistage-assist/pkg/domainconfig"
	"github.com/kr0ner/multistage-assist/pkg/types"
)

// Result is a fully parsed utterance: the domain DetectDomain picked, the
// intent the LLM filled in for it, and whatever slots the LLM extracted.
type Result struct {
	Domain string
	Intent string
	Slots  map[string]string
}

// Parser detects a domain and fills its intent/slot schema via an LLM.
type Parser struct {
	llm llm.Provider
}

// NewParser returns a Parser backed by provider. provider may be nil, in
// which case Parse always misses once a domain has been detected.
func NewParser(provider llm.Provider) *Parser {
	return &Parser{llm: provider}
}

// Parse detects text's domain and asks the LLM to fill its intent/slot
// schema. It returns (nil, nil) — a miss, not an error — when no domain
// keyword matches, no LLM is configured, the LLM's response is
// unparseable, or the returned intent is not one the domain supports. A
// non-nil error is returned only for the underlying LLM call failing.
func (p *Parser) Parse(ctx context.Context, text string) (*Result, error) {
	domain, ok := DetectDomain(text)
	if !ok {
		return nil, nil
	}
	if p.llm == nil {
		return nil, nil
	}
	cfg, ok := domainconfig.Get(domain)
	if !ok {
		return nil, nil
	}

	tool := buildToolDefinition(domain, cfg)
	resp, err := p.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: buildSystemPrompt(domain, cfg),
		Messages: []types.Message{
			{Role: "user", Content: text},
		},
		Tools:       []types.ToolDefinition{tool},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("intent: complete: %w", err)
	}
	if resp == nil {
		return nil, nil
	}

	raw, ok := extractToolArguments(resp, tool.Name)
	if !ok {
		return nil, nil
	}

	var parsed struct {
		Intent string            `json:"intent"`
		Slots  map[string]string `json:"slots"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, nil
	}
	if parsed.Intent == "" || !slices.Contains(cfg.Intents, parsed.Intent) {
		return nil, nil
	}
	if parsed.Slots == nil {
		parsed.Slots = map[string]string{}
	}
	if parsed.Slots["domain"] == "" {
		parsed.Slots["domain"] = domain
	}
	return &Result{Domain: domain, Intent: parsed.Intent, Slots: parsed.Slots}, nil
}

// extractToolArguments prefers a matching tool call's raw Arguments; if
// the model answered in plain content instead (some providers do, despite
// being offered a tool), it falls back to the outermost JSON object in
// Content.
func extractToolArguments(resp *llm.CompletionResponse, name string) (string, bool) {
	for _, tc := range resp.ToolCalls {
		if tc.Name == name {
			return tc.Arguments, true
		}
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", false
	}
	return extractJSONObject(content), true
}

// extractJSONObject trims any leading/trailing prose a chat-tuned model
// wraps its JSON answer in, keeping only the outermost object.
func extractJSONObject(content string) string {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end < start {
		return content
	}
	return content[start : end+1]
}

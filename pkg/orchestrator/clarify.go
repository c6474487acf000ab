package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	"github.com/kr0ner/multistage-assist/pkg/types"
)

// clarificationSystemPrompt is ClarificationCapability.PROMPT["system"], kept
// verbatim: it is tuned wording, not a restatement of behavior we control.
const clarificationSystemPrompt = `
You are a language model that obtains intents from a German user commands for smart home control.

## Input
- user_input: A German natural language command.

## Rules
1. Split the input into a list of precise **atomic commands** in German only if the target is different.
2. Each command must describe exactly one action.
3. Use natural German phrasing such as:
    - "Schalte ... an" / "Schalte ... aus"
    - "Mache ... heller" (if it is too dark)
    - "Mache ... dunkler" (if it is too bright)
    - "Fahre ... hoch/runter"
    - "Setze ... auf ..."
    - "Wie ist ...?"
4. Keep all German words exactly as spoken by the user (e.g. if they say "Dusche", keep "Dusche").
5. If an area is not explicitly mentioned, do not invent or guess one.
6. Output only a JSON array of strings, each string being a precise German instruction.

## Indirect Command Examples
Input: "Im Wohnzimmer ist es zu dunkel"
Output: ["Mache das Licht im Wohnzimmer heller"]

Input: "Es ist zu hell in der Küche"
Output: ["Mache das Licht in der Küche dunkler"]

## Multi-Command Examples
Input: "Mach das Licht im Wohnzimmer an und die Jalousien runter"
Output: ["Schalte das Licht im Wohnzimmer an", "Fahre die Jalousien im Wohnzimmer runter"]

Input: "Öffne den Rolladen im Büro zu 5%"
Output: ["Öffne den Rolladen im Büro zu 5%"]
`

// clarify asks the model to split a compound or indirect utterance into
// atomic German commands. A miss (unparseable response, empty provider)
// returns (nil, nil); the caller falls back to treating text as one command.
//
// Grounded on capabilities/clarification.py's ClarificationCapability.run.
func clarify(ctx context.Context, provider llm.Provider, text string) ([]string, error) {
	if provider == nil {
		return nil, nil
	}
	resp, err := provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: clarificationSystemPrompt,
		Messages: []types.Message{
			{Role: "user", Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: clarify: %w", err)
	}
	if resp == nil {
		return nil, nil
	}

	raw := extractJSONArray(resp.Content)
	if raw == "" {
		return nil, nil
	}
	var commands []string
	if err := json.Unmarshal([]byte(raw), &commands); err != nil {
		return nil, nil
	}
	cleaned := make([]string, 0, len(commands))
	for _, c := range commands {
		c = strings.TrimSpace(c)
		if c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil
	}
	return cleaned, nil
}

// extractJSONArray trims any leading/trailing prose a chat-tuned model wraps
// its JSON answer in, keeping only the outermost array.
func extractJSONArray(content string) string {
	content = strings.TrimSpace(content)
	start := strings.IndexByte(content, '[')
	end := strings.LastIndexByte(content, ']')
	if start < 0 || end < start {
		return ""
	}
	return content[start : end+1]
}

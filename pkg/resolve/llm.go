package resolve

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	"github.com/kr0ner/multistage-assist/pkg/types"
)

// locationPrompt is the system prompt sent to the LLM fallback tier of the
// area and floor resolvers. It mirrors the synonym examples and response
// contract the fast-path matchers already cover, so the model only ever
// sees the cases those passes gave up on.
const locationPrompt = `Du bist ein Smart-Home-Assistent, der eine gesprochene Ortsangabe auf den internen Home-Assistant-Namen abbildet.

Eingabe:
- user_query: die vom Nutzer genannte Ortsangabe (z.B. "Bad", "Keller", "Oben")
- candidates: die Liste verfügbarer Namen (Räume oder Etagen)

Aufgabe:
1. Finde den Kandidaten, der am besten zu user_query passt.
2. Berücksichtige Synonyme: "Bad" -> "Badezimmer", "Keller" -> "Untergeschoss", "Unten" -> "Erdgeschoss".
3. Wenn user_query das ganze Haus meint ("Haus", "Wohnung", "Überall", "Alles"), antworte mit "GLOBAL".
4. Wenn kein Kandidat plausibel passt, antworte mit null.

Antworte ausschließlich mit JSON der Form {"match": "<Kandidat>"|"GLOBAL"|null}.`

type locationQuery struct {
	UserQuery  string   `json:"user_query"`
	Candidates []string `json:"candidates"`
}

type locationMatch struct {
	Match *string `json:"match"`
}

// llmMatchLocation asks provider to pick one of candidates for query,
// returning ("", false) on any failure (including a malformed or empty
// response) so the caller falls back to the unknown/candidates path.
func llmMatchLocation(ctx context.Context, provider llm.Provider, query string, candidates []string) (string, bool) {
	if provider == nil {
		return "", false
	}
	payload, err := json.Marshal(locationQuery{UserQuery: query, Candidates: candidates})
	if err != nil {
		return "", false
	}
	resp, err := provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: locationPrompt,
		Messages: []types.Message{
			{Role: "user", Content: string(payload)},
		},
		Temperature: 0,
	})
	if err != nil || resp == nil {
		return "", false
	}
	var parsed locationMatch
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &parsed); err != nil {
		return "", false
	}
	if parsed.Match == nil {
		return "", false
	}
	match := strings.TrimSpace(*parsed.Match)
	if match == "" {
		return "", false
	}
	return match, true
}

// extractJSON trims any leading/trailing prose a chat-tuned model wraps its
// JSON answer in, keeping only the outermost object.
func extractJSON(content string) string {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end < start {
		return content
	}
	return content[start : end+1]
}

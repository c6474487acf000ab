package execute

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	"github.com/kr0ner/multistage-assist/pkg/fuzzy"
	"github.com/kr0ner/multistage-assist/pkg/german"
	"github.com/kr0ner/multistage-assist/pkg/host"
	"github.com/kr0ner/multistage-assist/pkg/types"
)

const selectionFuzzyThreshold = 0.5

const disambiguationPrompt = `Du bist ein Smart-Home-Assistent. Der Nutzer wurde gefragt, welches von mehreren Geräten er meint, und hat geantwortet.

Eingabe:
- answer: die Antwort des Nutzers
- candidates: die Liste der zur Auswahl stehenden Gerätenamen

Aufgabe: Finde den Kandidaten, der am besten zur Antwort passt. Wenn kein Kandidat plausibel passt, antworte mit null.

Antworte ausschließlich mit JSON der Form {"match": "<Kandidat>"|null}.`

type disambiguationQuery struct {
	Answer     string   `json:"answer"`
	Candidates []string `json:"candidates"`
}

type disambiguationMatch struct {
	Match *string `json:"match"`
}

// buildDisambiguationQuestion renders the "which one did you mean" prompt,
// grounded on original_source/capabilities/disambiguation.py.
func buildDisambiguationQuestion(names []string) string {
	switch len(names) {
	case 0:
		return "Welches Gerät meinst du?"
	case 1:
		return "Meinst du " + names[0] + "?"
	case 2:
		return "Meinst du " + names[0] + " oder " + names[1] + "?"
	default:
		options := strings.Join(names[:len(names)-1], ", ") + " oder " + names[len(names)-1]
		return "Welches meinst du: " + options + "?"
	}
}

var ordinalNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d+)\.?$`),
	regexp.MustCompile(`^nr\.?\s*(\d+)$`),
	regexp.MustCompile(`^nummer\s*(\d+)$`),
	regexp.MustCompile(`^die\s+(\d+)\.$`),
}

// selectFromAnswer maps a free-form disambiguation answer to a subset of
// candidates, via the fast-path cascade from
// original_source/capabilities/disambiguation_select.py (ordinals,
// all/none keywords, fuzzy name match). Returns ok=false on a miss so the
// caller can fall further back to [selectViaLLM] before re-asking.
func selectFromAnswer(text string, candidates []host.Entity) (selected []host.Entity, ok bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" || len(candidates) == 0 {
		return nil, false
	}
	words := strings.Fields(text)

	for _, w := range words {
		if _, none := german.SelectNoneKeywords[w]; none {
			return nil, true
		}
	}

	bothWords := map[string]struct{}{"beide": {}, "beiden": {}, "beides": {}}
	for _, w := range words {
		if _, both := bothWords[w]; both {
			if len(candidates) == 2 {
				return candidates, true
			}
		}
		if _, all := german.SelectAllKeywords[w]; all {
			return candidates, true
		}
	}

	for _, w := range words {
		clean := strings.TrimRight(w, ".,!?")
		if n, ok := german.OrdinalWords[clean]; ok {
			return selectOrdinal(n, candidates)
		}
	}
	for _, pattern := range ordinalNumberPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return selectOrdinal(n, candidates)
			}
		}
	}

	if match, ok := fuzzyMatchCandidate(text, candidates); ok {
		return []host.Entity{match}, true
	}

	return nil, false
}

func selectOrdinal(n int, candidates []host.Entity) ([]host.Entity, bool) {
	if n == -1 {
		n = len(candidates)
	}
	if n < 1 || n > len(candidates) {
		return nil, false
	}
	return []host.Entity{candidates[n-1]}, true
}

// selectViaLLM asks provider to pick one of candidates for text, the
// fallback tier original_source/capabilities/disambiguation_select.py
// reaches for once ordinals, keywords, and fuzzy matching all miss.
// Returns ok=false on a nil provider or any failure, including a
// malformed or null response, so the caller re-asks instead.
func selectViaLLM(ctx context.Context, provider llm.Provider, text string, candidates []host.Entity) (host.Entity, bool) {
	if provider == nil {
		return host.Entity{}, false
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = displayName(c)
	}
	payload, err := json.Marshal(disambiguationQuery{Answer: text, Candidates: names})
	if err != nil {
		return host.Entity{}, false
	}
	resp, err := provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: disambiguationPrompt,
		Messages: []types.Message{
			{Role: "user", Content: string(payload)},
		},
		Temperature: 0,
	})
	if err != nil || resp == nil {
		return host.Entity{}, false
	}
	var parsed disambiguationMatch
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &parsed); err != nil || parsed.Match == nil {
		return host.Entity{}, false
	}
	match := strings.TrimSpace(*parsed.Match)
	for _, c := range candidates {
		if displayName(c) == match {
			return c, true
		}
	}
	return host.Entity{}, false
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

func fuzzyMatchCandidate(text string, candidates []host.Entity) (host.Entity, bool) {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	best, score, ok := fuzzy.BestMatch(text, names)
	if !ok || score < selectionFuzzyThreshold {
		for _, c := range candidates {
			if fuzzy.SubstringPreferred(text, c.Name) {
				return c, true
			}
		}
		return host.Entity{}, false
	}
	for _, c := range candidates {
		if c.Name == best {
			return c, true
		}
	}
	return host.Entity{}, false
}

package intent

import (
	"strings"

	"github.com/kr0ner/multistage-assist/pkg/domainconfig"
	"github.com/kr0ner/multistage-assist/pkg/types"
)

// toolName is the single tool every domain offers the LLM; only its
// Parameters schema (intent enum, slot set) varies per domain.
const toolName = "resolve_intent"

// slotFields is the fixed slot set every domain's schema exposes,
// regardless of which ones that domain actually fills. "command" carries
// a relative-adjustment token ("step_up", "step_down") for domains whose
// rule text says a numeric value is unnecessary; the step controller
// resolves it against the target entity's current state.
var slotFields = []string{"area", "name", "domain", "floor", "device_class", "duration", "command"}

// domainRules supplies one short domain-specific instruction appended to
// the system prompt, mirroring the free-text guidance the original
// per-domain intent tables carried alongside their slot lists. A domain
// with nothing special to say is omitted.
var domainRules = map[string]string{
	"light":    "Bei relativen Helligkeitsänderungen (heller, dunkler) wird kein Zahlenwert benötigt, das übernimmt die Schrittsteuerung.",
	"cover":    "Eine genannte Position gehört in den freien Äußerungstext, nicht in duration.",
	"fan":      "Bei relativen Stufenänderungen (schneller, langsamer) wird kein Zahlenwert benötigt.",
	"sensor":   "device_class ist Pflicht, wenn die Äußerung eine Messgröße nennt (Temperatur, Luftfeuchtigkeit, Zustand).",
	"timer":    "duration muss die gesprochene Zeitspanne wörtlich enthalten (\"10 Minuten\"); name ist die Bezeichnung des Timers, nicht des Geräts.",
	"calendar": "Datums- und Uhrzeitangaben bleiben als Freitext in duration; die Terminauflösung interpretiert sie separat.",
}

// buildToolDefinition constructs the tool-calling schema offered to the
// LLM for domain: an intent enum restricted to cfg's allowed intents, and
// a flat slot object over the fixed slotFields set.
func buildToolDefinition(domain string, cfg domainconfig.Domain) types.ToolDefinition {
	slotProps := make(map[string]any, len(slotFields))
	for _, f := range slotFields {
		slotProps[f] = map[string]any{"type": "string"}
	}
	return types.ToolDefinition{
		Name:        toolName,
		Description: "Füllt Intent und Slots für eine als " + domain + " erkannte Äußerung.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"intent": map[string]any{
					"type": []string{"string", "null"},
					"enum": cfg.Intents,
				},
				"slots": map[string]any{
					"type":       "object",
					"properties": slotProps,
				},
			},
			"required": []string{"intent", "slots"},
		},
		Idempotent: true,
	}
}

// buildSystemPrompt renders the German instruction text accompanying the
// tool schema: the detected domain, its allowed intents, the fixed slot
// list, the "only fill name for a specific device" rule every domain
// shares, and that domain's own rule text if any.
func buildSystemPrompt(domain string, cfg domainconfig.Domain) string {
	var b strings.Builder
	b.WriteString("Du bist ein Smart-Home-Assistent. Die Äußerung wurde der Domäne \"")
	b.WriteString(domain)
	b.WriteString("\" zugeordnet.\n\n")
	b.WriteString("Erlaubte Intents: " + strings.Join(cfg.Intents, ", ") + "\n")
	b.WriteString("Slots: area, name, domain, floor, device_class, duration, command. Fülle nur, was die Äußerung hergibt; leere Slots bleiben weg.\n")
	b.WriteString("Fülle 'name' nur, wenn ein konkretes Gerät genannt wird. Bei generischen Begriffen (\"das Licht\", \"alle Lampen\") bleibt 'name' leer.\n")
	b.WriteString("Fülle 'command' nur mit \"step_up\" oder \"step_down\" bei einer relativen Änderung ohne Zahlenwert (heller/dunkler, schneller/langsamer, wärmer/kälter).\n")
	if rule, ok := domainRules[domain]; ok {
		b.WriteString(rule + "\n")
	}
	b.WriteString("\nRufe ausschließlich das Tool " + toolName + " mit {intent, slots} auf. Passt kein Intent, setze intent auf null.")
	return b.String()
}

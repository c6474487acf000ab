package execute

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kr0ner/multistage-assist/pkg/german"
)

// joinNames renders a list of display names the way a German speaker lists
// them: a single "und" before the last item, commas between the rest.
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " und " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " und " + names[len(names)-1]
	}
}

// buildConfirmation deterministically renders the same kind of sentence
// the original asked an LLM to write (see
// original_source/capabilities/intent_confirmation.py's PROMPT): it is used
// only as a fallback when the host platform's own per-entity intent
// response carried no speech of its own.
func buildConfirmation(intentName string, names []string, slots map[string]any) string {
	if len(names) == 0 {
		return "Hm, ich habe dafür gerade keine passenden Ziele."
	}
	target := joinNames(names)

	switch intentName {
	case "HassTurnOn":
		return german.NormalizeSpeechForTTS(fmt.Sprintf("Alles klar, ich schalte %s ein.", target))
	case "HassTurnOff":
		return german.NormalizeSpeechForTTS(fmt.Sprintf("Alles klar, ich schalte %s aus.", target))
	}

	if suffix, ok := slotSuffix(slots); ok {
		return german.NormalizeSpeechForTTS(fmt.Sprintf("Okay, ich stelle %s %s.", target, suffix))
	}
	return german.NormalizeSpeechForTTS(fmt.Sprintf("Okay, ich führe das für %s aus.", target))
}

// slotSuffix renders the first param worth mentioning, in the priority
// order the original prompt's rules listed them.
func slotSuffix(slots map[string]any) (string, bool) {
	if v, ok := numericSlot(slots, "temperature"); ok {
		return fmt.Sprintf("auf %s°C", v), true
	}
	for _, key := range []string{"brightness", "percentage", "position", "volume"} {
		if v, ok := numericSlot(slots, key); ok {
			return fmt.Sprintf("auf %s%%", v), true
		}
	}
	if v, ok := stringSlot(slots, "color"); ok {
		return fmt.Sprintf("auf %s", v), true
	}
	for _, key := range []string{"mode", "scene"} {
		if v, ok := stringSlot(slots, key); ok {
			return fmt.Sprintf("auf %s", v), true
		}
	}
	if v, ok := stringSlot(slots, "duration"); ok {
		return fmt.Sprintf("für %s", v), true
	}
	return "", false
}

func numericSlot(slots map[string]any, key string) (string, bool) {
	v, ok := slots[key]
	if !ok {
		return "", false
	}
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case int:
		return strconv.Itoa(n), true
	case string:
		if n != "" {
			return n, true
		}
	}
	return "", false
}

func stringSlot(slots map[string]any, key string) (string, bool) {
	v, ok := slots[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

package german

import (
	"regexp"
	"strings"
)

var decimalDotPattern = regexp.MustCompile(`(\d+)\.(\d+)`)

// unitReplacement pairs a unit symbol with the German word TTS engines
// pronounce correctly. Order matters: longer symbols ("kWh", "kW") must be
// tried before the single-letter ones they would otherwise be shadowed by
// ("W", "A").
type unitReplacement struct {
	symbol string
	spoken string
}

var unitReplacements = []unitReplacement{
	{"°C", " Grad Celsius"},
	{"°", " Grad"},
	{"%", " Prozent"},
	{"kWh", " Kilowattstunden"},
	{"kW", " Kilowatt"},
	{"W", " Watt"},
	{"V", " Volt"},
	{"A", " Ampere"},
	{"lx", " Lux"},
	{"lm", " Lumen"},
}

// unitBoundary is appended to each unit pattern so a symbol only matches at
// the end of a word (end of string, whitespace, or punctuation) — otherwise
// "Watt" inside an unrelated word would get mangled.
const unitBoundary = `($|\s|[.,!?])`

var unitPatterns = buildUnitPatterns()

func buildUnitPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(unitReplacements))
	for i, u := range unitReplacements {
		patterns[i] = regexp.MustCompile(regexp.QuoteMeta(u.symbol) + unitBoundary)
	}
	return patterns
}

// NormalizeSpeechForTTS rewrites text so a text-to-speech engine renders
// decimals and unit symbols the way a German speaker would say them:
// decimal dots become commas ("21.5" → "21,5") and unit symbols expand to
// their spoken word ("72%" → "72 Prozent").
func NormalizeSpeechForTTS(text string) string {
	if text == "" {
		return ""
	}
	out := decimalDotPattern.ReplaceAllString(text, "$1,$2")
	for i, u := range unitReplacements {
		out = unitPatterns[i].ReplaceAllString(out, u.spoken+"$1")
	}
	return strings.TrimSpace(out)
}

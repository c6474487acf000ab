// Package german implements the German-language text normalization the
// resolver core needs for cache fingerprinting, TTS-safe responses, and
// generic-noun/plural detection.
//
// Nothing here depends on any other assist package; it exists so every stage
// and capability normalizes text the same way.
package german

// PluralCues are quantifier words ("alle Lichter", "mehrere Lampen") that
// signal the user is addressing more than one entity, even when the noun
// itself carries no plural marking the resolver can see.
var PluralCues = map[string]struct{}{
	"alle":         {},
	"sämtliche":    {},
	"mehrere":      {},
	"beide":        {},
	"beiden":       {},
	"viele":        {},
	"verschiedene": {},
	"ganze":        {},
	"ganzen":       {},
}

// NumberWords maps German cardinal number words two through twelve to their
// integer value. A slot value like "zwei Lampen" carries the same plural
// signal as a literal digit.
var NumberWords = map[string]int{
	"zwei":   2,
	"drei":   3,
	"vier":   4,
	"fünf":   5,
	"sechs":  6,
	"sieben": 7,
	"acht":   8,
	"neun":   9,
	"zehn":   10,
	"elf":    11,
	"zwölf":  12,
}

// HasPluralCue reports whether any token in words is a quantifier that marks
// a plural reference (see [PluralCues]).
func HasPluralCue(words []string) bool {
	for _, w := range words {
		if _, ok := PluralCues[w]; ok {
			return true
		}
	}
	return false
}

// HasNumberWordAbove reports whether any token in words is a German number
// word whose value exceeds threshold (see [NumberWords]).
func HasNumberWordAbove(words []string, threshold int) bool {
	for _, w := range words {
		if n, ok := NumberWords[w]; ok && n > threshold {
			return true
		}
	}
	return false
}

// GlobalAreaKeywords name the whole home rather than any single area; a
// resolver seeing one of these treats the area slot as global rather than
// resolving it against the area registry.
var GlobalAreaKeywords = map[string]struct{}{
	"haus":    {},
	"wohnung": {},
	"überall": {},
	"alles":   {},
	"daheim":  {},
	"zuhause": {},
}

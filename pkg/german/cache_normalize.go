package german

import "regexp"

// Cache fingerprints must not depend on the concrete numeric value carried
// by a percentage, temperature, or duration/time fragment: "auf 30%" and
// "auf 40%" describe the same *kind* of command and should retrieve the
// same cache entry, with the actual value re-applied by the step controller
// or the slot map at replay time.
//
// Each pattern below collapses any digit run of the given shape to one
// canonical bucket literal. The bare-number pattern runs last and also
// rewrites the digits inside those literals, so what remains of a bucket is
// "1" plus its kind word ("auf 30%" and "auf 40%" both end up as
// "auf 1 prozent").
var (
	percentPattern     = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\s*%`)
	celsiusPattern     = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\s*°?\s*[Gg]rad(?:\s*[Cc]elsius)?`)
	clockTimePattern   = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
	durationUnitWord   = `(?:stunden?|std|minuten?|min|sekunden?|sek|s)\b`
	durationPattern    = regexp.MustCompile(`\b\d+\s*` + durationUnitWord)
	bareNumberPattern  = regexp.MustCompile(`\b\d+\b`)
)

const (
	percentBucket  = "50 Prozent"
	celsiusBucket  = "20 Grad"
	clockBucket    = "12:00"
	durationBucket = "5 Minuten"
	numberBucket   = "1"
)

// NormalizeForCache rewrites text so that any numeric fragment is replaced
// by a fixed bucket for its kind (see above), then delegates to [Canonicalize]
// for case/article folding. The result is used only as the cache's lexical
// key and embedding input — never shown to the user.
func NormalizeForCache(text string) string {
	out := percentPattern.ReplaceAllString(text, percentBucket)
	out = celsiusPattern.ReplaceAllString(out, celsiusBucket)
	out = clockTimePattern.ReplaceAllString(out, clockBucket)
	out = durationPattern.ReplaceAllString(out, durationBucket)
	out = bareNumberPattern.ReplaceAllString(out, numberBucket)
	return Canonicalize(out)
}

package german

import (
	"regexp"
	"strings"
)

// articles are stripped during canonicalization so "das Licht" and "Licht"
// fold to the same key.
var articles = map[string]struct{}{
	"der": {}, "die": {}, "das": {},
	"den": {}, "dem": {}, "des": {},
	"ein": {}, "eine": {}, "einen": {}, "einem": {}, "einer": {}, "eines": {},
}

var whitespaceRun = regexp.MustCompile(`\s+`)
var nonWordChar = regexp.MustCompile(`[^\pL\pN\s]`)

// Canonicalize folds text to a case- and article-insensitive key suitable
// for alias lookups and exact-match registry comparisons. It is idempotent:
// Canonicalize(Canonicalize(x)) == Canonicalize(x) for all x.
func Canonicalize(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	lower = nonWordChar.ReplaceAllString(lower, " ")
	tokens := whitespaceRun.Split(strings.TrimSpace(lower), -1)

	kept := tokens[:0]
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, isArticle := articles[t]; isArticle {
			continue
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, " ")
}

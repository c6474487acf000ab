// Package fuzzy provides the bounded string-similarity primitives the
// resolver core uses for typo correction and disambiguation follow-ups:
// a length-gated Levenshtein ratio and an ungated Jaro-Winkler ratio.
package fuzzy

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// LevenshteinRatio returns a similarity ratio in [0,1] derived from the
// Levenshtein edit distance between a and b, but only when the two strings
// have equal rune length; otherwise it reports matched=false.
//
// The length-equality gate is deliberate: without it, a short word like
// "schalte" scores deceptively close to an unrelated longer one such as
// "schalter" under edit distance alone. Typo correction only ever needs to
// catch single-character substitutions within a word whose length the
// speech recognizer already got right.
func LevenshteinRatio(a, b string) (ratio float64, matched bool) {
	ra, rb := []rune(a), []rune(b)
	if len(ra) != len(rb) {
		return 0, false
	}
	if len(ra) == 0 {
		return 1, true
	}
	dist := matchr.Levenshtein(a, b)
	ratio = 1 - float64(dist)/float64(len(ra))
	return ratio, true
}

// JaroWinkler returns the Jaro-Winkler similarity of a and b in [0,1].
// Unlike [LevenshteinRatio] it places no constraint on the relative
// lengths of its inputs — used for ranking candidate names and area
// aliases regardless of how differently long they are spelled.
func JaroWinkler(a, b string) float64 {
	return matchr.JaroWinkler(a, b, false)
}

// BestMatch ranks candidates by [JaroWinkler] similarity to query and
// returns the best one along with its score. If candidates is empty it
// returns ("", 0, false).
func BestMatch(query string, candidates []string) (best string, score float64, ok bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, c := range candidates {
		s := JaroWinkler(q, strings.ToLower(strings.TrimSpace(c)))
		if s > score || !ok {
			best, score, ok = c, s, true
		}
	}
	return best, score, ok
}

// SubstringPreferred reorders a JaroWinkler-style comparison: when needle
// is a substring of haystack (case-insensitive), the pair is treated as a
// near-exact match regardless of the raw ratio. Used by the disambiguation
// continuation's name-match tier, which prefers "Spot" matching
// "Küchenspot" over a purely phonetic score.
func SubstringPreferred(needle, haystack string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

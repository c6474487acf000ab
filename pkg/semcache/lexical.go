package semcache

import "strings"

// ngramOverlap scores the lexical similarity of two canonicalized strings as
// the Jaccard overlap of their character n-gram sets, for size n. Used by
// the hybrid overlay as the "lexical" half of the semantic/lexical blend.
func ngramOverlap(a, b string, n int) float64 {
	if n < 1 {
		n = 1
	}
	setA := ngramSet(a, n)
	setB := ngramSet(b, n)
	if len(setA) == 0 || len(setB) == 0 {
		if len(setA) == 0 && len(setB) == 0 {
			return 1
		}
		return 0
	}

	intersection := 0
	for g := range setA {
		if _, ok := setB[g]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func ngramSet(s string, n int) map[string]struct{} {
	runes := []rune(strings.Join(strings.Fields(s), " "))
	set := make(map[string]struct{})
	if len(runes) < n {
		if len(runes) > 0 {
			set[string(runes)] = struct{}{}
		}
		return set
	}
	for i := 0; i+n <= len(runes); i++ {
		set[string(runes[i:i+n])] = struct{}{}
	}
	return set
}

// blendScore combines a semantic similarity and a lexical overlap score
// into the hybrid ranking value alpha*semantic + (1-alpha)*lexical.
func blendScore(semantic, lexical, alpha float64) float64 {
	return alpha*semantic + (1-alpha)*lexical
}

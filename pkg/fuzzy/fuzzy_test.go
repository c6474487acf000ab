package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinRatioLengthGuard(t *testing.T) {
	_, matched := LevenshteinRatio("schalte", "schalter")
	assert.False(t, matched, "differing lengths must never produce a ratio")

	ratio, matched := LevenshteinRatio("schalte", "schalto")
	assert.True(t, matched)
	assert.InDelta(t, 6.0/7.0, ratio, 0.001)
}

func TestLevenshteinRatioIdentical(t *testing.T) {
	ratio, matched := LevenshteinRatio("küche", "küche")
	assert.True(t, matched)
	assert.Equal(t, 1.0, ratio)
}

func TestJaroWinklerUnconstrainedByLength(t *testing.T) {
	score := JaroWinkler("licht", "lichter")
	assert.Greater(t, score, 0.8)
}

func TestBestMatch(t *testing.T) {
	best, score, ok := BestMatch("küche", []string{"Wohnzimmer", "Küche", "Bad"})
	assert.True(t, ok)
	assert.Equal(t, "Küche", best)
	assert.Greater(t, score, 0.9)
}

func TestBestMatchEmpty(t *testing.T) {
	_, _, ok := BestMatch("x", nil)
	assert.False(t, ok)
}

func TestSubstringPreferred(t *testing.T) {
	assert.True(t, SubstringPreferred("Spot", "Küchenspot"))
	assert.False(t, SubstringPreferred("Spot", "Lautsprecher"))
	assert.False(t, SubstringPreferred("", "irrelevant"))
}

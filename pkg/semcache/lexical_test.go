package semcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNgramOverlapIdentical(t *testing.T) {
	assert.InDelta(t, 1.0, ngramOverlap("licht kueche an", "licht kueche an", 2), 1e-9)
}

func TestNgramOverlapDisjoint(t *testing.T) {
	got := ngramOverlap("licht kueche an", "rollladen buero zu", 3)
	assert.Less(t, got, 0.3)
}

func TestNgramOverlapPartial(t *testing.T) {
	a := ngramOverlap("schalte licht kueche an", "schalte licht buero an", 2)
	assert.Greater(t, a, 0.0)
	assert.Less(t, a, 1.0)
}

func TestBlendScore(t *testing.T) {
	assert.InDelta(t, 0.8, blendScore(1.0, 0.0, 0.8), 1e-9)
	assert.InDelta(t, 0.5, blendScore(0.0, 1.0, 0.5), 1e-9)
}

package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchAreaAnswer_ExactName(t *testing.T) {
	got, ok := matchAreaAnswer("Büro", []string{"Büro", "Küche"})
	assert.True(t, ok)
	assert.Equal(t, "Büro", got)
}

func TestMatchAreaAnswer_CancelKeyword(t *testing.T) {
	_, ok := matchAreaAnswer("nichts", []string{"Büro", "Küche"})
	assert.False(t, ok)
}

func TestMatchAreaAnswer_EmptyTextOrCandidates(t *testing.T) {
	_, ok := matchAreaAnswer("", []string{"Büro"})
	assert.False(t, ok)

	_, ok = matchAreaAnswer("Büro", nil)
	assert.False(t, ok)
}

func TestMatchAreaAnswer_BelowThresholdIsAMiss(t *testing.T) {
	_, ok := matchAreaAnswer("xyz völlig anders", []string{"Büro", "Küche"})
	assert.False(t, ok)
}

func TestAreaLearningPending_BuildsQuestionAndExtras(t *testing.T) {
	result := areaLearningPending("wohnzimmr", "mach das licht im wohnzimmr an", []string{"Wohnzimmer", "Wohnküche"})
	assert.Equal(t, "area_learning", result.PendingData.Type)
	assert.Contains(t, result.PendingData.OriginalPrompt, "Wohnzimmer")
	assert.Contains(t, result.PendingData.OriginalPrompt, "Wohnküche")

	candidates, ok := result.PendingData.Get("candidates")
	assert.True(t, ok)
	assert.Equal(t, []string{"Wohnzimmer", "Wohnküche"}, candidates)

	learnKey, ok := result.PendingData.Get("learn_key")
	assert.True(t, ok)
	assert.NotEmpty(t, learnKey)
}

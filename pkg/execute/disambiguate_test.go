package execute

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	llmmock "github.com/kr0ner/multistage-assist/pkg/clients/llm/mock"
	"github.com/kr0ner/multistage-assist/pkg/host"
)

func TestBuildDisambiguationQuestion(t *testing.T) {
	assert.Equal(t, "Welches Gerät meinst du?", buildDisambiguationQuestion(nil))
	assert.Equal(t, "Meinst du Küche?", buildDisambiguationQuestion([]string{"Küche"}))
	assert.Equal(t, "Meinst du Küche oder Büro?", buildDisambiguationQuestion([]string{"Küche", "Büro"}))
	assert.Equal(t, "Welches meinst du: Küche, Büro oder Bad?",
		buildDisambiguationQuestion([]string{"Küche", "Büro", "Bad"}))
}

func candidatePair() []host.Entity {
	return []host.Entity{
		{ID: "light.a", Name: "Spiegellicht"},
		{ID: "light.b", Name: "Deckenlicht"},
	}
}

func TestSelectFromAnswerNoneKeywordCancels(t *testing.T) {
	selected, ok := selectFromAnswer("keine", candidatePair())
	assert.True(t, ok)
	assert.Nil(t, selected)
}

func TestSelectFromAnswerAllKeywordSelectsEverything(t *testing.T) {
	selected, ok := selectFromAnswer("alle", candidatePair())
	assert.True(t, ok)
	assert.Equal(t, candidatePair(), selected)
}

func TestSelectFromAnswerBeideOnlyAppliesToTwoCandidates(t *testing.T) {
	selected, ok := selectFromAnswer("beide", candidatePair())
	assert.True(t, ok)
	assert.Equal(t, candidatePair(), selected)

	three := append(candidatePair(), host.Entity{ID: "light.c", Name: "Flurlicht"})
	selected, ok = selectFromAnswer("beide", three)
	assert.False(t, ok)
	assert.Nil(t, selected)
}

func TestSelectFromAnswerWordOrdinal(t *testing.T) {
	selected, ok := selectFromAnswer("die erste", candidatePair())
	assert.True(t, ok)
	assert.Equal(t, []host.Entity{candidatePair()[0]}, selected)

	selected, ok = selectFromAnswer("die zweite bitte", candidatePair())
	assert.True(t, ok)
	assert.Equal(t, []host.Entity{candidatePair()[1]}, selected)

	selected, ok = selectFromAnswer("die letzte", candidatePair())
	assert.True(t, ok)
	assert.Equal(t, []host.Entity{candidatePair()[1]}, selected)
}

func TestSelectFromAnswerNumericOrdinalPatterns(t *testing.T) {
	selected, ok := selectFromAnswer("1", candidatePair())
	assert.True(t, ok)
	assert.Equal(t, []host.Entity{candidatePair()[0]}, selected)

	selected, ok = selectFromAnswer("nr 2", candidatePair())
	assert.True(t, ok)
	assert.Equal(t, []host.Entity{candidatePair()[1]}, selected)

	selected, ok = selectFromAnswer("nummer 2", candidatePair())
	assert.True(t, ok)
	assert.Equal(t, []host.Entity{candidatePair()[1]}, selected)

	selected, ok = selectFromAnswer("die 2.", candidatePair())
	assert.True(t, ok)
	assert.Equal(t, []host.Entity{candidatePair()[1]}, selected)
}

func TestSelectFromAnswerOrdinalOutOfRangeFails(t *testing.T) {
	selected, ok := selectFromAnswer("nr 5", candidatePair())
	assert.False(t, ok)
	assert.Nil(t, selected)
}

func TestSelectFromAnswerFuzzyNameMatch(t *testing.T) {
	selected, ok := selectFromAnswer("spiegellicht", candidatePair())
	assert.True(t, ok)
	assert.Equal(t, []host.Entity{candidatePair()[0]}, selected)
}

func TestSelectFromAnswerUnrecognizedFails(t *testing.T) {
	selected, ok := selectFromAnswer("pflaumenmus", candidatePair())
	assert.False(t, ok)
	assert.Nil(t, selected)
}

type disambiguateTestError string

func (e disambiguateTestError) Error() string { return string(e) }

const errBoom = disambiguateTestError("boom")

func TestSelectViaLLM_NilProviderMisses(t *testing.T) {
	_, ok := selectViaLLM(context.Background(), nil, "das über dem Tisch", candidatePair())
	assert.False(t, ok)
}

func TestSelectViaLLM_MatchesByName(t *testing.T) {
	provider := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: `{"match": "Deckenlicht"}`}}
	selected, ok := selectViaLLM(context.Background(), provider, "das über dem Tisch", candidatePair())
	assert.True(t, ok)
	assert.Equal(t, candidatePair()[1], selected)
}

func TestSelectViaLLM_NullMatchMisses(t *testing.T) {
	provider := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: `{"match": null}`}}
	_, ok := selectViaLLM(context.Background(), provider, "pflaumenmus", candidatePair())
	assert.False(t, ok)
}

func TestSelectViaLLM_ProviderErrorMisses(t *testing.T) {
	provider := &llmmock.Provider{CompleteErr: errBoom}
	_, ok := selectViaLLM(context.Background(), provider, "egal", candidatePair())
	assert.False(t, ok)
}

func TestSelectOrdinalLastAndOutOfRange(t *testing.T) {
	selected, ok := selectOrdinal(-1, candidatePair())
	assert.True(t, ok)
	assert.Equal(t, []host.Entity{candidatePair()[1]}, selected)

	selected, ok = selectOrdinal(0, candidatePair())
	assert.False(t, ok)
	assert.Nil(t, selected)

	selected, ok = selectOrdinal(3, candidatePair())
	assert.False(t, ok)
	assert.Nil(t, selected)
}

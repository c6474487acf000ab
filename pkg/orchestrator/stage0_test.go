package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/host"
	hostmock "github.com/kr0ner/multistage-assist/pkg/host/mock"
	"github.com/kr0ner/multistage-assist/pkg/resolve"
)

func TestStage0_NilProbeEscalates(t *testing.T) {
	s0 := NewStage0(nil, resolve.NewEntityResolver(&hostmock.Registry{}, nil), 0)
	result, err := s0.Process(context.Background(), types.Utterance{Text: "irgendwas"}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusEscalate, result.Status)
}

func TestStage0_NoMatchEscalates(t *testing.T) {
	probe := &hostmock.NLUProbe{RecognizeResult: nil}
	s0 := NewStage0(probe, resolve.NewEntityResolver(&hostmock.Registry{}, nil), 0)
	result, err := s0.Process(context.Background(), types.Utterance{Text: "blubb"}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusEscalate, result.Status)
}

func TestStage0_SingleCandidateHassIntentSucceeds(t *testing.T) {
	probe := &hostmock.NLUProbe{RecognizeResult: &host.NLUMatch{
		Intent: "HassTurnOn",
		Slots:  map[string]string{"area": "Büro"},
	}}
	registry := &hostmock.Registry{EntitiesResult: []host.Entity{
		{ID: "light.buero", Name: "Büro", Area: "Büro", Domain: "light", State: "off"},
	}}
	s0 := NewStage0(probe, resolve.NewEntityResolver(registry, nil), 0)

	result, err := s0.Process(context.Background(), types.Utterance{Text: "mach das licht im büro an"}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, result.Status)
	assert.Equal(t, []string{"light.buero"}, result.EntityIDs)
}

func TestStage0_MultipleCandidatesUnderThresholdEscalatesWithCandidates(t *testing.T) {
	probe := &hostmock.NLUProbe{RecognizeResult: &host.NLUMatch{
		Intent: "HassTurnOn",
		Slots:  map[string]string{"area": "Büro"},
	}}
	registry := &hostmock.Registry{EntitiesResult: []host.Entity{
		{ID: "light.buero1", Name: "Deckenlicht", Area: "Büro", Domain: "light", State: "off"},
		{ID: "light.buero2", Name: "Stehlampe", Area: "Büro", Domain: "light", State: "off"},
	}}
	s0 := NewStage0(probe, resolve.NewEntityResolver(registry, nil), 5)

	result, err := s0.Process(context.Background(), types.Utterance{Text: "mach das licht im büro an"}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusEscalate, result.Status)
	assert.Equal(t, "HassTurnOn", result.Context["s0_intent"])
}

func TestStage0_CandidatesOverThresholdEscalatesEmpty(t *testing.T) {
	probe := &hostmock.NLUProbe{RecognizeResult: &host.NLUMatch{
		Intent: "HassTurnOn",
		Slots:  map[string]string{"area": "Büro"},
	}}
	var entities []host.Entity
	for i := 0; i < 3; i++ {
		entities = append(entities, host.Entity{ID: "light." + string(rune('a'+i)), Name: "Licht", Area: "Büro", Domain: "light", State: "off"})
	}
	registry := &hostmock.Registry{EntitiesResult: entities}
	s0 := NewStage0(probe, resolve.NewEntityResolver(registry, nil), 1)

	result, err := s0.Process(context.Background(), types.Utterance{Text: "mach das licht im büro an"}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusEscalate, result.Status)
	assert.Nil(t, result.Context)
}

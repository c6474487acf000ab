package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	llmmock "github.com/kr0ner/multistage-assist/pkg/clients/llm/mock"
	"github.com/kr0ner/multistage-assist/pkg/types"
)

func TestParserFillsIntentAndSlotsFromToolCall(t *testing.T) {
	provider := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			ToolCalls: []types.ToolCall{
				{Name: toolName, Arguments: `{"intent":"HassTurnOn","slots":{"area":"Küche"}}`},
			},
		},
	}
	p := NewParser(provider)

	res, err := p.Parse(context.Background(), "Schalte das Licht in der Küche ein")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "light", res.Domain)
	assert.Equal(t, "HassTurnOn", res.Intent)
	assert.Equal(t, "Küche", res.Slots["area"])
	assert.Equal(t, "light", res.Slots["domain"])
}

func TestParserFallsBackToContentJSON(t *testing.T) {
	provider := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: `Hier ist das Ergebnis: {"intent":"HassGetState","slots":{"device_class":"temperature"}} Danke.`,
		},
	}
	p := NewParser(provider)

	res, err := p.Parse(context.Background(), "Wie warm ist es im Büro")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "sensor", res.Domain)
	assert.Equal(t, "HassGetState", res.Intent)
	assert.Equal(t, "temperature", res.Slots["device_class"])
}

func TestParserSchemaViolationIsMiss(t *testing.T) {
	provider := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: `not json at all`},
	}
	p := NewParser(provider)

	res, err := p.Parse(context.Background(), "Schalte das Licht an")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestParserUnknownIntentIsRejected(t *testing.T) {
	provider := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			ToolCalls: []types.ToolCall{
				{Name: toolName, Arguments: `{"intent":"HassVacuumStart","slots":{}}`},
			},
		},
	}
	p := NewParser(provider)

	// light does not support HassVacuumStart.
	res, err := p.Parse(context.Background(), "Schalte das Licht an")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestParserNoDomainDetectedSkipsLLM(t *testing.T) {
	provider := &llmmock.Provider{}
	p := NewParser(provider)

	res, err := p.Parse(context.Background(), "Hallo, wie geht es dir")
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, provider.CompleteCalls)
}

func TestParserNoProviderConfiguredIsMiss(t *testing.T) {
	p := NewParser(nil)

	res, err := p.Parse(context.Background(), "Schalte das Licht an")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestParserNullIntentIsMiss(t *testing.T) {
	provider := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			ToolCalls: []types.ToolCall{
				{Name: toolName, Arguments: `{"intent":null,"slots":{}}`},
			},
		},
	}
	p := NewParser(provider)

	res, err := p.Parse(context.Background(), "Schalte das Licht an")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestParserPropagatesLLMError(t *testing.T) {
	provider := &llmmock.Provider{CompleteErr: assert.AnError}
	p := NewParser(provider)

	res, err := p.Parse(context.Background(), "Schalte das Licht an")
	assert.Error(t, err)
	assert.Nil(t, res)
}

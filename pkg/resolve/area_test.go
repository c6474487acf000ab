package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	llmmock "github.com/kr0ner/multistage-assist/pkg/clients/llm/mock"
	"github.com/kr0ner/multistage-assist/pkg/german"
	"github.com/kr0ner/multistage-assist/pkg/host"
	hostmock "github.com/kr0ner/multistage-assist/pkg/host/mock"
)

func TestAreaResolverGlobalKeyword(t *testing.T) {
	r := NewAreaResolver(&hostmock.Registry{}, newFakeAliasStore(), nil)
	res, err := r.Resolve(context.Background(), "überall")
	require.NoError(t, err)
	assert.True(t, res.Global)
}

func TestAreaResolverLearnedAlias(t *testing.T) {
	aliases := newFakeAliasStore()
	require.NoError(t, aliases.SetAreaAlias(context.Background(), german.Canonicalize("Ki-Bad"), "Kinder Badezimmer"))
	r := NewAreaResolver(&hostmock.Registry{}, aliases, nil)

	res, err := r.Resolve(context.Background(), "Ki-Bad")
	require.NoError(t, err)
	assert.Equal(t, "Kinder Badezimmer", res.Area)
}

func TestAreaResolverExactMatch(t *testing.T) {
	registry := &hostmock.Registry{AreasResult: []host.Area{{Name: "Küche"}, {Name: "Büro"}}}
	r := NewAreaResolver(registry, newFakeAliasStore(), nil)

	res, err := r.Resolve(context.Background(), "küche")
	require.NoError(t, err)
	assert.Equal(t, "Küche", res.Area)
}

func TestAreaResolverRegistryAlias(t *testing.T) {
	registry := &hostmock.Registry{AreasResult: []host.Area{{Name: "Esszimmer", Aliases: []string{"S-Zimmer"}}}}
	r := NewAreaResolver(registry, newFakeAliasStore(), nil)

	res, err := r.Resolve(context.Background(), "S-Zimmer")
	require.NoError(t, err)
	assert.Equal(t, "Esszimmer", res.Area)
}

func TestAreaResolverSubstringMatch(t *testing.T) {
	registry := &hostmock.Registry{AreasResult: []host.Area{{Name: "Kinder Badezimmer"}}}
	r := NewAreaResolver(registry, newFakeAliasStore(), nil)

	res, err := r.Resolve(context.Background(), "Badezimmer")
	require.NoError(t, err)
	assert.Equal(t, "Kinder Badezimmer", res.Area)
}

func TestAreaResolverLLMFallbackMatch(t *testing.T) {
	registry := &hostmock.Registry{AreasResult: []host.Area{{Name: "Wohnzimmer"}, {Name: "Küche"}}}
	provider := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: `{"match": "Wohnzimmer"}`}}
	r := NewAreaResolver(registry, newFakeAliasStore(), provider)

	res, err := r.Resolve(context.Background(), "Lounge")
	require.NoError(t, err)
	assert.Equal(t, "Wohnzimmer", res.Area)
}

func TestAreaResolverLLMFallbackGlobal(t *testing.T) {
	registry := &hostmock.Registry{AreasResult: []host.Area{{Name: "Küche"}}}
	provider := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: `{"match": "GLOBAL"}`}}
	r := NewAreaResolver(registry, newFakeAliasStore(), provider)

	res, err := r.Resolve(context.Background(), "das ganze Haus bitte")
	require.NoError(t, err)
	assert.True(t, res.Global)
}

func TestAreaResolverUnknownReturnsCandidates(t *testing.T) {
	registry := &hostmock.Registry{AreasResult: []host.Area{{Name: "Küche"}, {Name: "Büro"}}}
	provider := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: `{"match": null}`}}
	r := NewAreaResolver(registry, newFakeAliasStore(), provider)

	res, err := r.Resolve(context.Background(), "Raumschiff")
	require.NoError(t, err)
	assert.True(t, res.Unknown)
	assert.ElementsMatch(t, []string{"Küche", "Büro"}, res.Candidates)
}

func TestAreaResolverNoLLMConfiguredReturnsUnknown(t *testing.T) {
	registry := &hostmock.Registry{AreasResult: []host.Area{{Name: "Küche"}}}
	r := NewAreaResolver(registry, newFakeAliasStore(), nil)

	res, err := r.Resolve(context.Background(), "Raumschiff")
	require.NoError(t, err)
	assert.True(t, res.Unknown)
	assert.Equal(t, []string{"Küche"}, res.Candidates)
}

func TestAreaResolverEmptyTextIsUnknown(t *testing.T) {
	r := NewAreaResolver(&hostmock.Registry{}, newFakeAliasStore(), nil)
	res, err := r.Resolve(context.Background(), "   ")
	require.NoError(t, err)
	assert.True(t, res.Unknown)
}

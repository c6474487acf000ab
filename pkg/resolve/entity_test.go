package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr0ner/multistage-assist/pkg/host"
	hostmock "github.com/kr0ner/multistage-assist/pkg/host/mock"
)

func entitiesFixture() []host.Entity {
	return []host.Entity{
		{ID: "light.kueche_decke", Name: "Deckenlicht", Area: "Küche", Domain: "light", State: "off"},
		{ID: "light.kueche_spot", Name: "Spot", Area: "Küche", Domain: "light", State: "on"},
		{ID: "switch.kueche_kaffee", Name: "Kaffeemaschine", Area: "Küche", Domain: "switch", State: "off"},
		{ID: "light.buero_decke", Name: "Deckenlicht", Area: "Büro", Domain: "light", State: "off"},
		{ID: "cover.buero_rollladen", Name: "Rollladen", Area: "Büro", Domain: "cover", State: "open"},
	}
}

func TestEntityResolverByArea(t *testing.T) {
	registry := &hostmock.Registry{EntitiesResult: entitiesFixture()}
	r := NewEntityResolver(registry, newFakeAliasStore())

	ids, err := r.Resolve(context.Background(), ResolveParams{Area: "Küche", Domain: "light"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"light.kueche_decke", "light.kueche_spot"}, ids)
}

func TestEntityResolverByName(t *testing.T) {
	registry := &hostmock.Registry{EntitiesResult: entitiesFixture()}
	r := NewEntityResolver(registry, newFakeAliasStore())

	ids, err := r.Resolve(context.Background(), ResolveParams{Name: "Kaffeemaschine"})
	require.NoError(t, err)
	assert.Equal(t, []string{"switch.kueche_kaffee"}, ids)
}

func TestEntityResolverLearnedAliasIsPreferred(t *testing.T) {
	registry := &hostmock.Registry{EntitiesResult: entitiesFixture()}
	aliases := newFakeAliasStore()
	require.NoError(t, aliases.SetEntityAlias(context.Background(), "kaffee", "switch.kueche_kaffee"))
	r := NewEntityResolver(registry, aliases)

	ids, err := r.Resolve(context.Background(), ResolveParams{Name: "Kaffee"})
	require.NoError(t, err)
	assert.Equal(t, []string{"switch.kueche_kaffee"}, ids)
}

func TestEntityResolverStateFilteringTurnOn(t *testing.T) {
	registry := &hostmock.Registry{EntitiesResult: entitiesFixture()}
	r := NewEntityResolver(registry, newFakeAliasStore())

	ids, err := r.Resolve(context.Background(), ResolveParams{Area: "Küche", Domain: "light", Intent: "HassTurnOn"})
	require.NoError(t, err)
	// light.kueche_spot is already "on"; only the off one should remain.
	assert.Equal(t, []string{"light.kueche_decke"}, ids)
}

func TestEntityResolverStateFilteringCoverAlreadyOpen(t *testing.T) {
	registry := &hostmock.Registry{EntitiesResult: entitiesFixture()}
	r := NewEntityResolver(registry, newFakeAliasStore())

	ids, err := r.Resolve(context.Background(), ResolveParams{Area: "Büro", Domain: "cover", Intent: "HassTurnOn"})
	require.NoError(t, err)
	// the cover is already "open" (HassTurnOn's cover equivalent); nothing to do.
	assert.Empty(t, ids)
}

func TestEntityResolverGenericNounRejectedWithoutScope(t *testing.T) {
	registry := &hostmock.Registry{EntitiesResult: entitiesFixture()}
	r := NewEntityResolver(registry, newFakeAliasStore())

	ids, err := r.Resolve(context.Background(), ResolveParams{Name: "Licht"})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEntityResolverGenericNounAllowedWithPluralCue(t *testing.T) {
	registry := &hostmock.Registry{EntitiesResult: entitiesFixture()}
	r := NewEntityResolver(registry, newFakeAliasStore())

	ids, err := r.Resolve(context.Background(), ResolveParams{Name: "Licht", HasPluralOrGlobalCue: true})
	require.NoError(t, err)
	assert.NotEmpty(t, ids)
}

func TestEntityResolverGenericNounAllowedWithArea(t *testing.T) {
	registry := &hostmock.Registry{EntitiesResult: entitiesFixture()}
	r := NewEntityResolver(registry, newFakeAliasStore())

	ids, err := r.Resolve(context.Background(), ResolveParams{Name: "Licht", Area: "Küche", Domain: "light"})
	require.NoError(t, err)
	assert.NotEmpty(t, ids)
}

func TestEntityResolverDimmableFilter(t *testing.T) {
	entities := []host.Entity{
		{ID: "light.dimmable", Name: "Dimmer", Area: "Küche", Domain: "light",
			Attributes: map[string]any{"supported_color_modes": []string{"brightness"}}},
		{ID: "light.onoff", Name: "Deckenlicht", Area: "Küche", Domain: "light",
			Attributes: map[string]any{"supported_color_modes": []string{"onoff"}}},
	}
	registry := &hostmock.Registry{EntitiesResult: entities}
	r := NewEntityResolver(registry, newFakeAliasStore())

	ids, err := r.Resolve(context.Background(), ResolveParams{Area: "Küche", Domain: "light", RequireDimmable: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"light.dimmable"}, ids)
}

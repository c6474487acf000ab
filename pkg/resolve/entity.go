package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/kr0ner/multistage-assist/internal/observe"
	"github.com/kr0ner/multistage-assist/pkg/aliasstore"
	"github.com/kr0ner/multistage-assist/pkg/german"
	"github.com/kr0ner/multistage-assist/pkg/host"
)

// ResolveParams is the normalized slot map the entity resolver matches
// against the registry, plus the context the generic-noun and dimming
// rules need.
type ResolveParams struct {
	Area   string
	Floor  string
	Name   string
	Domain string
	Intent string

	// HasPluralOrGlobalCue lifts the generic-noun rejection (rule 5): set
	// when the utterance carried a quantifier ("alle", "mehrere", ...) or
	// a global area keyword.
	HasPluralOrGlobalCue bool

	// RequireDimmable filters to dimmable lights only — set by the caller
	// for HassLightSet requests carrying a brightness/color slot.
	RequireDimmable bool
}

// EntityResolver turns a normalized slot map into an ordered, deduplicated
// list of entity IDs.
//
// Grounded on EntityResolverCapability.run / ._collect_area_entities /
// ._collect_by_name: area and name candidates are collected independently
// and merged preserving first-seen order, then narrowed by the rules the
// original capability didn't need (a learned-alias preference, dimmable
// filtering, and generic-noun rejection) that this system's slot-filling
// stage requires.
type EntityResolver struct {
	registry host.Registry
	aliases  aliasstore.Store
}

// NewEntityResolver constructs an EntityResolver.
func NewEntityResolver(registry host.Registry, aliases aliasstore.Store) *EntityResolver {
	return &EntityResolver{registry: registry, aliases: aliases}
}

// Resolve returns the entity IDs matching p, applying (in order) the
// learned-alias preference, area/name collection, generic-noun rejection
// of the name matches, state filtering for state-dependent intents, and
// dimmable filtering.
func (r *EntityResolver) Resolve(ctx context.Context, p ResolveParams) ([]string, error) {
	entities, err := r.registry.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve: load entities: %w", err)
	}

	byID := make(map[string]host.Entity, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}

	var preferred []host.Entity
	if p.Name != "" {
		if id, ok, err := r.aliases.EntityAlias(ctx, german.Canonicalize(p.Name)); err != nil {
			return nil, fmt.Errorf("resolve: entity alias lookup: %w", err)
		} else if ok {
			if e, exists := byID[id]; exists {
				preferred = append(preferred, e)
			}
		}
	}

	byArea := collectByArea(entities, p.Area, p.Floor, p.Domain)
	byName := collectByName(entities, p.Name, p.Domain)
	if isGenericNounQuery(p) {
		byName = nil
	}

	merged := dedupEntities(preferred, byArea, byName)

	if isStateDependent(p.Intent) {
		merged = FilterByState(merged, p.Intent)
	}
	if p.RequireDimmable {
		merged = filterDimmable(merged)
	}

	ids := make([]string, len(merged))
	for i, e := range merged {
		ids[i] = e.ID
	}
	observe.DefaultMetrics().RecordResolverCall(ctx, "entity", resolverResultTier(len(ids) > 0, false))
	return ids, nil
}

func collectByArea(entities []host.Entity, area, floor, domain string) []host.Entity {
	if area == "" && floor == "" {
		return nil
	}
	areaNeedle := german.Canonicalize(area)
	floorNeedle := german.Canonicalize(floor)

	var out []host.Entity
	for _, e := range entities {
		if domain != "" && e.Domain != domain {
			continue
		}
		if areaNeedle != "" && german.Canonicalize(e.Area) != areaNeedle {
			continue
		}
		if floorNeedle != "" && german.Canonicalize(e.Floor) != floorNeedle {
			continue
		}
		out = append(out, e)
	}
	return out
}

func collectByName(entities []host.Entity, name, domain string) []host.Entity {
	if name == "" {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	var out []host.Entity
	for _, e := range entities {
		if domain != "" && e.Domain != domain {
			continue
		}
		friendly := strings.ToLower(strings.TrimSpace(e.Name))
		if friendly == needle || strings.Contains(friendly, needle) {
			out = append(out, e)
		}
	}
	return out
}

// dedupEntities merges candidate sets preserving first-seen order, the same
// contract as the original capability's "preserve order, remove dups".
func dedupEntities(sets ...[]host.Entity) []host.Entity {
	seen := make(map[string]struct{})
	var out []host.Entity
	for _, set := range sets {
		for _, e := range set {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// isGenericNounQuery reports whether p names a bare domain noun ("licht",
// "rollladen", ...) with no area/floor scoping and no plural or global cue —
// the rejection that keeps "Schalte den Spot an" from addressing every
// spot in the home.
func isGenericNounQuery(p ResolveParams) bool {
	if p.Area != "" || p.Floor != "" {
		return false
	}
	if p.HasPluralOrGlobalCue {
		return false
	}
	needle := german.Canonicalize(p.Name)
	_, generic := german.GenericNounSingulars[needle]
	return generic
}

func isStateDependent(intent string) bool {
	switch intent {
	case "HassTurnOn", "HassTurnOff", "HassSetPosition":
		return true
	default:
		return false
	}
}

// FilterByState removes entities already in the state an intent would put
// them in (HassTurnOn/HassTurnOff only — HassSetPosition additionally needs
// the target position slot, which the execution pipeline's own state-filter
// step applies once it has resolved params per entity). A cover's "off"
// means "closed", "on" means "open".
func FilterByState(entities []host.Entity, intent string) []host.Entity {
	desired, ok := desiredStateFor(intent)
	if !ok {
		return entities
	}
	var out []host.Entity
	for _, e := range entities {
		want := desired
		if e.Domain == "cover" {
			switch want {
			case "on":
				want = "open"
			case "off":
				want = "closed"
			}
		}
		if e.State == want {
			continue
		}
		out = append(out, e)
	}
	return out
}

func desiredStateFor(intent string) (string, bool) {
	switch intent {
	case "HassTurnOn":
		return "on", true
	case "HassTurnOff":
		return "off", true
	default:
		return "", false
	}
}

// filterDimmable keeps only entities that advertise more than plain on/off
// color control. Entities with no reported color modes are treated as
// dimmable rather than silently dropped, same convention as the anchor
// builder's capability check.
func filterDimmable(entities []host.Entity) []host.Entity {
	out := entities[:0:0]
	for _, e := range entities {
		if entityIsDimmable(e) {
			out = append(out, e)
		}
	}
	return out
}

func entityIsDimmable(e host.Entity) bool {
	modes, ok := e.Attributes["supported_color_modes"]
	if !ok {
		return true
	}
	list, ok := modes.([]string)
	if !ok || len(list) == 0 {
		return true
	}
	return !(len(list) == 1 && list[0] == "onoff")
}

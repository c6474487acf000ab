package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/kr0ner/multistage-assist/internal/observe"
	"github.com/kr0ner/multistage-assist/pkg/aliasstore"
	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	"github.com/kr0ner/multistage-assist/pkg/german"
	"github.com/kr0ner/multistage-assist/pkg/host"
)

// AreaResult is the outcome of resolving a spoken location string to a
// Home-Assistant-style area name.
type AreaResult struct {
	// Area is the canonical registry name. Empty unless Global and Unknown
	// are both false.
	Area string
	// Global is true when the caller named the whole home ("Haus",
	// "überall", ...) rather than any single area.
	Global bool
	// Unknown is true when nothing matched; Candidates then holds every
	// registry area name so the caller can offer a disambiguation prompt.
	Unknown    bool
	Candidates []string
}

// AreaResolver maps a user-spoken location string to a canonical area name,
// cascading from a learned alias, through exact/alias/substring matches
// against the registry, to an LLM call for anything those miss.
//
// Grounded on AreaResolverCapability.find_area / .run: the fast-path order
// (alias store, exact name, registry alias, substring) stays identical;
// only the LLM call at the end is new structure, not new behavior.
type AreaResolver struct {
	registry host.Registry
	aliases  aliasstore.Store
	llm      llm.Provider
}

// NewAreaResolver constructs an AreaResolver. llmProvider may be nil, in
// which case unmatched queries return Unknown immediately instead of
// escalating to a model call.
func NewAreaResolver(registry host.Registry, aliases aliasstore.Store, llmProvider llm.Provider) *AreaResolver {
	return &AreaResolver{registry: registry, aliases: aliases, llm: llmProvider}
}

// Resolve maps text to an area, the whole home (Global), or unknown-with-candidates.
func (r *AreaResolver) Resolve(ctx context.Context, text string) (result AreaResult, err error) {
	defer func() {
		if err == nil {
			observe.DefaultMetrics().RecordResolverCall(ctx, "area", resolverResultTier(result.Area != "" || result.Global, result.Candidates != nil))
		}
	}()

	text = strings.TrimSpace(text)
	if text == "" {
		return AreaResult{Unknown: true}, nil
	}

	needle := german.Canonicalize(text)
	if _, ok := german.GlobalAreaKeywords[needle]; ok {
		return AreaResult{Global: true}, nil
	}

	if alias, ok, aliasErr := r.aliases.AreaAlias(ctx, needle); aliasErr != nil {
		return AreaResult{}, fmt.Errorf("resolve: area alias lookup: %w", aliasErr)
	} else if ok {
		return AreaResult{Area: alias}, nil
	}

	areas, loadErr := r.registry.Areas(ctx)
	if loadErr != nil {
		return AreaResult{}, fmt.Errorf("resolve: load areas: %w", loadErr)
	}
	if name, ok := matchByNameOrAlias(needle, areas); ok {
		return AreaResult{Area: name}, nil
	}

	candidates := areaNames(areas)
	if len(candidates) == 0 {
		return AreaResult{Unknown: true}, nil
	}

	match, ok := llmMatchLocation(ctx, r.llm, text, candidates)
	if !ok {
		return AreaResult{Unknown: true, Candidates: candidates}, nil
	}
	if match == "GLOBAL" {
		return AreaResult{Global: true}, nil
	}
	for _, c := range candidates {
		if c == match {
			return AreaResult{Area: c}, nil
		}
	}
	return AreaResult{Unknown: true, Candidates: candidates}, nil
}

// resolverResultTier classifies a resolver outcome for metrics: "resolved"
// when a match was found, "ambiguous" when candidates were offered, and
// "unresolved" otherwise.
func resolverResultTier(resolved, hadCandidates bool) string {
	switch {
	case resolved:
		return "resolved"
	case hadCandidates:
		return "ambiguous"
	default:
		return "unresolved"
	}
}

// matchByNameOrAlias runs the three fast-path passes in order: exact
// canonicalized name, registry-declared alias, substring either direction.
func matchByNameOrAlias(needle string, areas []host.Area) (string, bool) {
	for _, a := range areas {
		if german.Canonicalize(a.Name) == needle {
			return a.Name, true
		}
	}
	for _, a := range areas {
		for _, alias := range a.Aliases {
			if german.Canonicalize(alias) == needle {
				return a.Name, true
			}
		}
	}
	for _, a := range areas {
		canon := german.Canonicalize(a.Name)
		if canon == "" {
			continue
		}
		if strings.Contains(canon, needle) || strings.Contains(needle, canon) {
			return a.Name, true
		}
	}
	return "", false
}

func areaNames(areas []host.Area) []string {
	names := make([]string, 0, len(areas))
	for _, a := range areas {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

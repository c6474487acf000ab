package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/kr0ner/multistage-assist/internal/observe"
	"github.com/kr0ner/multistage-assist/pkg/aliasstore"
	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	"github.com/kr0ner/multistage-assist/pkg/domainconfig"
	"github.com/kr0ner/multistage-assist/pkg/german"
	"github.com/kr0ner/multistage-assist/pkg/host"
)

// FloorResult is the outcome of resolving a spoken floor reference.
type FloorResult struct {
	Floor      string
	Global     bool
	Unknown    bool
	Candidates []string
}

// FloorResolver maps a spoken floor reference to a canonical floor name.
// Identical cascade to [AreaResolver], plus an extra alias-expansion step
// for German floor abbreviations (EG/OG/UG/DG, oben/unten/Keller/Dach) via
// [domainconfig.FloorAliases] — grounded on
// AreaResolverCapability.find_floor, which expands the search needle the
// same way before running its three matching passes.
type FloorResolver struct {
	registry host.Registry
	aliases  aliasstore.Store
	llm      llm.Provider
}

// NewFloorResolver constructs a FloorResolver. llmProvider may be nil.
func NewFloorResolver(registry host.Registry, aliases aliasstore.Store, llmProvider llm.Provider) *FloorResolver {
	return &FloorResolver{registry: registry, aliases: aliases, llm: llmProvider}
}

// Resolve maps text to a floor, the whole home (Global), or unknown-with-candidates.
func (r *FloorResolver) Resolve(ctx context.Context, text string) (result FloorResult, err error) {
	defer func() {
		if err == nil {
			observe.DefaultMetrics().RecordResolverCall(ctx, "floor", resolverResultTier(result.Floor != "" || result.Global, result.Candidates != nil))
		}
	}()

	text = strings.TrimSpace(text)
	if text == "" {
		return FloorResult{Unknown: true}, nil
	}

	needle := german.Canonicalize(text)
	if _, ok := german.GlobalAreaKeywords[needle]; ok {
		return FloorResult{Global: true}, nil
	}

	if alias, ok, aliasErr := r.aliases.AreaAlias(ctx, needle); aliasErr != nil {
		return FloorResult{}, fmt.Errorf("resolve: floor alias lookup: %w", aliasErr)
	} else if ok {
		return FloorResult{Floor: alias}, nil
	}

	floors, loadErr := r.registry.Floors(ctx)
	if loadErr != nil {
		return FloorResult{}, fmt.Errorf("resolve: load floors: %w", loadErr)
	}

	searchTerms := map[string]struct{}{needle: {}}
	for _, syn := range domainconfig.FloorAliases[needle] {
		searchTerms[german.Canonicalize(syn)] = struct{}{}
	}

	if name, ok := matchFloor(searchTerms, floors); ok {
		return FloorResult{Floor: name}, nil
	}

	candidates := floorNames(floors)
	if len(candidates) == 0 {
		return FloorResult{Unknown: true}, nil
	}

	match, ok := llmMatchLocation(ctx, r.llm, text, candidates)
	if !ok {
		return FloorResult{Unknown: true, Candidates: candidates}, nil
	}
	if match == "GLOBAL" {
		return FloorResult{Global: true}, nil
	}
	for _, c := range candidates {
		if c == match {
			return FloorResult{Floor: c}, nil
		}
	}
	return FloorResult{Unknown: true, Candidates: candidates}, nil
}

func matchFloor(searchTerms map[string]struct{}, floors []host.Floor) (string, bool) {
	for _, f := range floors {
		if _, ok := searchTerms[german.Canonicalize(f.Name)]; ok {
			return f.Name, true
		}
	}
	for _, f := range floors {
		for _, alias := range f.Aliases {
			if _, ok := searchTerms[german.Canonicalize(alias)]; ok {
				return f.Name, true
			}
		}
	}
	for _, f := range floors {
		canon := german.Canonicalize(f.Name)
		if canon == "" {
			continue
		}
		for term := range searchTerms {
			if strings.Contains(canon, term) || strings.Contains(term, canon) {
				return f.Name, true
			}
		}
	}
	return "", false
}

func floorNames(floors []host.Floor) []string {
	names := make([]string, 0, len(floors))
	for _, f := range floors {
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}
	return names
}

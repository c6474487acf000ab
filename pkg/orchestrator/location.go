package orchestrator

import (
	"context"
	"strings"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/fuzzy"
	"github.com/kr0ner/multistage-assist/pkg/german"
	"github.com/kr0ner/multistage-assist/pkg/resolve"
)

// areaLearningThreshold is the minimum similarity an area-learning follow-up
// answer needs against a candidate area name to be accepted.
const areaLearningThreshold = 0.5

// locationOutcome is what resolving one area or floor reference produced:
// either a canonical name, the Global flag (the reference names the whole
// home; Name is then empty), or a pending area-learning question the caller
// must surface instead of continuing.
type locationOutcome struct {
	Name    string
	Global  bool
	Pending *types.StageResult
}

// resolveArea runs the area resolver and, on a genuinely unknown area name
// (as opposed to no area mentioned at all), builds an area_learning pending
// turn instead of silently dropping the constraint.
//
// Grounded on the area/entity-alias learning flow [pkg/aliasstore.Store]
// documents: an unresolved area name is taught once, by asking, and every
// later utterance using the same phrasing resolves instantly via the
// learned alias.
func resolveArea(ctx context.Context, resolver *resolve.AreaResolver, areaText, rawText string) (locationOutcome, error) {
	if resolver == nil || areaText == "" {
		return locationOutcome{}, nil
	}
	res, err := resolver.Resolve(ctx, areaText)
	if err != nil {
		return locationOutcome{}, err
	}
	if res.Global {
		return locationOutcome{Global: true}, nil
	}
	if !res.Unknown {
		return locationOutcome{Name: res.Area}, nil
	}
	if len(res.Candidates) == 0 {
		return locationOutcome{}, nil
	}
	pend := areaLearningPending(areaText, rawText, res.Candidates)
	return locationOutcome{Pending: &pend}, nil
}

// resolveFloor mirrors resolveArea for floor references.
func resolveFloor(ctx context.Context, resolver *resolve.FloorResolver, floorText, rawText string) (locationOutcome, error) {
	if resolver == nil || floorText == "" {
		return locationOutcome{}, nil
	}
	res, err := resolver.Resolve(ctx, floorText)
	if err != nil {
		return locationOutcome{}, err
	}
	if res.Global {
		return locationOutcome{Global: true}, nil
	}
	if !res.Unknown {
		return locationOutcome{Name: res.Floor}, nil
	}
	if len(res.Candidates) == 0 {
		return locationOutcome{}, nil
	}
	pend := areaLearningPending(floorText, rawText, res.Candidates)
	return locationOutcome{Pending: &pend}, nil
}

func areaLearningPending(unknownText, rawText string, candidates []string) types.StageResult {
	speech := "Welchen Bereich meinst du: " + strings.Join(candidates, ", ") + "?"
	pending := types.PendingData{
		Extra: map[string]any{
			"candidates":    candidates,
			"unknown_area":  unknownText,
			"learn_key":     german.Canonicalize(unknownText),
			"original_text": rawText,
		},
	}
	return types.Pending("area_learning", speech, pending, rawText)
}

// areaFloorEntityResolver bundles the three resolvers Stage2 and Stage3
// both need to turn an area/floor/name/domain/intent tuple into a set of
// entity IDs, so neither file repeats the other's cascade.
type areaFloorEntityResolver struct {
	area   *resolve.AreaResolver
	floor  *resolve.FloorResolver
	entity *resolve.EntityResolver
}

// resolveAreaFloorEntities runs the area and floor resolution cascades
// (each possibly producing an area_learning pending instead of a name),
// then resolves entities against whatever area/floor/name came out of it.
// pending is non-nil exactly when an unknown area or floor name needs a
// follow-up question before resolution can continue.
func (r areaFloorEntityResolver) resolveAreaFloorEntities(
	ctx context.Context,
	rawText, area, floor, name, domain, intentName string,
) (ids []string, resolvedArea, resolvedFloor string, pending *types.StageResult, err error) {
	resolvedArea = area
	if area != "" {
		loc, err := resolveArea(ctx, r.area, area, rawText)
		if err != nil {
			return nil, "", "", nil, err
		}
		if loc.Pending != nil {
			return nil, "", "", loc.Pending, nil
		}
		if loc.Name != "" {
			resolvedArea = loc.Name
		}
	}

	resolvedFloor = floor
	if floor != "" {
		loc, err := resolveFloor(ctx, r.floor, floor, rawText)
		if err != nil {
			return nil, "", "", nil, err
		}
		if loc.Pending != nil {
			return nil, "", "", loc.Pending, nil
		}
		if loc.Name != "" {
			resolvedFloor = loc.Name
		}
	}

	ids, err = r.entity.Resolve(ctx, resolve.ResolveParams{
		Area:   resolvedArea,
		Floor:  resolvedFloor,
		Name:   name,
		Domain: domain,
		Intent: intentName,
	})
	if err != nil {
		return nil, "", "", nil, err
	}
	return ids, resolvedArea, resolvedFloor, nil, nil
}

// matchAreaAnswer resolves a follow-up answer to an area_learning question
// against its candidate list: a cancel keyword, or a fuzzy name match.
func matchAreaAnswer(text string, candidates []string) (string, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" || len(candidates) == 0 {
		return "", false
	}
	for _, w := range strings.Fields(text) {
		if _, none := german.SelectNoneKeywords[w]; none {
			return "", false
		}
	}
	best, score, ok := fuzzy.BestMatch(text, candidates)
	if !ok || score < areaLearningThreshold {
		return "", false
	}
	return best, true
}

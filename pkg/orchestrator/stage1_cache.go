package orchestrator

import (
	"context"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/domainconfig"
	"github.com/kr0ner/multistage-assist/pkg/german"
	"github.com/kr0ner/multistage-assist/pkg/intent"
	"github.com/kr0ner/multistage-assist/pkg/semcache"
)

// Stage1 answers from the semantic cache without involving a model call.
//
// Grounded on stage1_cache.py's docstring: split/clean happens upstream of
// caching (a compound utterance is never looked up as one unit), a hit on a
// non-repeatable intent (timers, anything stateful) is discarded rather
// than replayed, and everything else falls through to escalate.
type Stage1 struct {
	cache *semcache.Cache
}

// NewStage1 constructs a Stage1. cache may be nil to always escalate (a
// chat-only or cache-disabled deployment).
func NewStage1(cache *semcache.Cache) *Stage1 {
	return &Stage1{cache: cache}
}

func (s *Stage1) Name() string { return "s1_cache" }

func (s *Stage1) Process(ctx context.Context, u types.Utterance, prevContext map[string]any) (types.StageResult, error) {
	if s.cache == nil || german.IsCompoundCommand(u.Text) {
		return types.Escalate(prevContext, u.Text), nil
	}

	normalized := german.NormalizeForCache(u.Text)
	res, err := s.cache.Lookup(ctx, normalized)
	if err != nil || res == nil {
		return types.Escalate(prevContext, u.Text), nil
	}

	if _, nonRepeatable := domainconfig.NonRepeatableIntents[res.Intent]; nonRepeatable {
		return types.Escalate(prevContext, u.Text), nil
	}

	domain, _ := intent.DetectDomain(u.Text)
	escCtx := mergeContext(prevContext, map[string]any{
		"domain":                  domain,
		"from_cache":              true,
		"required_disambiguation": res.RequiredDisambiguation,
	})
	return types.Success(res.Intent, res.EntityIDs, res.Slots, escCtx, u.Text), nil
}

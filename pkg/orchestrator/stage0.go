package orchestrator

import (
	"context"
	"strings"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/host"
	"github.com/kr0ner/multistage-assist/pkg/intent"
	"github.com/kr0ner/multistage-assist/pkg/resolve"
)

// defaultEarlyFilterThreshold is T: the S0 probe only escalates with
// pre-resolved candidate IDs attached when the count is small enough that
// a later stage (cache lookup, disambiguation) can still make sense of
// them; past this point it escalates empty, same as a zero-candidate miss.
const defaultEarlyFilterThreshold = 10

// Stage0 is the rule-based probe: the host platform's own sentence-template
// recognizer, consulted before anything that costs a model call.
//
// Grounded on stage0.py: a hassil.recognize_best call followed by entity
// resolution and a three-way branch on the resolved candidate count.
type Stage0 struct {
	probe     host.NLUProbe
	resolver  *resolve.EntityResolver
	threshold int
}

// NewStage0 constructs a Stage0. threshold <= 0 uses defaultEarlyFilterThreshold.
func NewStage0(probe host.NLUProbe, resolver *resolve.EntityResolver, threshold int) *Stage0 {
	if threshold <= 0 {
		threshold = defaultEarlyFilterThreshold
	}
	return &Stage0{probe: probe, resolver: resolver, threshold: threshold}
}

func (s *Stage0) Name() string { return "s0_probe" }

func (s *Stage0) Process(ctx context.Context, u types.Utterance, _ map[string]any) (types.StageResult, error) {
	if s.probe == nil {
		return types.Escalate(nil, u.Text), nil
	}

	match, err := s.probe.Recognize(ctx, u.Text, u.Language)
	if err != nil || match == nil {
		return types.Escalate(nil, u.Text), nil
	}

	domain, _ := intent.DetectDomain(u.Text)
	ids, err := s.resolver.Resolve(ctx, resolve.ResolveParams{
		Area:   match.Slots["area"],
		Floor:  match.Slots["floor"],
		Name:   match.Slots["name"],
		Domain: domain,
		Intent: match.Intent,
	})
	if err != nil {
		return types.Escalate(nil, u.Text), nil
	}

	switch {
	case len(ids) == 1 && strings.HasPrefix(match.Intent, "Hass"):
		return types.Success(match.Intent, ids, nil, map[string]any{"domain": domain}, u.Text), nil
	case len(ids) >= 1 && len(ids) <= s.threshold:
		return types.Escalate(map[string]any{
			"s0_intent":     match.Intent,
			"s0_candidates": ids,
			"domain":        domain,
		}, u.Text), nil
	default:
		return types.Escalate(nil, u.Text), nil
	}
}

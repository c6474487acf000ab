package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kr0ner/multistage-assist/internal/observe"
	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/capability"
	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	"github.com/kr0ner/multistage-assist/pkg/host"
	"github.com/kr0ner/multistage-assist/pkg/intent"
	"github.com/kr0ner/multistage-assist/pkg/resolve"
	"github.com/kr0ner/multistage-assist/pkg/stepctl"
)

// chatPatterns mark an utterance as wanting conversation rather than device
// control. Ported verbatim from stage2_llm.py's CHAT_PATTERNS.
var chatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\berzähl\b`),
	regexp.MustCompile(`\bwitz\b`),
	regexp.MustCompile(`\bjoke\b`),
	regexp.MustCompile(`\bstory\b`),
	regexp.MustCompile(`\bgeschichte\b`),
	regexp.MustCompile(`\bwer bist du\b`),
	regexp.MustCompile(`\bwas kannst du\b`),
	regexp.MustCompile(`\bhilfe\b`),
	regexp.MustCompile(`\bhelp\b`),
}

func isChatRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, re := range chatPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// resolutionKeys are the slot names that exist only to steer area/floor/
// entity resolution; they never belong in an execution Params map.
// Grounded on stage2_llm.py's resolution_keys set.
var resolutionKeys = map[string]struct{}{
	"area": {}, "room": {}, "floor": {}, "name": {}, "entity": {},
	"device": {}, "label": {}, "domain": {}, "device_class": {}, "entity_id": {},
}

// Stage2 is the local-LLM resolution step: keyword-driven intent parsing,
// area-alias and entity resolution, step-command calculation, and
// multi-turn capability dispatch (timer, calendar) for intents those own
// outright.
//
// Grounded on stage2_llm.py's Stage2LLMProcessor.
type Stage2 struct {
	parser       *intent.Parser
	resolvers    areaFloorEntityResolver
	registry     host.Registry
	clarifier    llm.Provider
	capabilities []capability.Capability
}

// NewStage2 constructs a Stage2. clarifier may be nil, in which case
// clarification always misses and every utterance is treated as one
// command. capabilities lists the multi-turn flows (timer, calendar) that
// may claim an intent outright before generic resolution runs.
func NewStage2(
	parser *intent.Parser,
	entityResolver *resolve.EntityResolver,
	areaResolver *resolve.AreaResolver,
	floorResolver *resolve.FloorResolver,
	registry host.Registry,
	clarifier llm.Provider,
	capabilities []capability.Capability,
) *Stage2 {
	return &Stage2{
		parser:       parser,
		resolvers:    areaFloorEntityResolver{area: areaResolver, floor: floorResolver, entity: entityResolver},
		registry:     registry,
		clarifier:    clarifier,
		capabilities: capabilities,
	}
}

func (s *Stage2) Name() string { return "s2_llm" }

func (s *Stage2) Process(ctx context.Context, u types.Utterance, prevContext map[string]any) (types.StageResult, error) {
	if isChatRequest(u.Text) {
		return types.EscalateChat(mergeContext(prevContext, map[string]any{"chat_detected": true}), u.Text), nil
	}

	commands, err := clarify(ctx, s.clarifier, u.Text)
	if err != nil {
		return types.StageResult{}, err
	}
	if len(commands) == 0 {
		commands = []string{u.Text}
	}
	if len(commands) > 1 {
		return types.MultiCommand(commands, prevContext, u.Text), nil
	}

	working := u
	if commands[0] != u.Text {
		working = u.WithText(commands[0])
	}
	return s.resolveOne(ctx, working, prevContext)
}

// resolveOne runs keyword-intent parsing, capability interception, and
// area/entity resolution for a single already-atomic command.
func (s *Stage2) resolveOne(ctx context.Context, u types.Utterance, prevContext map[string]any) (types.StageResult, error) {
	parsed, err := s.parser.Parse(ctx, u.Text)
	if err != nil {
		return types.StageResult{}, err
	}
	if parsed == nil || parsed.Intent == "" {
		return types.Escalate(mergeContext(prevContext, map[string]any{"llm_failed": true}), u.Text), nil
	}

	for _, c := range s.capabilities {
		outcome, ok, err := c.Start(ctx, u, parsed.Intent, parsed.Slots)
		if err != nil {
			return types.StageResult{}, err
		}
		if !ok {
			continue
		}
		observe.DefaultMetrics().RecordCapabilityTurn(ctx, c.Name(), "start")
		if outcome.Pending != nil {
			return types.Pending(outcome.Pending.Type, outcome.Speech, *outcome.Pending, u.Text), nil
		}
		return types.Error(outcome.Speech, u.Text), nil
	}

	return s.resolveSlotsToEntities(ctx, u, parsed.Domain, parsed.Intent, parsed.Slots, prevContext)
}

// resolveSlotsToEntities runs the area/floor/entity resolution cascade
// shared with Stage3: area-alias resolution (with an area_learning pending
// branch on a genuinely unknown name), entity resolution, and step-command
// calculation against the resolved entities' current state.
func (s *Stage2) resolveSlotsToEntities(
	ctx context.Context,
	u types.Utterance,
	domain, intentName string,
	slots map[string]string,
	prevContext map[string]any,
) (types.StageResult, error) {
	ids, resolvedArea, resolvedFloor, pending, err := s.resolvers.resolveAreaFloorEntities(
		ctx, u.Text, slots["area"], slots["floor"], slots["name"], domain, intentName,
	)
	if err != nil {
		return types.StageResult{}, err
	}
	if pending != nil {
		return *pending, nil
	}
	slots["area"] = resolvedArea
	slots["floor"] = resolvedFloor

	params := map[string]any{}
	for k, v := range slots {
		if _, excluded := resolutionKeys[k]; !excluded && k != "command" {
			params[k] = v
		}
	}

	usedRelativeStep := false
	if command, ok := stepctl.ParseCommand(slots["command"]); ok && len(ids) > 0 {
		applied, err := s.applyStep(ctx, ids, domain, command, params)
		if err != nil {
			return types.StageResult{}, err
		}
		usedRelativeStep = applied
	}

	if len(ids) == 0 {
		escCtx := mergeContext(prevContext, map[string]any{
			"domain":           domain,
			"from_llm":         true,
			"no_entities_found": true,
		})
		params["requested_area"] = slots["area"]
		params["requested_device_class"] = slots["device_class"]
		return types.Success(intentName, nil, params, escCtx, u.Text), nil
	}

	escCtx := mergeContext(prevContext, map[string]any{
		"domain":             domain,
		"from_llm":           true,
		"used_relative_step": usedRelativeStep,
	})
	return types.Success(intentName, ids, params, escCtx, u.Text), nil
}

// applyStep resolves a step_up/step_down command against the first
// resolvable entity's current state and writes the concrete attribute/value
// pair into params. It reports whether a step value was applied.
func (s *Stage2) applyStep(ctx context.Context, ids []string, domain string, command stepctl.Command, params map[string]any) (bool, error) {
	for _, id := range ids {
		entity, err := s.registry.Entity(ctx, id)
		if err != nil {
			return false, fmt.Errorf("orchestrator: step entity lookup: %w", err)
		}
		if entity == nil {
			continue
		}
		result, ok := stepctl.Calculate(*entity, domain, command)
		if !ok {
			continue
		}
		params[result.Attribute] = result.NewValue
		return true, nil
	}
	return false, nil
}

package execute

import (
	"context"
	"strings"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	"github.com/kr0ner/multistage-assist/pkg/german"
	"github.com/kr0ner/multistage-assist/pkg/host"
	"github.com/kr0ner/multistage-assist/pkg/resilience"
	"github.com/kr0ner/multistage-assist/pkg/resolve"
	"github.com/kr0ner/multistage-assist/pkg/semcache"
)

// Pipeline is the shared execution tail every resolver stage hands a
// resolved (intent, candidates) pair to.
type Pipeline struct {
	registry   host.Registry
	dispatcher host.IntentDispatcher
	cache      *semcache.Cache
	breaker    *resilience.CircuitBreaker
	llm        llm.Provider
}

// New constructs a Pipeline. cache may be nil to run without semantic-cache
// admission (e.g. in tests or a chat-only deployment). provider may be nil,
// in which case a disambiguation answer that misses the fast-path selection
// cascade is always re-asked instead of falling back to a model call.
func New(registry host.Registry, dispatcher host.IntentDispatcher, cache *semcache.Cache, provider llm.Provider) *Pipeline {
	return &Pipeline{
		registry:   registry,
		dispatcher: dispatcher,
		cache:      cache,
		breaker:    resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "host-dispatch"}),
		llm:        provider,
	}
}

// Execute runs the full pipeline for a freshly resolved request: state
// filtering, plural-aware disambiguation, dispatch, verification,
// confirmation, and cache admission.
func (p *Pipeline) Execute(ctx context.Context, req Request) (Result, error) {
	filtered := resolve.FilterByState(req.Candidates, req.Intent)
	if len(filtered) == 0 {
		return done("Ich habe dafür gerade kein passendes Gerät gefunden."), nil
	}

	if len(filtered) > 1 {
		plural := german.HasPluralCue(strings.Fields(german.Canonicalize(req.Utterance.Text)))
		if req.RequiredDisambiguation || !plural {
			return p.askDisambiguation(req, filtered), nil
		}
	}

	return p.dispatchAndRespond(ctx, req.Intent, req.Domain, filtered, req.Slots, req.UsedRelativeStep, req.FromCache, req.Utterance.Text)
}

// ContinueDisambiguation resumes a pending "which one did you mean" turn.
func (p *Pipeline) ContinueDisambiguation(ctx context.Context, u types.Utterance, pending types.PendingData) (Result, error) {
	candidates, _ := extra[[]host.Entity](pending, "candidates")
	intentName, _ := extra[string](pending, "intent")
	domain, _ := extra[string](pending, "domain")
	slots, _ := extra[map[string]any](pending, "slots")
	usedRelativeStep, _ := extra[bool](pending, "used_relative_step")
	text, _ := extra[string](pending, "text")

	selected, ok := selectFromAnswer(u.Text, candidates)
	if !ok {
		if match, llmOK := selectViaLLM(ctx, p.llm, u.Text, candidates); llmOK {
			selected, ok = []host.Entity{match}, true
		}
	}
	if !ok {
		return Result{Speech: pending.OriginalPrompt, Pending: &pending}, nil
	}
	if len(selected) == 0 {
		return done("Alles klar, dann nicht."), nil
	}

	return p.dispatchAndRespond(ctx, intentName, domain, selected, slots, usedRelativeStep, false, text)
}

func (p *Pipeline) askDisambiguation(req Request, candidates []host.Entity) Result {
	names := make([]string, len(candidates))
	for i, e := range candidates {
		names[i] = displayName(e)
	}
	speech := buildDisambiguationQuestion(names)
	pending := types.PendingData{
		Type:           "disambiguation",
		OriginalPrompt: speech,
		Extra: map[string]any{
			"candidates":         candidates,
			"intent":             req.Intent,
			"domain":             req.Domain,
			"slots":              req.Slots,
			"text":               req.Utterance.Text,
			"used_relative_step": req.UsedRelativeStep,
		},
	}
	return Result{Speech: speech, Pending: &pending}
}

func (p *Pipeline) dispatchAndRespond(ctx context.Context, intentName, domain string, entities []host.Entity, slots map[string]any, usedRelativeStep, fromCache bool, text string) (Result, error) {
	var results []host.IntentResult
	var dispatched []host.Entity

	for _, e := range entities {
		var res host.IntentResult
		err := p.breaker.Execute(func() error {
			r, derr := p.dispatcher.Dispatch(ctx, intentName, e.ID, slots)
			res = r
			return derr
		})
		if err != nil {
			continue
		}
		if res.Err != nil {
			continue
		}
		results = append(results, res)
		dispatched = append(dispatched, e)
	}

	if len(dispatched) == 0 {
		return done("Das hat leider nicht geklappt."), nil
	}

	verifyExpectedState(ctx, p.registry, intentName, dispatched)

	speech := lastNonEmptySpeech(results)
	if speech != "" {
		speech = german.NormalizeSpeechForTTS(speech)
	} else {
		names := make([]string, len(dispatched))
		for i, e := range dispatched {
			names[i] = displayName(e)
		}
		speech = buildConfirmation(intentName, names, slots)
	}

	if p.cache != nil && !fromCache {
		entityIDs := make([]string, len(dispatched))
		for i, e := range dispatched {
			entityIDs[i] = e.ID
		}
		_ = p.cache.Store(ctx, semcache.StoreParams{
			Text:             text,
			Domain:           domain,
			Intent:           intentName,
			EntityIDs:        entityIDs,
			Slots:            slots,
			Verified:         true,
			UsedRelativeStep: usedRelativeStep,
		})
	}

	return done(speech), nil
}

func displayName(e host.Entity) string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

func lastNonEmptySpeech(results []host.IntentResult) string {
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].Speech != "" {
			return results[i].Speech
		}
	}
	return ""
}

// extra reads a typed value out of pending.Extra, returning the zero value
// and ok=false on a missing key or type mismatch.
func extra[T any](pending types.PendingData, key string) (T, bool) {
	var zero T
	v, ok := pending.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

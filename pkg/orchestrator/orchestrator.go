package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kr0ner/multistage-assist/internal/observe"
	"github.com/kr0ner/multistage-assist/pkg/aliasstore"
	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/capability"
	"github.com/kr0ner/multistage-assist/pkg/execute"
	"github.com/kr0ner/multistage-assist/pkg/host"
)

const (
	// defaultPendingTTL is T_PENDING: a pending record older than this is
	// dropped the next time a *different* conversation sends an utterance.
	// Matches internal/config's own default so a caller that skips
	// WithPendingTTL still gets the 15s window.
	defaultPendingTTL = 15 * time.Second

	// defaultRetryMax is R_MAX: a continuation that still hasn't resolved
	// after this many re-prompts is abandoned rather than asked again.
	defaultRetryMax = 2
)

// now is overridable in tests; production code always uses time.Now.
var now = time.Now

// Orchestrator drives one utterance through the stage cascade, owns
// per-conversation pending state, and hands a resolved intent to the
// execution pipeline.
//
// A sync.RWMutex-guarded map keyed by conversation ID tracks pending
// multi-turn state; functional options are applied after the zero value
// is built.
//
// All exported methods are safe for concurrent use.
type Orchestrator struct {
	mu      sync.RWMutex
	pending map[string]types.PendingRecord

	stages       []Stage
	pipeline     *execute.Pipeline
	registry     host.Registry
	aliases      aliasstore.Store
	capabilities map[string]capability.Capability

	pendingTTL time.Duration
	retryMax   int
}

// Option configures an Orchestrator during construction.
type Option func(*Orchestrator)

// WithPendingTTL overrides the default pending-record TTL.
func WithPendingTTL(d time.Duration) Option {
	return func(o *Orchestrator) { o.pendingTTL = d }
}

// WithRetryMax overrides the default re-prompt retry ceiling.
func WithRetryMax(n int) Option {
	return func(o *Orchestrator) { o.retryMax = n }
}

// New constructs an Orchestrator. stages run in order for a fresh
// utterance; capabilities are indexed by [capability.Capability.Name] so a
// resumed conversation routes back to whichever one asked the pending
// question.
func New(
	stages []Stage,
	pipeline *execute.Pipeline,
	registry host.Registry,
	aliases aliasstore.Store,
	capabilities []capability.Capability,
	opts ...Option,
) *Orchestrator {
	capByName := make(map[string]capability.Capability, len(capabilities))
	for _, c := range capabilities {
		capByName[c.Name()] = c
	}

	o := &Orchestrator{
		pending:      make(map[string]types.PendingRecord),
		stages:       stages,
		pipeline:     pipeline,
		registry:     registry,
		aliases:      aliases,
		capabilities: capByName,
		pendingTTL:   defaultPendingTTL,
		retryMax:     defaultRetryMax,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Process runs u through the pipeline: resuming a pending conversation if
// one is waiting, otherwise running the full stage cascade.
func (o *Orchestrator) Process(ctx context.Context, u types.Utterance) (types.Reply, error) {
	o.sweepStale(u.ConversationID)

	o.mu.RLock()
	rec, hasPending := o.pending[u.ConversationID]
	o.mu.RUnlock()

	if hasPending {
		return o.continuePending(ctx, u, rec)
	}

	result, err := o.runCascade(ctx, u)
	if err != nil {
		return types.Reply{}, fmt.Errorf("orchestrator: %w", err)
	}
	return o.handleResult(ctx, u, result)
}

// runCascade runs the stage sequence for a fresh utterance, threading each
// stage's escalation Context into the next. A StatusEscalateChat result
// skips straight to the final stage (the cloud fallback) rather than
// running the intermediate stages against text that is already known
// to be conversational rather than a command.
func (o *Orchestrator) runCascade(ctx context.Context, u types.Utterance) (types.StageResult, error) {
	var stageCtx map[string]any
	for i, stage := range o.stages {
		result, err := o.processStage(ctx, stage, u, stageCtx)
		if err != nil {
			return types.StageResult{}, fmt.Errorf("%s: %w", stage.Name(), err)
		}
		switch result.Status {
		case types.StatusEscalate:
			stageCtx = result.Context
			continue
		case types.StatusEscalateChat:
			if i == len(o.stages)-1 {
				return result, nil
			}
			last := o.stages[len(o.stages)-1]
			final, err := o.processStage(ctx, last, u, result.Context)
			if err != nil {
				return types.StageResult{}, fmt.Errorf("%s: %w", last.Name(), err)
			}
			return final, nil
		default:
			return result, nil
		}
	}
	return types.Error("Entschuldigung, das habe ich nicht verstanden.", u.Text), nil
}

// processStage wraps a single stage invocation with a trace span and a
// latency recording, keeping the cascade's control flow in runCascade free
// of instrumentation noise.
func (o *Orchestrator) processStage(ctx context.Context, stage Stage, u types.Utterance, stageCtx map[string]any) (types.StageResult, error) {
	ctx, span := observe.StartSpan(ctx, "orchestrator.stage."+stage.Name())
	defer span.End()

	start := now()
	result, err := stage.Process(ctx, u, stageCtx)
	observe.DefaultMetrics().RecordStage(ctx, stage.Name(), now().Sub(start).Seconds())
	return result, err
}

// handleResult converts a terminal StageResult into a spoken Reply,
// dispatching a success through the execution pipeline and storing any
// pending continuation the result or the pipeline produced.
func (o *Orchestrator) handleResult(ctx context.Context, u types.Utterance, result types.StageResult) (types.Reply, error) {
	switch result.Status {
	case types.StatusSuccess:
		return o.execute(ctx, u, result)
	case types.StatusPending:
		return o.storeFreshPending(u.ConversationID, result.PendingData), nil
	case types.StatusMultiCommand:
		return o.handleMultiCommand(ctx, u, result)
	case types.StatusError:
		return types.Reply{Speech: result.Response}, nil
	default:
		return types.Reply{Speech: "Entschuldigung, das habe ich nicht verstanden."}, nil
	}
}

// execute resolves result's entity IDs against the registry and hands the
// request to the execution pipeline.
func (o *Orchestrator) execute(ctx context.Context, u types.Utterance, result types.StageResult) (types.Reply, error) {
	candidates := make([]host.Entity, 0, len(result.EntityIDs))
	for _, id := range result.EntityIDs {
		entity, err := o.registry.Entity(ctx, id)
		if err != nil {
			return types.Reply{}, fmt.Errorf("orchestrator: entity lookup: %w", err)
		}
		if entity != nil {
			candidates = append(candidates, *entity)
		}
	}

	req := execute.Request{
		Utterance:              u,
		Intent:                 result.Intent,
		Domain:                 contextString(result.Context, "domain"),
		Candidates:             candidates,
		Slots:                  result.Params,
		RequiredDisambiguation: contextBool(result.Context, "required_disambiguation"),
		UsedRelativeStep:       contextBool(result.Context, "used_relative_step"),
		FromCache:              contextBool(result.Context, "from_cache"),
	}

	res, err := o.pipeline.Execute(ctx, req)
	if err != nil {
		return types.Reply{}, fmt.Errorf("orchestrator: execute: %w", err)
	}
	if res.Pending != nil {
		return o.storeFreshPending(u.ConversationID, *res.Pending), nil
	}
	return types.Reply{Speech: res.Speech}, nil
}

// handleMultiCommand runs each atomic command through a fresh cascade in
// order, halting and storing a pending continuation (with the remaining
// commands attached) if one of them needs another turn from the user.
func (o *Orchestrator) handleMultiCommand(ctx context.Context, u types.Utterance, result types.StageResult) (types.Reply, error) {
	var speeches []string
	for i, cmd := range result.Commands {
		subU := u.WithText(cmd)
		subResult, err := o.runCascade(ctx, subU)
		if err != nil {
			return types.Reply{}, err
		}
		if subResult.Status == types.StatusPending {
			pending := subResult.PendingData
			pending.RemainingMultiCommands = append([]string{}, result.Commands[i+1:]...)
			return o.storeFreshPending(u.ConversationID, pending), nil
		}
		reply, err := o.handleResult(ctx, subU, subResult)
		if err != nil {
			return types.Reply{}, err
		}
		if reply.Speech != "" {
			speeches = append(speeches, reply.Speech)
		}
	}
	return types.Reply{Speech: strings.Join(speeches, " ")}, nil
}

// continuePending resumes a stored pending record against u, routing by
// pending.Data.Type: disambiguation to the execution pipeline,
// area_learning to the orchestrator's own alias-teaching flow, and
// anything else to the matching registered capability.
func (o *Orchestrator) continuePending(ctx context.Context, u types.Utterance, rec types.PendingRecord) (types.Reply, error) {
	switch rec.Data.Type {
	case "disambiguation":
		res, err := o.pipeline.ContinueDisambiguation(ctx, u, rec.Data)
		if err != nil {
			return types.Reply{}, fmt.Errorf("orchestrator: continue disambiguation: %w", err)
		}
		if res.Pending != nil {
			return o.storeReprompt(u.ConversationID, rec, *res.Pending), nil
		}
		o.clearPending(u.ConversationID)
		return o.afterContinuation(ctx, u, rec, types.Reply{Speech: res.Speech})
	case "area_learning":
		return o.continueAreaLearning(ctx, u, rec)
	default:
		cap, ok := o.capabilities[rec.Data.Type]
		if !ok {
			o.clearPending(u.ConversationID)
			result, err := o.runCascade(ctx, u)
			if err != nil {
				return types.Reply{}, err
			}
			return o.handleResult(ctx, u, result)
		}
		outcome, err := cap.Continue(ctx, u, rec.Data)
		if err != nil {
			return types.Reply{}, fmt.Errorf("orchestrator: capability continue: %w", err)
		}
		observe.DefaultMetrics().RecordCapabilityTurn(ctx, cap.Name(), "continue")
		if outcome.Pending != nil {
			return o.storeReprompt(u.ConversationID, rec, *outcome.Pending), nil
		}
		o.clearPending(u.ConversationID)
		return o.afterContinuation(ctx, u, rec, types.Reply{Speech: outcome.Speech})
	}
}

// continueAreaLearning matches u's answer against the candidate area names
// attached to the pending question, teaches the alias on a match, then
// re-runs the original utterance that triggered the question.
func (o *Orchestrator) continueAreaLearning(ctx context.Context, u types.Utterance, rec types.PendingRecord) (types.Reply, error) {
	candidates, _ := rec.Data.Get("candidates")
	names, _ := candidates.([]string)

	match, ok := matchAreaAnswer(u.Text, names)
	if !ok {
		if rec.Data.RetryCount >= o.retryMax {
			o.clearPending(u.ConversationID)
			return types.Reply{Speech: "Alles klar, ich breche das ab."}, nil
		}
		pending := rec.Data
		pending.RetryCount++
		o.storeRecord(u.ConversationID, rec.StageName, pending)
		return types.Reply{Speech: pending.OriginalPrompt, ContinueConversation: true}, nil
	}

	if learnKey, _ := rec.Data.Get("learn_key"); learnKey != nil {
		if key, ok := learnKey.(string); ok && o.aliases != nil {
			if err := o.aliases.SetAreaAlias(ctx, key, match); err != nil {
				return types.Reply{}, fmt.Errorf("orchestrator: learn area alias: %w", err)
			}
		}
	}

	o.clearPending(u.ConversationID)

	originalText, _ := rec.Data.Get("original_text")
	text, _ := originalText.(string)
	if text == "" {
		text = u.Text
	}
	subU := u.WithText(text)
	result, err := o.runCascade(ctx, subU)
	if err != nil {
		return types.Reply{}, err
	}
	return o.handleResult(ctx, subU, result)
}

// afterContinuation resumes any remaining multi-command sequence once a
// pending record resolves without asking another question.
func (o *Orchestrator) afterContinuation(ctx context.Context, u types.Utterance, rec types.PendingRecord, reply types.Reply) (types.Reply, error) {
	remaining := rec.Data.RemainingMultiCommands
	if len(remaining) == 0 {
		return reply, nil
	}
	rest, err := o.handleMultiCommand(ctx, u, types.MultiCommand(remaining, nil, u.Text))
	if err != nil {
		return types.Reply{}, err
	}
	speeches := []string{reply.Speech, rest.Speech}
	return types.Reply{Speech: strings.Join(speeches, " "), ContinueConversation: rest.ContinueConversation}, nil
}

// storeFreshPending stores a brand-new pending record (RetryCount 0).
func (o *Orchestrator) storeFreshPending(conversationID string, data types.PendingData) types.Reply {
	data.RetryCount = 0
	o.storeRecord(conversationID, data.Type, data)
	return types.Reply{Speech: data.OriginalPrompt, ContinueConversation: true}
}

// storeReprompt stores a still-pending continuation result, incrementing
// RetryCount against the prior record and giving up once retryMax is
// exceeded.
func (o *Orchestrator) storeReprompt(conversationID string, prior types.PendingRecord, data types.PendingData) types.Reply {
	if prior.Data.RetryCount >= o.retryMax {
		o.clearPending(conversationID)
		return types.Reply{Speech: "Alles klar, ich breche das ab."}
	}
	data.RetryCount = prior.Data.RetryCount + 1
	o.storeRecord(conversationID, data.Type, data)
	return types.Reply{Speech: data.OriginalPrompt, ContinueConversation: true}
}

func (o *Orchestrator) storeRecord(conversationID, stageName string, data types.PendingData) {
	if data.CreatedAt.IsZero() {
		data.CreatedAt = now()
	}
	o.mu.Lock()
	_, existed := o.pending[conversationID]
	o.pending[conversationID] = types.PendingRecord{
		ConversationID: conversationID,
		StageName:      stageName,
		Data:           data,
	}
	o.mu.Unlock()
	if !existed {
		observe.DefaultMetrics().PendingActive.Add(context.Background(), 1)
	}
}

func (o *Orchestrator) clearPending(conversationID string) {
	o.mu.Lock()
	_, existed := o.pending[conversationID]
	delete(o.pending, conversationID)
	o.mu.Unlock()
	if existed {
		observe.DefaultMetrics().PendingActive.Add(context.Background(), -1)
	}
}

// sweepStale drops every pending record older than pendingTTL belonging to
// a conversation other than exceptID — the record for the conversation
// actually making progress right now is never swept out from under it.
func (o *Orchestrator) sweepStale(exceptID string) {
	cutoff := now()
	o.mu.Lock()
	var swept int
	for id, rec := range o.pending {
		if id == exceptID {
			continue
		}
		if rec.Stale(cutoff, o.pendingTTL) {
			delete(o.pending, id)
			swept++
		}
	}
	o.mu.Unlock()
	if swept > 0 {
		observe.DefaultMetrics().PendingActive.Add(context.Background(), int64(-swept))
	}
}

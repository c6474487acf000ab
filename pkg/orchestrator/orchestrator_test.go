package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/capability"
	"github.com/kr0ner/multistage-assist/pkg/execute"
	"github.com/kr0ner/multistage-assist/pkg/host"
	hostmock "github.com/kr0ner/multistage-assist/pkg/host/mock"
)

// fakeStage is a minimal, fully scriptable [Stage] for exercising the
// cascade's control flow without any of the real resolver machinery.
type fakeStage struct {
	name string
	fn   func(ctx context.Context, u types.Utterance, prevContext map[string]any) (types.StageResult, error)
}

func (s *fakeStage) Name() string { return s.name }

func (s *fakeStage) Process(ctx context.Context, u types.Utterance, prevContext map[string]any) (types.StageResult, error) {
	return s.fn(ctx, u, prevContext)
}

func escalating(name string) *fakeStage {
	return &fakeStage{name: name, fn: func(_ context.Context, u types.Utterance, prevContext map[string]any) (types.StageResult, error) {
		return types.Escalate(prevContext, u.Text), nil
	}}
}

// fakeCapability is a minimal, fully scriptable [capability.Capability].
type fakeCapability struct {
	name        string
	startFn     func(ctx context.Context, u types.Utterance, intentName string, slots map[string]string) (capability.Outcome, bool, error)
	continueFn  func(ctx context.Context, u types.Utterance, pending types.PendingData) (capability.Outcome, error)
}

func (c *fakeCapability) Name() string { return c.name }

func (c *fakeCapability) Start(ctx context.Context, u types.Utterance, intentName string, slots map[string]string) (capability.Outcome, bool, error) {
	if c.startFn == nil {
		return capability.Outcome{}, false, nil
	}
	return c.startFn(ctx, u, intentName, slots)
}

func (c *fakeCapability) Continue(ctx context.Context, u types.Utterance, pending types.PendingData) (capability.Outcome, error) {
	return c.continueFn(ctx, u, pending)
}

func newTestPipeline() *execute.Pipeline {
	registry := &hostmock.Registry{EntityByID: map[string]host.Entity{
		"light.buero": {ID: "light.buero", Name: "Büro", State: "off"},
	}}
	dispatcher := &hostmock.IntentDispatcher{DispatchResult: host.IntentResult{EntityID: "light.buero"}}
	return execute.New(registry, dispatcher, nil, nil)
}

func TestOrchestrator_Process_SuccessDispatchesThroughPipeline(t *testing.T) {
	success := &fakeStage{name: "s0", fn: func(_ context.Context, u types.Utterance, _ map[string]any) (types.StageResult, error) {
		return types.Success("HassTurnOn", []string{"light.buero"}, map[string]any{}, nil, u.Text), nil
	}}

	o := New([]Stage{success}, newTestPipeline(), &hostmock.Registry{EntityByID: map[string]host.Entity{
		"light.buero": {ID: "light.buero", Name: "Büro", State: "off"},
	}}, nil, nil)

	reply, err := o.Process(context.Background(), types.Utterance{Text: "Schalte das Büro ein", ConversationID: "c1"})
	require.NoError(t, err)
	assert.Contains(t, reply.Speech, "Büro")
}

func TestOrchestrator_Process_EscalateCascadesToNextStage(t *testing.T) {
	final := &fakeStage{name: "s1", fn: func(_ context.Context, u types.Utterance, prevContext map[string]any) (types.StageResult, error) {
		assert.NotNil(t, prevContext, "the second stage must receive the first stage's escalation context")
		return types.Error("von Stufe zwei beantwortet", u.Text), nil
	}}
	o := New([]Stage{escalating("s0"), final}, newTestPipeline(), &hostmock.Registry{}, nil, nil)

	reply, err := o.Process(context.Background(), types.Utterance{Text: "irgendwas", ConversationID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "von Stufe zwei beantwortet", reply.Speech)
}

func TestOrchestrator_Process_NoStageResolves_ReturnsApology(t *testing.T) {
	o := New([]Stage{escalating("s0"), escalating("s1")}, newTestPipeline(), &hostmock.Registry{}, nil, nil)

	reply, err := o.Process(context.Background(), types.Utterance{Text: "unverständlich", ConversationID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "Entschuldigung, das habe ich nicht verstanden.", reply.Speech)
}

func TestOrchestrator_Process_EscalateChatSkipsToFinalStage(t *testing.T) {
	var middleCalled bool
	middle := &fakeStage{name: "middle", fn: func(context.Context, types.Utterance, map[string]any) (types.StageResult, error) {
		middleCalled = true
		return types.StageResult{}, nil
	}}
	cloud := &fakeStage{name: "cloud", fn: func(_ context.Context, u types.Utterance, _ map[string]any) (types.StageResult, error) {
		return types.Error("Klar, erzähl mir mehr.", u.Text), nil
	}}
	first := &fakeStage{name: "s0", fn: func(_ context.Context, u types.Utterance, _ map[string]any) (types.StageResult, error) {
		return types.EscalateChat(nil, u.Text), nil
	}}

	o := New([]Stage{first, middle, cloud}, newTestPipeline(), &hostmock.Registry{}, nil, nil)

	reply, err := o.Process(context.Background(), types.Utterance{Text: "wie geht es dir", ConversationID: "c1"})
	require.NoError(t, err)
	assert.False(t, middleCalled, "EscalateChat must skip straight to the final stage")
	assert.Equal(t, "Klar, erzähl mir mehr.", reply.Speech)
}

func TestOrchestrator_Process_PendingThenContinueRoutesToCapability(t *testing.T) {
	timerCap := &fakeCapability{
		name: "timer",
		startFn: func(_ context.Context, u types.Utterance, intentName string, _ map[string]string) (capability.Outcome, bool, error) {
			if intentName != "SetTimer" {
				return capability.Outcome{}, false, nil
			}
			return capability.Ask("timer", "Für wie lange?", map[string]any{}), true, nil
		},
		continueFn: func(_ context.Context, u types.Utterance, _ types.PendingData) (capability.Outcome, error) {
			return capability.Done("Timer für " + u.Text + " gestellt."), nil
		},
	}
	start := &fakeStage{name: "s2", fn: func(_ context.Context, u types.Utterance, _ map[string]any) (types.StageResult, error) {
		outcome, ok, err := timerCap.Start(context.Background(), u, "SetTimer", nil)
		require.NoError(t, err)
		require.True(t, ok)
		return types.Pending(outcome.Pending.Type, outcome.Speech, *outcome.Pending, u.Text), nil
	}}

	o := New([]Stage{start}, newTestPipeline(), &hostmock.Registry{}, nil, []capability.Capability{timerCap})

	first, err := o.Process(context.Background(), types.Utterance{Text: "stell einen timer", ConversationID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "Für wie lange?", first.Speech)
	assert.True(t, first.ContinueConversation)

	second, err := o.Process(context.Background(), types.Utterance{Text: "5 Minuten", ConversationID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "Timer für 5 Minuten gestellt.", second.Speech)
}

func TestOrchestrator_Process_MultiCommandJoinsEachReply(t *testing.T) {
	multi := &fakeStage{name: "s2", fn: func(_ context.Context, u types.Utterance, prevContext map[string]any) (types.StageResult, error) {
		if prevContext == nil {
			return types.MultiCommand([]string{"befehl eins", "befehl zwei"}, nil, u.Text), nil
		}
		return types.Error("antwort: "+u.Text, u.Text), nil
	}}

	o := New([]Stage{multi}, newTestPipeline(), &hostmock.Registry{}, nil, nil)

	reply, err := o.Process(context.Background(), types.Utterance{Text: "mach beides", ConversationID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "antwort: befehl eins antwort: befehl zwei", reply.Speech)
}

func TestOrchestrator_Process_MultiCommandStopsOnFirstPending(t *testing.T) {
	timerCap := &fakeCapability{
		name: "timer",
		continueFn: func(_ context.Context, u types.Utterance, _ types.PendingData) (capability.Outcome, error) {
			return capability.Done("Timer für " + u.Text + " gestellt."), nil
		},
	}
	multi := &fakeStage{name: "s2", fn: func(_ context.Context, u types.Utterance, prevContext map[string]any) (types.StageResult, error) {
		if prevContext == nil {
			return types.MultiCommand([]string{"stell einen timer", "und mach das licht an"}, nil, u.Text), nil
		}
		if u.Text == "stell einen timer" {
			return types.Pending("timer", "Für wie lange?", types.PendingData{Type: "timer"}, u.Text), nil
		}
		return types.Error("Licht an", u.Text), nil
	}}

	o := New([]Stage{multi}, newTestPipeline(), &hostmock.Registry{}, nil, []capability.Capability{timerCap})

	first, err := o.Process(context.Background(), types.Utterance{Text: "stell einen timer und mach das licht an", ConversationID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "Für wie lange?", first.Speech)
	assert.True(t, first.ContinueConversation, "the remaining command must wait for the pending timer question")

	second, err := o.Process(context.Background(), types.Utterance{Text: "5 Minuten", ConversationID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "Timer für 5 Minuten gestellt.", second.Speech)
}

func TestOrchestrator_Process_PendingTTLExpiresForOtherConversations(t *testing.T) {
	restore := now
	t.Cleanup(func() { now = restore })

	ask := &fakeStage{name: "s2", fn: func(_ context.Context, u types.Utterance, _ map[string]any) (types.StageResult, error) {
		return types.Pending("timer", "Für wie lange?", types.PendingData{Type: "timer"}, u.Text), nil
	}}

	o := New([]Stage{ask}, newTestPipeline(), &hostmock.Registry{}, nil,
		[]capability.Capability{&fakeCapability{name: "timer"}},
		WithPendingTTL(time.Millisecond))

	_, err := o.Process(context.Background(), types.Utterance{Text: "stell einen timer", ConversationID: "c1"})
	require.NoError(t, err)

	now = func() time.Time { return time.Now().Add(time.Hour) }

	// A different conversation's utterance triggers the sweep of c1's stale
	// pending record.
	_, err = o.Process(context.Background(), types.Utterance{Text: "hallo", ConversationID: "c2"})
	require.NoError(t, err)

	o.mu.RLock()
	_, stillPending := o.pending["c1"]
	o.mu.RUnlock()
	assert.False(t, stillPending, "stale pending record for another conversation must be swept")
}

// Package types defines the shared data model for the intent-resolver
// pipeline: the utterance the pipeline consumes, the tagged-variant
// [StageResult] every stage returns, the per-conversation [PendingRecord],
// and the [CacheEntry] persisted by the semantic cache.
package types

import "time"

// Utterance is a single user input turn: opaque text plus routing metadata.
// An Utterance is immutable within a request — stages and capabilities must
// treat it as a value, never mutate fields in place.
type Utterance struct {
	// Text is the free-form user input, already transcribed to German text.
	Text string

	// ConversationID scopes pending-state and chat-history lookups. All
	// utterances belonging to the same multi-turn dialog share one ID.
	ConversationID string

	// DeviceID identifies the voice satellite or client that captured the
	// utterance, used by capabilities that need a default notification
	// target (e.g. timer).
	DeviceID string

	// Language is a BCP-47 language tag. The pipeline only supports "de"
	// but carries the field through for host-platform compatibility.
	Language string

	// Context carries stage-to-stage hints accumulated across an escalation
	// chain (NLU probe hints, resolved area/floor, chat_mode, ...). Keys are
	// informal; see individual stage documentation for the ones each reads.
	Context map[string]any
}

// WithText returns a copy of u with Text replaced. Used when a stage
// rewrites an utterance (e.g. Stage2 compound-command splitting) without
// mutating the caller's value.
func (u Utterance) WithText(text string) Utterance {
	u.Text = text
	return u
}

// MergeContext returns a copy of u whose Context is the union of u.Context
// and extra, with extra's values taking precedence on key collision.
func (u Utterance) MergeContext(extra map[string]any) Utterance {
	merged := make(map[string]any, len(u.Context)+len(extra))
	for k, v := range u.Context {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	u.Context = merged
	return u
}

// Reply is what the conversation front-end returns for a processed
// utterance: text ready for TTS, plus whether the dialog continues.
type Reply struct {
	// Speech is the TTS-safe spoken response.
	Speech string

	// ContinueConversation is true when the pipeline expects another turn
	// from the same conversation (a pending question was asked).
	ContinueConversation bool
}

// now is overridable in tests; production code always uses time.Now.
var now = time.Now

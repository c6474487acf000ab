package types

import "time"

// StageStatus is the tag of the [StageResult] sum type. The orchestrator
// switches on this value; stages never construct a StageResult with a zero
// StageStatus directly — use the constructor functions below.
type StageStatus int

const (
	// StatusSuccess carries a fully resolved intent ready for execution.
	StatusSuccess StageStatus = iota + 1

	// StatusEscalate means this stage could not resolve the utterance;
	// the orchestrator passes Context to the next stage in order.
	StatusEscalate

	// StatusEscalateChat skips all remaining resolver stages and routes
	// straight to the cloud stage in chat mode.
	StatusEscalateChat

	// StatusMultiCommand carries a sequence of atomic utterances the
	// orchestrator must process one at a time, recursively.
	StatusMultiCommand

	// StatusPending means another turn is needed from the user; PendingData
	// names the continuation handler via its Type field.
	StatusPending

	// StatusError is a terminal failure with a pre-built spoken reply.
	StatusError
)

// String returns the lower-case tag name, matching the status literals used
// in the system this pipeline generalises ("success", "escalate", ...).
func (s StageStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusEscalate:
		return "escalate"
	case StatusEscalateChat:
		return "escalate_chat"
	case StatusMultiCommand:
		return "multi_command"
	case StatusPending:
		return "pending"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// PendingData carries everything needed to resume a multi-turn dialog on
// the next utterance from the same conversation. Type names the exact
// continuation handler (e.g. "disambiguation", "area_learning", "timer").
// Fields beyond the common ones are stage/capability-specific and live in
// Extra.
type PendingData struct {
	// Type names the continuation handler that owns this pending state.
	Type string

	// OriginalPrompt is the question read back to the user.
	OriginalPrompt string

	// CreatedAt is the wall-clock time the record was stored. Set by the
	// orchestrator, never by the stage that produced the StageResult.
	CreatedAt time.Time

	// RetryCount increments each time a re-prompt fails to resolve the
	// pending state. At R_MAX+1 the record is dropped.
	RetryCount int

	// RemainingMultiCommands holds the commands from a StatusMultiCommand
	// result that were not yet processed when a nested pending occurred.
	RemainingMultiCommands []string

	// Extra carries continuation-specific accumulated state (candidate
	// lists, slot values gathered so far, ...). Each continuation handler
	// knows its own key set; unknown keys are passed through unexamined.
	Extra map[string]any
}

// Get returns Extra[key] with an ok flag, guarding against a nil map.
func (p PendingData) Get(key string) (any, bool) {
	if p.Extra == nil {
		return nil, false
	}
	v, ok := p.Extra[key]
	return v, ok
}

// WithExtra returns a copy of p with key set to value in Extra.
func (p PendingData) WithExtra(key string, value any) PendingData {
	extra := make(map[string]any, len(p.Extra)+1)
	for k, v := range p.Extra {
		extra[k] = v
	}
	extra[key] = value
	p.Extra = extra
	return p
}

// StageResult is the pipeline's universal currency: a tagged variant with
// exactly one active "view" selected by Status. Only the fields relevant to
// Status are meaningful; others are zero-valued.
//
// Invariants (enforced by callers, not by the type itself):
//   - StatusSuccess always carries a non-empty Intent.
//   - EntityIDs may be empty only when the execution pipeline knows how to
//     produce an error reply for it (e.g. "no matching devices").
//   - PendingData.Type names the exact continuation handler.
type StageResult struct {
	Status StageStatus

	// ── success view ──
	Intent    string
	EntityIDs []string
	Params    map[string]any

	// ── escalate / multi_command / pending / error — shared ──
	Context map[string]any
	RawText string

	// ── multi_command view ──
	Commands []string

	// ── pending view ──
	PendingData PendingData

	// ── error view ──
	Response string
}

// Success constructs a StatusSuccess result.
func Success(intent string, entityIDs []string, params, context map[string]any, rawText string) StageResult {
	return StageResult{
		Status:    StatusSuccess,
		Intent:    intent,
		EntityIDs: entityIDs,
		Params:    params,
		Context:   context,
		RawText:   rawText,
	}
}

// Escalate constructs a StatusEscalate result.
func Escalate(context map[string]any, rawText string) StageResult {
	return StageResult{Status: StatusEscalate, Context: context, RawText: rawText}
}

// EscalateChat constructs a StatusEscalateChat result. It sets
// context["chat_mode"]=true on a copy of context so callers needn't repeat
// that convention at every call site.
func EscalateChat(context map[string]any, rawText string) StageResult {
	ctx := make(map[string]any, len(context)+1)
	for k, v := range context {
		ctx[k] = v
	}
	ctx["chat_mode"] = true
	return StageResult{Status: StatusEscalateChat, Context: ctx, RawText: rawText}
}

// MultiCommand constructs a StatusMultiCommand result.
func MultiCommand(commands []string, context map[string]any, rawText string) StageResult {
	return StageResult{Status: StatusMultiCommand, Commands: commands, Context: context, RawText: rawText}
}

// Pending constructs a StatusPending result. pendingType is written into
// pendingData.Type (overwriting any existing value) so callers can build
// the data map first and name the type last.
func Pending(pendingType, message string, pendingData PendingData, rawText string) StageResult {
	pendingData.Type = pendingType
	pendingData.OriginalPrompt = message
	return StageResult{Status: StatusPending, PendingData: pendingData, RawText: rawText}
}

// Error constructs a StatusError result carrying a pre-built spoken reply.
func Error(response, rawText string) StageResult {
	return StageResult{Status: StatusError, Response: response, RawText: rawText}
}

// Package capability holds the multi-turn conversational flows that need
// more than one utterance to complete: setting a timer, creating a
// calendar event, dispatching a vacuum run. Each lives in its own
// sub-package (timer, calendar, vacuum) behind the shared Capability
// interface below. A capability never holds a reference back to the stage
// orchestrator that drives it, only to the host collaborators it needs.
package capability

import (
	"context"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
)

// Outcome is what a Capability produces for a single conversation turn:
// either a finished spoken reply, or another pending continuation the
// orchestrator must store and resume on the next utterance from the same
// conversation.
type Outcome struct {
	Speech  string
	Pending *types.PendingData
}

// Done constructs a finished Outcome carrying the final spoken reply.
func Done(speech string) Outcome {
	return Outcome{Speech: speech}
}

// Ask constructs an Outcome that asks the user a follow-up question and
// stores a pending continuation for the next turn. pendingType names the
// capability that resumes the flow (its Name, e.g. "timer"); extra carries
// the step to resume (under "step", e.g. "ask_duration") and whatever other
// state the capability needs to pick back up where it left off.
func Ask(pendingType, speech string, extra map[string]any) Outcome {
	pending := types.PendingData{Type: pendingType, OriginalPrompt: speech, Extra: extra}
	return Outcome{Speech: speech, Pending: &pending}
}

// Capability is a multi-turn conversational flow. Start is invoked the
// first time an intent is routed to it; Continue resumes a flow this same
// capability left pending on a prior turn.
type Capability interface {
	// Name identifies the capability for pending-record routing; it must
	// match the PendingData.Type value the capability itself stores via
	// Ask, so the orchestrator can route a resumed conversation back to
	// the right Capability.
	Name() string

	// Start begins handling a freshly detected intent/slots pair. A false
	// ok return means this capability does not own intentName; the caller
	// falls through to the generic resolver cascade instead.
	Start(ctx context.Context, u types.Utterance, intentName string, slots map[string]string) (outcome Outcome, ok bool, err error)

	// Continue resumes a flow this capability left pending, given the raw
	// text of the next utterance and the PendingData it stored.
	Continue(ctx context.Context, u types.Utterance, pending types.PendingData) (Outcome, error)
}

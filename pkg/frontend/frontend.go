// Package frontend is the conversation entry point: one function call per
// utterance, in front of the [orchestrator.Orchestrator]. It does not
// decide anything about intent resolution itself — it normalizes the
// inbound request, delegates to the orchestrator, and makes sure whatever
// comes back is safe to hand to a TTS engine.
package frontend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/german"
)

// Processor is the subset of [orchestrator.Orchestrator] the front-end
// depends on. A narrow interface, not the concrete type, so tests can
// supply a stub without constructing a full orchestrator.
type Processor interface {
	Process(ctx context.Context, u types.Utterance) (types.Reply, error)
}

// Frontend is the single entry point an embedding application calls for
// every incoming utterance: thin routing glue with no resolution logic
// of its own.
type Frontend struct {
	orchestrator Processor
}

// New returns a Frontend that delegates to orchestrator.
func New(orchestrator Processor) *Frontend {
	return &Frontend{orchestrator: orchestrator}
}

// Converse processes a single utterance and returns a TTS-safe reply.
// It never returns a reply with untranslated unit symbols or decimal dots —
// [german.NormalizeSpeechForTTS] is applied to whatever text the pipeline
// produced before it reaches the caller.
func (f *Frontend) Converse(ctx context.Context, u types.Utterance) (types.Reply, error) {
	text := strings.TrimSpace(u.Text)
	if text == "" {
		return types.Reply{Speech: "Ich habe dich nicht verstanden."}, nil
	}
	u.Text = text

	reply, err := f.orchestrator.Process(ctx, u)
	if err != nil {
		slog.Error("frontend: pipeline error",
			"conversation_id", u.ConversationID,
			"device_id", u.DeviceID,
			"err", err,
		)
		return types.Reply{Speech: "Entschuldigung, es ist ein interner Fehler aufgetreten."}, fmt.Errorf("frontend: %w", err)
	}

	reply.Speech = german.NormalizeSpeechForTTS(reply.Speech)
	slog.Debug("frontend: turn complete",
		"conversation_id", u.ConversationID,
		"continue", reply.ContinueConversation,
	)
	return reply, nil
}

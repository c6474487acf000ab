package execute

import (
	"context"
	"log/slog"

	"github.com/kr0ner/multistage-assist/pkg/host"
)

// verifyExpectedState is a best-effort post-dispatch check: for the two
// intents whose resulting state is unambiguous (on/off), re-read the
// registry and log a warning if the entity didn't land where expected. It
// never fails the pipeline — the host already reported success at
// dispatch time, this only catches a slow-to-report device.
func verifyExpectedState(ctx context.Context, registry host.Registry, intentName string, entities []host.Entity) {
	want, ok := desiredState(intentName)
	if !ok || registry == nil {
		return
	}
	for _, e := range entities {
		expect := want
		if e.Domain == "cover" {
			switch expect {
			case "on":
				expect = "open"
			case "off":
				expect = "closed"
			}
		}
		got, err := registry.State(ctx, e.ID)
		if err != nil {
			slog.Warn("execute: verify state read failed", "entity_id", e.ID, "error", err)
			continue
		}
		if got != expect {
			slog.Warn("execute: state did not match expectation after dispatch",
				"entity_id", e.ID, "want", expect, "got", got)
		}
	}
}

func desiredState(intentName string) (string, bool) {
	switch intentName {
	case "HassTurnOn":
		return "on", true
	case "HassTurnOff":
		return "off", true
	default:
		return "", false
	}
}

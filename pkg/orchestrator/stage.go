package orchestrator

import (
	"context"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
)

// Stage is one step of the cascade. prevContext carries whatever the
// previous stage's Escalate/EscalateChat result attached to Context;
// the first stage in the cascade receives a nil map.
type Stage interface {
	// Name identifies the stage in logs and tests.
	Name() string

	// Process resolves u, optionally informed by prevContext accumulated
	// from earlier stages in the same cascade.
	Process(ctx context.Context, u types.Utterance, prevContext map[string]any) (types.StageResult, error)
}

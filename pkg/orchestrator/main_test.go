package orchestrator

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies no goroutine started during an orchestrator test
// outlives it (the orchestrator itself sweeps stale pending records
// synchronously and starts no goroutines of its own) — the orchestrator is
// a long-lived, per-process singleton in production and a leak here would
// accumulate for the lifetime of the service.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

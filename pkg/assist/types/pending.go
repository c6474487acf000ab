package types

import "time"

// PendingRecord is the process-scoped state the [pkg/orchestrator] keeps
// for a conversation awaiting its next turn. It wraps the [PendingData]
// emitted by the stage that produced it with the bookkeeping the
// orchestrator itself owns (which stage to resume, aging).
//
// Invariants:
//   - at most one record per conversation ID,
//   - a record older than T_PENDING is stale and garbage-collected the next
//     time a *different* conversation sends an utterance,
//   - RetryCount increments per re-prompt; after R_MAX it is dropped.
type PendingRecord struct {
	ConversationID string
	StageName      string
	Data           PendingData
}

// Age returns how long ago the record was created.
func (r PendingRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.Data.CreatedAt)
}

// Stale reports whether the record is older than ttl.
func (r PendingRecord) Stale(now time.Time, ttl time.Duration) bool {
	return r.Age(now) > ttl
}

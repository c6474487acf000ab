// Package errs defines the sentinel error kinds the intent-resolver core
// distinguishes. Stages and capabilities
// wrap the underlying cause with fmt.Errorf("...: %w", kind) so callers can
// classify failures with errors.Is regardless of which provider produced
// the original error.
package errs

import "errors"

var (
	// ErrConfig marks a startup-time configuration failure (missing API key,
	// unreachable service). The dependent stage becomes permanently
	// inactive and always escalates once this is observed.
	ErrConfig = errors.New("assist: configuration error")

	// ErrTransient marks a remote call that failed due to timeout or a
	// 5xx-class response. The current stage falls back to escalate; cache
	// admission is skipped for the turn.
	ErrTransient = errors.New("assist: transient remote error")

	// ErrQuotaExhausted marks a cloud-provider 429. The cloud stage returns
	// a user-facing error reply; there is no retry within the same turn.
	ErrQuotaExhausted = errors.New("assist: quota exhausted")

	// ErrSchemaViolation marks an LLM response that failed to conform to
	// the requested JSON schema. Treated as a miss: the stage escalates.
	ErrSchemaViolation = errors.New("assist: schema violation")

	// ErrUnknownArea marks an area/floor resolution that returned no exact
	// match; the orchestrator enters area_learning pending mode with the
	// attached candidate list.
	ErrUnknownArea = errors.New("assist: unknown area")

	// ErrUnavailableEntity marks a dispatch target whose state was unknown
	// or unavailable at execution time.
	ErrUnavailableEntity = errors.New("assist: entity unavailable")

	// ErrNoCandidates marks a well-formed intent that resolved to zero
	// entities. Not itself an error condition for the pipeline (spec
	// treats it as a success with empty EntityIDs) — provided for
	// components that need to distinguish "no match" from other failures.
	ErrNoCandidates = errors.New("assist: no matching entities")
)

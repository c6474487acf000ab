// Package semcache implements the semantic command cache: a fingerprint
// index that maps the embedding of a normalized utterance to a previously
// verified (intent, entity_ids, slots) triple, so a repeated command can
// skip straight past the LLM stages.
package semcache

import (
	"context"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
)

// Store persists a cache's full entry set and cumulative stats across
// restarts. The Cache calls Save after releasing its own lock, so Save
// calls from concurrent admissions can overlap; implementations serialize
// their own writes.
type Store interface {
	// Load returns every persisted entry and the cumulative stats. A store
	// with nothing persisted yet returns (nil, types.CacheStats{}, nil).
	Load(ctx context.Context) ([]types.CacheEntry, types.CacheStats, error)

	// Save replaces the store's full contents with entries and stats. The
	// cache is rewritten wholesale on each admission rather than appended to.
	Save(ctx context.Context, entries []types.CacheEntry, stats types.CacheStats) error

	Close() error
}

// Package aliasstore persists the user-taught mapping from spoken strings
// to canonical area names and entity identifiers — the area-learning and
// entity-alias pending flows write here after a successful continuation so
// the same phrasing resolves immediately next time.
package aliasstore

import "context"

// Store is the persistence interface the resolvers use for learned
// aliases. Keys are case-folded and whitespace-trimmed by the caller (see
// [github.com/kr0ner/multistage-assist/pkg/german.Canonicalize]) before
// being passed here; implementations treat them as opaque strings.
type Store interface {
	// AreaAlias returns the canonical area name learned for key, if any.
	AreaAlias(ctx context.Context, key string) (area string, ok bool, err error)

	// SetAreaAlias records that key resolves to area.
	SetAreaAlias(ctx context.Context, key, area string) error

	// EntityAlias returns the entity ID learned for key, if any.
	EntityAlias(ctx context.Context, key string) (entityID string, ok bool, err error)

	// SetEntityAlias records that key resolves to entityID.
	SetEntityAlias(ctx context.Context, key, entityID string) error

	// Close flushes any pending writes and releases resources.
	Close() error
}

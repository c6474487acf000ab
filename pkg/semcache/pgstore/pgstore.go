// Package pgstore is a PostgreSQL/pgvector-backed [semcache.Store], for
// deployments that already run Postgres and would rather keep the cache
// snapshot in the same database than in a flat file.
package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/semcache"
)

var _ semcache.Store = (*Store)(nil)

const ddl = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS semantic_cache_entries (
    id                      BIGSERIAL    PRIMARY KEY,
    text                    TEXT         NOT NULL,
    embedding               vector(%d),
    domain                  TEXT         NOT NULL DEFAULT '',
    intent                  TEXT         NOT NULL,
    entity_ids              JSONB        NOT NULL DEFAULT '[]',
    slots                   JSONB        NOT NULL DEFAULT '{}',
    required_disambiguation BOOLEAN      NOT NULL DEFAULT false,
    disambiguation_options  JSONB        NOT NULL DEFAULT '{}',
    hits                    INT          NOT NULL DEFAULT 0,
    last_hit                TIMESTAMPTZ,
    verified                BOOLEAN      NOT NULL DEFAULT false,
    generated               BOOLEAN      NOT NULL DEFAULT false
);

CREATE INDEX IF NOT EXISTS idx_semantic_cache_embedding
    ON semantic_cache_entries USING hnsw (embedding vector_cosine_ops);

CREATE TABLE IF NOT EXISTS semantic_cache_stats (
    id             SMALLINT PRIMARY KEY DEFAULT 1,
    total_lookups  INT NOT NULL DEFAULT 0,
    cache_hits     INT NOT NULL DEFAULT 0,
    cache_misses   INT NOT NULL DEFAULT 0,
    CHECK (id = 1)
);
`

// Migrate creates the cache tables and the pgvector extension if they do
// not already exist. embeddingDimensions must match the configured
// embedding model.
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	if _, err := pool.Exec(ctx, fmt.Sprintf(ddl, embeddingDimensions)); err != nil {
		return fmt.Errorf("semcache/pgstore: migrate: %w", err)
	}
	return nil
}

// Store persists the cache snapshot in PostgreSQL. Save replaces the full
// table contents in one transaction, matching the jsonstore variant's
// rewrite-wholesale semantics.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an already-migrated pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Load(ctx context.Context) ([]types.CacheEntry, types.CacheStats, error) {
	const q = `
		SELECT text, embedding, domain, intent, entity_ids, slots,
		       required_disambiguation, disambiguation_options, hits,
		       last_hit, verified, generated
		FROM   semantic_cache_entries
		ORDER  BY id`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, types.CacheStats{}, fmt.Errorf("semcache/pgstore: load entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.CacheEntry, error) {
		var (
			e       types.CacheEntry
			vec     pgvector.Vector
			lastHit *time.Time
		)
		if err := row.Scan(
			&e.Text, &vec, &e.Domain, &e.Intent, &e.EntityIDs, &e.Slots,
			&e.RequiredDisambiguation, &e.DisambiguationOptions, &e.Hits,
			&lastHit, &e.Verified, &e.Generated,
		); err != nil {
			return types.CacheEntry{}, err
		}
		e.Embedding = vec.Slice()
		if lastHit != nil {
			e.LastHit = *lastHit
		}
		return e, nil
	})
	if err != nil {
		return nil, types.CacheStats{}, fmt.Errorf("semcache/pgstore: scan entries: %w", err)
	}

	var stats types.CacheStats
	const statsQ = `SELECT total_lookups, cache_hits, cache_misses FROM semantic_cache_stats WHERE id = 1`
	err = s.pool.QueryRow(ctx, statsQ).Scan(&stats.TotalLookups, &stats.CacheHits, &stats.CacheMisses)
	if err != nil && err != pgx.ErrNoRows {
		return nil, types.CacheStats{}, fmt.Errorf("semcache/pgstore: load stats: %w", err)
	}

	if entries == nil {
		entries = []types.CacheEntry{}
	}
	return entries, stats, nil
}

func (s *Store) Save(ctx context.Context, entries []types.CacheEntry, stats types.CacheStats) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("semcache/pgstore: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE semantic_cache_entries"); err != nil {
		return fmt.Errorf("semcache/pgstore: truncate: %w", err)
	}

	const insertQ = `
		INSERT INTO semantic_cache_entries
		    (text, embedding, domain, intent, entity_ids, slots,
		     required_disambiguation, disambiguation_options, hits,
		     last_hit, verified, generated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	batch := &pgx.Batch{}
	for _, e := range entries {
		var lastHit *time.Time
		if !e.LastHit.IsZero() {
			t := e.LastHit
			lastHit = &t
		}
		batch.Queue(insertQ,
			e.Text, pgvector.NewVector(e.Embedding), e.Domain, e.Intent,
			e.EntityIDs, e.Slots, e.RequiredDisambiguation,
			e.DisambiguationOptions, e.Hits, lastHit, e.Verified, e.Generated,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("semcache/pgstore: insert entries: %w", err)
	}

	const upsertStats = `
		INSERT INTO semantic_cache_stats (id, total_lookups, cache_hits, cache_misses)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
		    total_lookups = EXCLUDED.total_lookups,
		    cache_hits    = EXCLUDED.cache_hits,
		    cache_misses  = EXCLUDED.cache_misses`
	if _, err := tx.Exec(ctx, upsertStats, stats.TotalLookups, stats.CacheHits, stats.CacheMisses); err != nil {
		return fmt.Errorf("semcache/pgstore: save stats: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("semcache/pgstore: commit: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }

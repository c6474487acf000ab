// Package jsonstore is the default [semcache.Store]: the full cache
// snapshot (entries plus cumulative stats) serialized to a single JSON
// file, rewritten atomically (temp file + rename) on every admission.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/semcache"
)

var _ semcache.Store = (*Store)(nil)

const timeLayout = time.RFC3339

type entryDoc struct {
	Text                   string         `json:"text"`
	Embedding              []float32      `json:"embedding"`
	Domain                 string         `json:"domain"`
	Intent                 string         `json:"intent"`
	EntityIDs              []string       `json:"entity_ids"`
	Slots                  map[string]any `json:"slots,omitempty"`
	RequiredDisambiguation bool           `json:"required_disambiguation"`
	DisambiguationOptions  map[string]string `json:"disambiguation_options,omitempty"`
	Hits                   int            `json:"hits"`
	LastHit                string         `json:"last_hit,omitempty"`
	Verified               bool           `json:"verified"`
	Generated              bool           `json:"generated"`
}

type document struct {
	Version int              `json:"version"`
	Entries []entryDoc       `json:"entries"`
	Stats   types.CacheStats `json:"stats"`
}

// Store is a [semcache.Store] backed by a single JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open returns a Store targeting path. A missing file is not an error;
// [Store.Load] returns an empty cache in that case.
func Open(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load(_ context.Context) ([]types.CacheEntry, types.CacheStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, types.CacheStats{}, nil
	}
	if err != nil {
		return nil, types.CacheStats{}, fmt.Errorf("semcache/jsonstore: read %s: %w", s.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, types.CacheStats{}, fmt.Errorf("semcache/jsonstore: parse %s: %w", s.path, err)
	}

	entries := make([]types.CacheEntry, len(doc.Entries))
	for i, d := range doc.Entries {
		var lastHit time.Time
		if d.LastHit != "" {
			lastHit, err = time.Parse(timeLayout, d.LastHit)
			if err != nil {
				return nil, types.CacheStats{}, fmt.Errorf("semcache/jsonstore: parse last_hit for %q: %w", d.Text, err)
			}
		}
		entries[i] = types.CacheEntry{
			Text:                   d.Text,
			Embedding:              d.Embedding,
			Domain:                 d.Domain,
			Intent:                 d.Intent,
			EntityIDs:              d.EntityIDs,
			Slots:                  d.Slots,
			RequiredDisambiguation: d.RequiredDisambiguation,
			DisambiguationOptions:  d.DisambiguationOptions,
			Hits:                   d.Hits,
			LastHit:                lastHit,
			Verified:               d.Verified,
			Generated:              d.Generated,
		}
	}
	return entries, doc.Stats, nil
}

func (s *Store) Save(_ context.Context, entries []types.CacheEntry, stats types.CacheStats) error {
	docEntries := make([]entryDoc, len(entries))
	for i, e := range entries {
		var lastHit string
		if !e.LastHit.IsZero() {
			lastHit = e.LastHit.Format(timeLayout)
		}
		docEntries[i] = entryDoc{
			Text:                   e.Text,
			Embedding:              e.Embedding,
			Domain:                 e.Domain,
			Intent:                 e.Intent,
			EntityIDs:              e.EntityIDs,
			Slots:                  e.Slots,
			RequiredDisambiguation: e.RequiredDisambiguation,
			DisambiguationOptions:  e.DisambiguationOptions,
			Hits:                   e.Hits,
			LastHit:                lastHit,
			Verified:               e.Verified,
			Generated:              e.Generated,
		}
	}
	doc := document{Version: 1, Entries: docEntries, Stats: stats}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("semcache/jsonstore: marshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".semcache-*.tmp")
	if err != nil {
		return fmt.Errorf("semcache/jsonstore: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("semcache/jsonstore: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("semcache/jsonstore: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("semcache/jsonstore: rename into place: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }

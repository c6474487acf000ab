// Package jsonstore is the default [aliasstore.Store] implementation: the
// two alias maps held in memory and persisted as a single JSON file,
// rewritten atomically (temp file + rename) after a short debounce window
// so a burst of learned aliases in one turn does not cause a disk write per
// alias.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// document is the on-disk shape of the alias file.
type document struct {
	AreaAliases   map[string]string `json:"area_aliases"`
	EntityAliases map[string]string `json:"entity_aliases"`
}

// Option configures a [Store].
type Option func(*Store)

// WithFlushDelay overrides the debounce window between a write and the
// file actually being rewritten. Default: 500ms.
func WithFlushDelay(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.flushDelay = d
		}
	}
}

// Store is a [github.com/kr0ner/multistage-assist/pkg/aliasstore.Store]
// backed by a single JSON file (default path "memory.json").
type Store struct {
	path       string
	flushDelay time.Duration

	mu  sync.Mutex
	doc document

	flushMu   sync.Mutex
	dirty     bool
	flushTime *time.Timer
	stopOnce  sync.Once
}

// Open loads path if it exists (a missing file starts with empty maps) and
// returns a ready Store. Writes are flushed to disk by a debounce timer;
// Close flushes whatever is still pending.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:       path,
		flushDelay: 500 * time.Millisecond,
		doc: document{
			AreaAliases:   map[string]string{},
			EntityAliases: map[string]string{},
		},
	}
	for _, o := range opts {
		o(s)
	}

	if data, err := os.ReadFile(path); err == nil {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("aliasstore: parse %s: %w", path, err)
		}
		if doc.AreaAliases == nil {
			doc.AreaAliases = map[string]string{}
		}
		if doc.EntityAliases == nil {
			doc.EntityAliases = map[string]string{}
		}
		s.doc = doc
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("aliasstore: read %s: %w", path, err)
	}

	return s, nil
}

func (s *Store) AreaAlias(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.doc.AreaAliases[key]
	return v, ok, nil
}

func (s *Store) SetAreaAlias(_ context.Context, key, area string) error {
	s.mu.Lock()
	s.doc.AreaAliases[key] = area
	s.mu.Unlock()
	s.scheduleFlush()
	return nil
}

func (s *Store) EntityAlias(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.doc.EntityAliases[key]
	return v, ok, nil
}

func (s *Store) SetEntityAlias(_ context.Context, key, entityID string) error {
	s.mu.Lock()
	s.doc.EntityAliases[key] = entityID
	s.mu.Unlock()
	s.scheduleFlush()
	return nil
}

// scheduleFlush debounces writes: a burst of Set* calls within flushDelay
// collapses into one file rewrite.
func (s *Store) scheduleFlush() {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	s.dirty = true
	if s.flushTime != nil {
		return
	}
	s.flushTime = time.AfterFunc(s.flushDelay, func() {
		s.flushMu.Lock()
		s.flushTime = nil
		wasDirty := s.dirty
		s.dirty = false
		s.flushMu.Unlock()
		if wasDirty {
			_ = s.flush()
		}
	})
}

// flush rewrites the file atomically: write to a temp file in the same
// directory, then rename over the target so a reader never observes a
// partially written file.
func (s *Store) flush() error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.doc, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("aliasstore: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".aliasstore-*.tmp")
	if err != nil {
		return fmt.Errorf("aliasstore: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("aliasstore: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("aliasstore: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("aliasstore: rename into place: %w", err)
	}
	return nil
}

// Close flushes any pending write and stops the debounce timer.
func (s *Store) Close() error {
	var err error
	s.stopOnce.Do(func() {
		s.flushMu.Lock()
		if s.flushTime != nil {
			s.flushTime.Stop()
			s.flushTime = nil
		}
		wasDirty := s.dirty
		s.dirty = false
		s.flushMu.Unlock()
		if wasDirty {
			err = s.flush()
		}
	})
	return err
}

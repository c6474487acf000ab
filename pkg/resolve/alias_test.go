package resolve

import (
	"context"
	"sync"
)

// fakeAliasStore is a minimal in-memory aliasstore.Store test double.
type fakeAliasStore struct {
	mu      sync.Mutex
	areas   map[string]string
	entites map[string]string
}

func newFakeAliasStore() *fakeAliasStore {
	return &fakeAliasStore{areas: map[string]string{}, entites: map[string]string{}}
}

func (s *fakeAliasStore) AreaAlias(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.areas[key]
	return v, ok, nil
}

func (s *fakeAliasStore) SetAreaAlias(_ context.Context, key, area string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.areas[key] = area
	return nil
}

func (s *fakeAliasStore) EntityAlias(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entites[key]
	return v, ok, nil
}

func (s *fakeAliasStore) SetEntityAlias(_ context.Context, key, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entites[key] = entityID
	return nil
}

func (s *fakeAliasStore) Close() error { return nil }

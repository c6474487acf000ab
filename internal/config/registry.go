package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kr0ner/multistage-assist/pkg/clients/embeddings"
	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	"github.com/kr0ner/multistage-assist/pkg/clients/rerank"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory
// has been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// client kind the resolver core depends on. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	llm        map[string]func(ProviderEntry) (llm.Provider, error)
	embeddings map[string]func(ProviderEntry) (embeddings.Provider, error)
	rerank     map[string]func(RerankEntry) (rerank.Client, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		llm:        make(map[string]func(ProviderEntry) (llm.Provider, error)),
		embeddings: make(map[string]func(ProviderEntry) (embeddings.Provider, error)),
		rerank:     make(map[string]func(RerankEntry) (rerank.Client, error)),
	}
}

// RegisterLLM registers an LLM provider factory under name. Subsequent
// calls with the same name overwrite the previous registration.
func (r *Registry) RegisterLLM(name string, factory func(ProviderEntry) (llm.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llm[name] = factory
}

// RegisterEmbeddings registers an embeddings provider factory under name.
func (r *Registry) RegisterEmbeddings(name string, factory func(ProviderEntry) (embeddings.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embeddings[name] = factory
}

// RegisterRerank registers a reranker client factory under name.
func (r *Registry) RegisterRerank(name string, factory func(RerankEntry) (rerank.Client, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rerank[name] = factory
}

// CreateLLM instantiates an LLM provider using the factory registered under
// entry.Name. Returns [ErrProviderNotRegistered] if no factory has been
// registered for that name.
func (r *Registry) CreateLLM(entry ProviderEntry) (llm.Provider, error) {
	r.mu.RLock()
	factory, ok := r.llm[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: llm/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateEmbeddings instantiates an embeddings provider using the factory
// registered under entry.Name.
func (r *Registry) CreateEmbeddings(entry ProviderEntry) (embeddings.Provider, error) {
	r.mu.RLock()
	factory, ok := r.embeddings[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: embeddings/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateRerank instantiates a reranker client using the factory registered
// under name.
func (r *Registry) CreateRerank(name string, entry RerankEntry) (rerank.Client, error) {
	r.mu.RLock()
	factory, ok := r.rerank[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: rerank/%q", ErrProviderNotRegistered, name)
	}
	return factory(entry)
}

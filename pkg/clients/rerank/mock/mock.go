// Package mock provides an in-memory test double for [rerank.Client].
package mock

import (
	"context"
	"sync"

	"github.com/kr0ner/multistage-assist/pkg/clients/rerank"
)

var _ rerank.Client = (*Client)(nil)

// Client is a configurable test double for [rerank.Client].
type Client struct {
	mu sync.Mutex

	calls int

	// ScoreFunc, when set, computes the score for one (query, document)
	// pair. Overrides ScoresResult.
	ScoreFunc func(query, document string) float32

	// ScoresResult is returned verbatim (must match len(documents)) when
	// ScoreFunc is nil.
	ScoresResult []float32

	Err error
}

// Calls returns how many times Rerank was invoked.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *Client) Rerank(_ context.Context, query string, documents []string) ([]float32, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	if c.ScoreFunc == nil {
		return c.ScoresResult, nil
	}
	scores := make([]float32, len(documents))
	for i, d := range documents {
		scores[i] = c.ScoreFunc(query, d)
	}
	return scores, nil
}

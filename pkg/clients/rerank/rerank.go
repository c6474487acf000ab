// Package rerank defines the Client abstraction used by the semantic
// cache's lookup path to score candidate utterances against a query with a
// cross-encoder, after vector search has narrowed the field.
package rerank

import "context"

// Client scores documents against query with a cross-encoder reranker.
// The returned slice has the same length as documents; result[i] is the
// relevance score in [0,1] for documents[i].
//
// Implementations must be safe for concurrent use.
type Client interface {
	Rerank(ctx context.Context, query string, documents []string) ([]float32, error)
}

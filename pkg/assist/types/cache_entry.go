package types

import "time"

// CacheEntry is a single semantic-cache record: the normalized text that was
// embedded, the embedding itself, the resolved command it maps to, and the
// bookkeeping the cache's retention and admission policies need.
//
// Ownership: the cache owns all entries: an entry is reachable only through
// the cache's search index, never held by any other component.
type CacheEntry struct {
	// Text is the numerically normalized form of the utterance that
	// produced Embedding (see pkg/german.NormalizeForCache). It is the
	// lexical candidate used by the hybrid overlay and is what gets
	// compared against the reranker's query/document pairs.
	Text string

	// Embedding is the dense vector produced by the embedding client for
	// Text. Every entry in one cache instance shares the same dimension.
	Embedding []float32

	// Domain is the entity domain this entry targets (light, cover,
	// switch, ...). It selects which per-domain reranker threshold the
	// lookup path applies.
	Domain string

	// Intent, EntityIDs, and Slots are the resolved command this entry
	// replays on a hit.
	Intent    string
	EntityIDs []string
	Slots     map[string]any

	// RequiredDisambiguation is true when the original resolution needed a
	// user choice among candidates; DisambiguationOptions then maps entity
	// ID to the display name offered at that time.
	RequiredDisambiguation  bool
	DisambiguationOptions   map[string]string

	// Hits counts how many times this entry has been used to answer a
	// lookup (anchors start at zero; a store admission starts at one).
	Hits int

	// LastHit is the ISO-8601 (second precision) timestamp of the most
	// recent hit. Zero value for anchors that have never been hit.
	LastHit time.Time

	// Verified is true once the execution pipeline has observed the
	// command actually change device state. Only verified entries may be
	// returned from a cache hit (see Testable Properties: Cache safety).
	Verified bool

	// Generated distinguishes a pre-seeded anchor (true) from a
	// user-learned entry created after a verified execution (false).
	// Generated entries are never evicted by the retention policy.
	Generated bool
}

// WordCount returns the number of whitespace-separated tokens in Text, used
// by the cache-safety invariant (word_count(E.text) >= MIN_CACHE_WORDS).
func (e CacheEntry) WordCount() int {
	count := 0
	inWord := false
	for _, r := range e.Text {
		isSpace := r == ' ' || r == '\t' || r == '\n'
		if !isSpace && !inWord {
			count++
		}
		inWord = !isSpace
	}
	return count
}

// CacheStats tracks cumulative lookup counters for the semantic cache,
// persisted alongside entries so the figures survive restarts.
type CacheStats struct {
	TotalLookups int
	CacheHits    int
	CacheMisses  int
}

// HitRate returns CacheHits/TotalLookups as a percentage, or 0 when no
// lookups have happened yet.
func (s CacheStats) HitRate() float64 {
	if s.TotalLookups == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(s.TotalLookups) * 100
}

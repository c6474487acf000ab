package semcache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kr0ner/multistage-assist/internal/observe"
	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/clients/embeddings"
	"github.com/kr0ner/multistage-assist/pkg/clients/rerank"
	"github.com/kr0ner/multistage-assist/pkg/domainconfig"
	"github.com/kr0ner/multistage-assist/pkg/german"
	"github.com/kr0ner/multistage-assist/pkg/resilience"
)

const (
	defaultVectorThreshold = 0.4
	defaultVectorTopK      = 10
	defaultHybridAlpha     = 0.7
	defaultHybridNgram     = 2
	defaultMaxEntries      = 200
	defaultMinCacheWords   = 3
)

// Result is a cache hit: a previously verified command resolution ready to
// replay without consulting an LLM.
type Result struct {
	Intent                 string
	EntityIDs              []string
	Slots                  map[string]any
	Score                  float64
	RequiredDisambiguation bool
	DisambiguationOptions  map[string]string
	OriginalText           string
}

// StoreParams is a verified command resolution offered for admission.
type StoreParams struct {
	Text                   string
	Domain                 string
	Intent                 string
	EntityIDs              []string
	Slots                  map[string]any
	RequiredDisambiguation bool
	DisambiguationOptions  map[string]string
	// Verified must be true; unverified resolutions are rejected by Store.
	Verified bool
	// UsedRelativeStep marks a resolution that used step_up/step_down:
	// these are never cached because the increment must be recomputed on
	// every replay (see pkg/stepctl).
	UsedRelativeStep bool
}

// Option configures a [Cache].
type Option func(*Cache)

// WithVectorThreshold sets the minimum cosine similarity (0..1) a candidate
// must clear to enter the reranker stage. Default 0.4.
func WithVectorThreshold(t float64) Option {
	return func(c *Cache) { c.vectorThreshold = t }
}

// WithVectorTopK sets how many vector-search candidates are forwarded to
// the reranker. Default 10.
func WithVectorTopK(k int) Option {
	return func(c *Cache) {
		if k > 0 {
			c.vectorTopK = k
		}
	}
}

// WithHybridOverlay enables the lexical n-gram overlay blended with the
// semantic score at weight alpha (semantic) / 1-alpha (lexical), over
// n-grams of size ngramSize.
func WithHybridOverlay(alpha float64, ngramSize int) Option {
	return func(c *Cache) {
		c.hybridEnabled = true
		c.hybridAlpha = alpha
		c.hybridNgramSize = ngramSize
	}
}

// WithReranker sets the cross-encoder client consulted before admitting a
// hit. Without one, Lookup falls back to ranking candidates by their
// (possibly hybrid-blended) vector score alone.
func WithReranker(client rerank.Client) Option {
	return func(c *Cache) { c.reranker = client }
}

// WithMaxEntries overrides the retention ceiling. Default 200.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithMinCacheWords overrides the minimum word count an utterance must have
// to be admitted. Default 3.
func WithMinCacheWords(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.minCacheWords = n
		}
	}
}

// Cache is the in-memory semantic command cache: a parallel slice of
// entries and L2-normalized embeddings, persisted through a [Store] on
// every admission.
//
// Safe for concurrent use: a single RWMutex guards both slices.
type Cache struct {
	mu      sync.RWMutex
	entries []types.CacheEntry
	matrix  [][]float32
	stats   types.CacheStats

	store        Store
	embedder     embeddings.Provider
	embedBreaker *resilience.CircuitBreaker
	reranker     rerank.Client

	vectorThreshold float64
	vectorTopK      int
	hybridEnabled   bool
	hybridAlpha     float64
	hybridNgramSize int
	maxEntries      int
	minCacheWords   int
}

// New constructs a Cache, loading any previously persisted entries from
// store.
func New(ctx context.Context, store Store, embedder embeddings.Provider, opts ...Option) (*Cache, error) {
	c := &Cache{
		store:           store,
		embedder:        embedder,
		embedBreaker:    resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "semcache-embed"}),
		vectorThreshold: defaultVectorThreshold,
		vectorTopK:      defaultVectorTopK,
		hybridAlpha:     defaultHybridAlpha,
		hybridNgramSize: defaultHybridNgram,
		maxEntries:      defaultMaxEntries,
		minCacheWords:   defaultMinCacheWords,
	}
	for _, o := range opts {
		o(c)
	}

	entries, stats, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("semcache: load: %w", err)
	}
	c.entries = entries
	c.stats = stats
	c.matrix = make([][]float32, len(entries))
	for i, e := range entries {
		c.matrix[i] = l2Normalize(e.Embedding)
	}
	return c, nil
}

// Seed installs anchors built by [BuildAnchors] (or any other source) in
// addition to whatever the store already held, without persisting them —
// callers persist explicitly via a subsequent Store call or by calling
// c.store.Save directly during cold-start bootstrap.
func (c *Cache) Seed(anchors []types.CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range anchors {
		c.entries = append(c.entries, a)
		c.matrix = append(c.matrix, l2Normalize(a.Embedding))
	}
}

func (c *Cache) embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := c.embedBreaker.Execute(func() error {
		v, embedErr := c.embedder.Embed(ctx, text)
		if embedErr != nil {
			return embedErr
		}
		vec = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("semcache: embed: %w", err)
	}
	return vec, nil
}

// snapshot copies the entry and matrix slices under a read lock so the
// (possibly slow) similarity scan and reranker call proceed lock-free.
func (c *Cache) snapshot() ([]types.CacheEntry, [][]float32) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := make([]types.CacheEntry, len(c.entries))
	copy(entries, c.entries)
	matrix := make([][]float32, len(c.matrix))
	copy(matrix, c.matrix)
	return entries, matrix
}

// Lookup searches for a cached resolution of a numerically normalized
// utterance (see pkg/german.NormalizeForCache). A nil, nil return is a
// clean miss; a non-nil error means the lookup itself failed (embedding
// service unreachable, etc.) and the caller should treat the stage as
// escalate rather than miss.
func (c *Cache) Lookup(ctx context.Context, normalizedText string) (*Result, error) {
	entries, matrix := c.snapshot()
	if len(entries) == 0 {
		c.recordMiss()
		return nil, nil
	}
	c.recordLookup()

	queryEmb, err := c.embed(ctx, normalizedText)
	if err != nil {
		return nil, err
	}
	queryNorm := l2Normalize(queryEmb)

	semanticScores := make([]float64, len(entries))
	for i, vec := range matrix {
		semanticScores[i] = cosineSimilarity(queryNorm, vec)
	}

	rankScores := semanticScores
	if c.hybridEnabled {
		rankScores = make([]float64, len(entries))
		for i, e := range entries {
			lexical := ngramOverlap(normalizedText, e.Text, c.hybridNgramSize)
			rankScores[i] = blendScore(semanticScores[i], lexical, c.hybridAlpha)
		}
	}

	candidates := topK(semanticScores, c.vectorTopK, c.vectorThreshold)
	if len(candidates) == 0 {
		c.recordMiss()
		return nil, nil
	}

	// Re-sort the semantic-gated candidates by the (possibly hybrid)
	// ranking score before handing them to the reranker, so the reranker
	// still only ever sees the semantically-admitted set.
	sort.Slice(candidates, func(i, j int) bool {
		return rankScores[candidates[i].index] > rankScores[candidates[j].index]
	})

	texts := make([]string, len(candidates))
	for i, cand := range candidates {
		texts[i] = entries[cand.index].Text
	}

	bestLocal, bestScore, err := c.bestCandidate(ctx, normalizedText, texts, candidates, rankScores)
	if err != nil {
		return nil, err
	}
	entry := entries[bestLocal]

	if bestScore < rerankThreshold(entry.Domain) {
		c.recordMiss()
		return nil, nil
	}

	c.recordHit(entry.Text)

	return &Result{
		Intent:                 entry.Intent,
		EntityIDs:              entry.EntityIDs,
		Slots:                  entry.Slots,
		Score:                  bestScore,
		RequiredDisambiguation: entry.RequiredDisambiguation,
		DisambiguationOptions:  entry.DisambiguationOptions,
		OriginalText:           entry.Text,
	}, nil
}

// bestCandidate submits texts to the reranker (if configured) and returns
// the winning candidate's original entry index plus its score. Without a
// reranker the candidate with the highest rankScores value wins directly.
func (c *Cache) bestCandidate(ctx context.Context, query string, texts []string, candidates []scoredIndex, rankScores []float64) (int, float64, error) {
	if c.reranker == nil {
		best := candidates[0]
		return best.index, rankScores[best.index], nil
	}

	rerankScores, err := c.reranker.Rerank(ctx, query, texts)
	if err != nil {
		return 0, 0, fmt.Errorf("semcache: rerank: %w", err)
	}
	bestLocal := 0
	bestScore := float64(-1)
	for i, s := range rerankScores {
		if float64(s) > bestScore {
			bestScore = float64(s)
			bestLocal = i
		}
	}
	return candidates[bestLocal].index, bestScore, nil
}

func (c *Cache) recordLookup() {
	c.mu.Lock()
	c.stats.TotalLookups++
	c.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.stats.CacheMisses++
	c.mu.Unlock()
	observe.DefaultMetrics().RecordCacheLookup(context.Background(), "miss")
}

func (c *Cache) recordHit(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.CacheHits++
	now := time.Now()
	for i := range c.entries {
		if c.entries[i].Text == text {
			c.entries[i].Hits++
			c.entries[i].LastHit = now
			break
		}
	}
	observe.DefaultMetrics().RecordCacheLookup(context.Background(), "hit")
}

// Store admits a verified command resolution, subject to the cache-safety
// rules: non-repeatable intents, step commands, compound utterances, and
// utterances shorter than the minimum word count are all skipped silently
// (not an error — the caller already succeeded; the cache just declines to
// remember it).
func (c *Cache) Store(ctx context.Context, p StoreParams) error {
	if !p.Verified {
		return nil
	}
	if _, skip := domainconfig.NonRepeatableIntents[p.Intent]; skip {
		return nil
	}
	if p.UsedRelativeStep {
		return nil
	}
	if german.IsCompoundCommand(p.Text) {
		return nil
	}
	if (types.CacheEntry{Text: p.Text}).WordCount() < c.minCacheWords {
		return nil
	}

	emb, err := c.embed(ctx, p.Text)
	if err != nil {
		return err
	}
	normEmb := l2Normalize(emb)
	now := time.Now()

	c.mu.Lock()
	if dupIdx := c.findDuplicate(normEmb); dupIdx >= 0 {
		c.entries[dupIdx].Hits++
		c.entries[dupIdx].LastHit = now
	} else {
		c.entries = append(c.entries, types.CacheEntry{
			Text:                   p.Text,
			Embedding:              emb,
			Domain:                 p.Domain,
			Intent:                 p.Intent,
			EntityIDs:              p.EntityIDs,
			Slots:                  p.Slots,
			RequiredDisambiguation: p.RequiredDisambiguation,
			DisambiguationOptions:  p.DisambiguationOptions,
			Hits:                   1,
			LastHit:                now,
			Verified:               true,
			Generated:              false,
		})
		c.matrix = append(c.matrix, normEmb)
		c.evictLocked()
	}
	entries := append([]types.CacheEntry(nil), c.entries...)
	stats := c.stats
	c.mu.Unlock()

	if err := c.store.Save(ctx, entries, stats); err != nil {
		return fmt.Errorf("semcache: save: %w", err)
	}
	return nil
}

// findDuplicate returns the index of an existing entry whose embedding is
// ≥0.98 cosine-similar to normEmb, or -1. Must be called with c.mu held.
func (c *Cache) findDuplicate(normEmb []float32) int {
	const duplicateThreshold = 0.98
	best := -1
	bestScore := duplicateThreshold
	for i, vec := range c.matrix {
		s := cosineSimilarity(normEmb, vec)
		if s >= bestScore {
			bestScore = s
			best = i
		}
	}
	return best
}

// evictLocked drops the least-recently-hit user-learned entries once the
// cache exceeds maxEntries. Generated anchors are never evicted. Must be
// called with c.mu held.
func (c *Cache) evictLocked() {
	if len(c.entries) <= c.maxEntries {
		return
	}
	overflow := len(c.entries) - c.maxEntries

	var learned []int
	for i, e := range c.entries {
		if !e.Generated {
			learned = append(learned, i)
		}
	}
	sort.Slice(learned, func(i, j int) bool {
		return c.entries[learned[i]].LastHit.Before(c.entries[learned[j]].LastHit)
	})
	if overflow > len(learned) {
		overflow = len(learned)
	}
	evict := make(map[int]struct{}, overflow)
	for _, idx := range learned[:overflow] {
		evict[idx] = struct{}{}
	}

	newEntries := make([]types.CacheEntry, 0, len(c.entries)-overflow)
	newMatrix := make([][]float32, 0, len(c.matrix)-overflow)
	for i, e := range c.entries {
		if _, dropped := evict[i]; dropped {
			continue
		}
		newEntries = append(newEntries, e)
		newMatrix = append(newMatrix, c.matrix[i])
	}
	c.entries = newEntries
	c.matrix = newMatrix
}

// Stats returns the cumulative lookup counters and current entry count.
func (c *Cache) Stats() (types.CacheStats, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats, len(c.entries)
}

// Clear drops every entry (generated and learned alike) and resets stats,
// persisting the empty state.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = nil
	c.matrix = nil
	c.stats = types.CacheStats{}
	c.mu.Unlock()
	return c.store.Save(ctx, nil, types.CacheStats{})
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}

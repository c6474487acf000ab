package semcache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/semcache/jsonstore"
)

// fakeEmbedder maps known texts to fixed vectors so cosine similarity is
// deterministic in tests; unknown texts fall back to a distinct vector.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }
func (f *fakeEmbedder) ModelID() string { return "fake" }

type fakeReranker struct {
	score func(query, document string) float32
}

func (f *fakeReranker) Rerank(_ context.Context, query string, documents []string) ([]float32, error) {
	scores := make([]float32, len(documents))
	for i, d := range documents {
		scores[i] = f.score(query, d)
	}
	return scores, nil
}

func newTestCache(t *testing.T, embedder *fakeEmbedder, opts ...Option) *Cache {
	t.Helper()
	store := jsonstore.Open(filepath.Join(t.TempDir(), "cache.json"))
	c, err := New(context.Background(), store, embedder, opts...)
	require.NoError(t, err)
	return c
}

func TestCacheLookupMissWhenEmpty(t *testing.T) {
	c := newTestCache(t, &fakeEmbedder{})
	res, err := c.Lookup(context.Background(), "schalte licht kueche an")
	require.NoError(t, err)
	assert.Nil(t, res)

	stats, size := c.Stats()
	assert.Equal(t, 0, size)
	assert.Equal(t, 1, stats.CacheMisses)
}

func TestCacheStoreThenLookupHit(t *testing.T) {
	text := "schalte licht kueche an"
	embedder := &fakeEmbedder{vectors: map[string][]float32{text: {1, 0, 0}}}
	reranker := &fakeReranker{score: func(query, document string) float32 {
		if query == document {
			return 0.95
		}
		return 0.1
	}}
	c := newTestCache(t, embedder, WithReranker(reranker))

	err := c.Store(context.Background(), StoreParams{
		Text:      text,
		Domain:    "light",
		Intent:    "HassTurnOn",
		EntityIDs: []string{"light.kueche"},
		Verified:  true,
	})
	require.NoError(t, err)

	res, err := c.Lookup(context.Background(), text)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "HassTurnOn", res.Intent)
	assert.Equal(t, []string{"light.kueche"}, res.EntityIDs)

	stats, size := c.Stats()
	assert.Equal(t, 1, size)
	assert.Equal(t, 1, stats.CacheHits)
}

func TestCacheLookupMissBelowDomainThreshold(t *testing.T) {
	text := "stelle heizung buero auf 21 grad"
	embedder := &fakeEmbedder{vectors: map[string][]float32{text: {1, 0, 0}}}
	// climate's per-domain threshold (0.69) is never cleared.
	reranker := &fakeReranker{score: func(string, string) float32 { return 0.5 }}
	c := newTestCache(t, embedder, WithReranker(reranker))

	err := c.Store(context.Background(), StoreParams{
		Text: text, Domain: "climate", Intent: "HassClimateSetTemperature",
		EntityIDs: []string{"climate.buero"}, Verified: true,
	})
	require.NoError(t, err)

	res, err := c.Lookup(context.Background(), text)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestCacheStoreSkipsUnverified(t *testing.T) {
	c := newTestCache(t, &fakeEmbedder{})
	err := c.Store(context.Background(), StoreParams{
		Text: "schalte licht kueche an", Domain: "light", Intent: "HassTurnOn",
		Verified: false,
	})
	require.NoError(t, err)
	_, size := c.Stats()
	assert.Equal(t, 0, size)
}

func TestCacheStoreSkipsNonRepeatableIntent(t *testing.T) {
	c := newTestCache(t, &fakeEmbedder{})
	err := c.Store(context.Background(), StoreParams{
		Text: "stelle einen timer auf fuenf minuten", Domain: "timer",
		Intent: "HassTimerSet", Verified: true,
	})
	require.NoError(t, err)
	_, size := c.Stats()
	assert.Equal(t, 0, size)
}

func TestCacheStoreSkipsShortUtterance(t *testing.T) {
	c := newTestCache(t, &fakeEmbedder{})
	err := c.Store(context.Background(), StoreParams{
		Text: "licht an", Domain: "light", Intent: "HassTurnOn", Verified: true,
	})
	require.NoError(t, err)
	_, size := c.Stats()
	assert.Equal(t, 0, size)
}

func TestCacheStoreSkipsCompoundUtterance(t *testing.T) {
	c := newTestCache(t, &fakeEmbedder{})
	err := c.Store(context.Background(), StoreParams{
		Text:     "schalte licht an und mach die heizung aus",
		Domain:   "light",
		Intent:   "HassTurnOn",
		Verified: true,
	})
	require.NoError(t, err)
	_, size := c.Stats()
	assert.Equal(t, 0, size)
}

func TestCacheStoreSkipsRelativeStep(t *testing.T) {
	c := newTestCache(t, &fakeEmbedder{})
	err := c.Store(context.Background(), StoreParams{
		Text: "mach das licht etwas heller", Domain: "light", Intent: "HassLightSet",
		Verified: true, UsedRelativeStep: true,
	})
	require.NoError(t, err)
	_, size := c.Stats()
	assert.Equal(t, 0, size)
}

func TestCacheStoreMergesNearDuplicate(t *testing.T) {
	text := "schalte licht kueche an"
	embedder := &fakeEmbedder{vectors: map[string][]float32{text: {1, 0, 0}}}
	c := newTestCache(t, embedder)

	params := StoreParams{Text: text, Domain: "light", Intent: "HassTurnOn", Verified: true}
	require.NoError(t, c.Store(context.Background(), params))
	require.NoError(t, c.Store(context.Background(), params))

	_, size := c.Stats()
	assert.Equal(t, 1, size)
}

func TestCacheEvictsOldestLearnedEntryOnly(t *testing.T) {
	texts := []string{
		"schalte licht kueche an",
		"schalte licht wohnzimmer an",
		"schalte licht schlafzimmer an",
	}
	vectors := map[string][]float32{
		texts[0]: {1, 0, 0},
		texts[1]: {0, 1, 0},
		texts[2]: {0, 0, 1},
	}
	embedder := &fakeEmbedder{vectors: vectors}
	c := newTestCache(t, embedder, WithMaxEntries(2))

	for _, text := range texts {
		require.NoError(t, c.Store(context.Background(), StoreParams{
			Text: text, Domain: "light", Intent: "HassTurnOn", Verified: true,
		}))
		time.Sleep(time.Millisecond)
	}

	_, size := c.Stats()
	assert.Equal(t, 2, size)

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		assert.NotEqual(t, texts[0], e.Text, "oldest learned entry should have been evicted")
	}
}

func TestCacheGeneratedAnchorsSurviveEviction(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"anchor a": {1, 0, 0},
		"anchor b": {0, 1, 0},
		"new cmd":  {0, 0, 1},
	}}
	c := newTestCache(t, embedder, WithMaxEntries(2))
	c.Seed([]types.CacheEntry{
		{Text: "anchor a", Embedding: []float32{1, 0, 0}, Generated: true, Verified: true},
		{Text: "anchor b", Embedding: []float32{0, 1, 0}, Generated: true, Verified: true},
	})

	require.NoError(t, c.Store(context.Background(), StoreParams{
		Text: "new cmd extra words", Domain: "light", Intent: "HassTurnOn", Verified: true,
	}))

	c.mu.RLock()
	defer c.mu.RUnlock()
	generated := 0
	for _, e := range c.entries {
		if e.Generated {
			generated++
		}
	}
	assert.Equal(t, 2, generated)
}

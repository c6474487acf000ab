package jsonstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
)

func TestStoreSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := Open(path)

	entries := []types.CacheEntry{
		{
			Text: "schalte licht kueche an", Embedding: []float32{0.1, 0.2, 0.3},
			Domain: "light", Intent: "HassTurnOn", EntityIDs: []string{"light.kueche"},
			Hits: 3, LastHit: time.Now().Truncate(time.Second), Verified: true,
		},
		{Text: "anchor aus allen lichtern", Generated: true, Verified: true},
	}
	stats := types.CacheStats{TotalLookups: 10, CacheHits: 4, CacheMisses: 6}

	require.NoError(t, store.Save(context.Background(), entries, stats))

	reopened := Open(path)
	gotEntries, gotStats, err := reopened.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, gotEntries, 2)
	assert.Equal(t, entries[0].Text, gotEntries[0].Text)
	assert.Equal(t, entries[0].Hits, gotEntries[0].Hits)
	assert.True(t, entries[0].LastHit.Equal(gotEntries[0].LastHit))
	assert.Equal(t, stats, gotStats)
}

func TestStoreLoadMissingFileIsEmpty(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "does-not-exist.json"))
	entries, stats, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, entries)
	assert.Equal(t, types.CacheStats{}, stats)
}

package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreSetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	s, err := Open(path, WithFlushDelay(10*time.Millisecond))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.SetAreaAlias(ctx, "ki-bad", "Kinder Badezimmer"))

	area, ok, err := s.AreaAlias(ctx, "ki-bad")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Kinder Badezimmer", area)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	ctx := context.Background()

	s1, err := Open(path, WithFlushDelay(5*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, s1.SetEntityAlias(ctx, "spot", "light.kuche_spots"))
	require.NoError(t, s1.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "light.kuche_spots")

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	id, ok, err := s2.EntityAlias(ctx, "spot")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "light.kuche_spots", id)
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.AreaAlias(context.Background(), "anything")
	require.NoError(t, err)
	require.False(t, ok)
}

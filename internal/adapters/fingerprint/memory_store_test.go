package fingerprint

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mitraverify/mitraverify/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func hashOf(pattern string) string {
	return strings.Repeat(pattern, core.HashBitWidth/8)
}

func TestMemoryStore_EmptyStore(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())

	entry, similarity, err := store.Query(context.Background(), hashOf("00"))
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Zero(t, similarity)
}

func TestMemoryStore_ExactMatch(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	stored := &core.FingerprintEntry{Hash: hashOf("ab"), Source: "first", AddedAt: time.Now()}
	require.NoError(t, store.Append(ctx, stored))

	entry, similarity, err := store.Query(ctx, hashOf("ab"))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "first", entry.Source)
	assert.Equal(t, 1.0, similarity)
}

func TestMemoryStore_ReturnsMostSimilar(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, &core.FingerprintEntry{Hash: hashOf("00"), Source: "far"}))
	require.NoError(t, store.Append(ctx, &core.FingerprintEntry{Hash: hashOf("fe"), Source: "near"}))

	entry, similarity, err := store.Query(ctx, hashOf("ff"))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "near", entry.Source)
	assert.Greater(t, similarity, 0.8)
}

func TestMemoryStore_TiesBreakToEarliestInserted(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	// Two identical fingerprints; the first insert must win the tie
	require.NoError(t, store.Append(ctx, &core.FingerprintEntry{Hash: hashOf("ab"), Source: "first"}))
	require.NoError(t, store.Append(ctx, &core.FingerprintEntry{Hash: hashOf("ab"), Source: "second"}))

	entry, _, err := store.Query(ctx, hashOf("ab"))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "first", entry.Source)
}

func TestMemoryStore_SkipsMismatchedWidths(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, &core.FingerprintEntry{Hash: "abcd", Source: "short"}))
	require.NoError(t, store.Append(ctx, &core.FingerprintEntry{Hash: hashOf("ab"), Source: "full"}))

	entry, _, err := store.Query(ctx, hashOf("ab"))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "full", entry.Source, "entries of another width cannot match")
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Append(ctx, &core.FingerprintEntry{Hash: hashOf("cd"), Source: "writer"})
		}()
		go func() {
			defer wg.Done()
			_, _, _ = store.Query(ctx, hashOf("cd"))
		}()
	}
	wg.Wait()

	entry, similarity, err := store.Query(ctx, hashOf("cd"))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 1.0, similarity)
}

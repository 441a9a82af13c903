package fingerprint

import (
	"context"
	"sync"

	"github.com/mitraverify/mitraverify/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the FingerprintStore
// interface. Entries are held in insertion order; reads take a shared
// lock while appends are serialized by the write lock.
type MemoryStore struct {
	entries []*core.FingerprintEntry
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory fingerprint store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{logger: logger}
}

// Query returns the stored entry most similar to the given hash. Ties
// break towards the earliest-inserted entry.
func (s *MemoryStore) Query(ctx context.Context, hash string) (*core.FingerprintEntry, float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return bestMatch(s.entries, hash)
}

// Append records a new fingerprint entry
func (s *MemoryStore) Append(ctx context.Context, entry *core.FingerprintEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	s.logger.Debug("Fingerprint appended", zap.Int("total", len(s.entries)))
	return nil
}

// bestMatch scans entries in insertion order and keeps the strictly
// best similarity, which makes ties resolve to the earliest entry
func bestMatch(entries []*core.FingerprintEntry, hash string) (*core.FingerprintEntry, float64, error) {
	var best *core.FingerprintEntry
	bestSimilarity := -1.0

	for _, entry := range entries {
		similarity, err := core.HashSimilarity(hash, entry.Hash)
		if err != nil {
			// Entries of a different hash width cannot match
			continue
		}
		if similarity > bestSimilarity {
			best = entry
			bestSimilarity = similarity
		}
	}

	if best == nil {
		return nil, 0, nil
	}
	return best, bestSimilarity, nil
}

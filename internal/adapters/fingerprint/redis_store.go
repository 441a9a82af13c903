package fingerprint

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitraverify/mitraverify/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisFingerprintKey = "mitraverify:fingerprints"

// RedisStore keeps fingerprints in a Redis list, which preserves
// insertion order and gives appends the single-writer semantics of
// RPUSH without blocking concurrent reads
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a new Redis fingerprint store
func NewRedisStore(url string, logger *zap.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	return &RedisStore{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

// Query returns the stored entry most similar to the given hash
func (s *RedisStore) Query(ctx context.Context, hash string) (*core.FingerprintEntry, float64, error) {
	raw, err := s.client.LRange(ctx, redisFingerprintKey, 0, -1).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read fingerprints from Redis: %w", err)
	}

	entries := make([]*core.FingerprintEntry, 0, len(raw))
	for _, item := range raw {
		var entry core.FingerprintEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			s.logger.Warn("Skipping malformed fingerprint entry", zap.Error(err))
			continue
		}
		entries = append(entries, &entry)
	}

	return bestMatch(entries, hash)
}

// Append records a new fingerprint entry
func (s *RedisStore) Append(ctx context.Context, entry *core.FingerprintEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal fingerprint entry: %w", err)
	}

	if err := s.client.RPush(ctx, redisFingerprintKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to append fingerprint to Redis: %w", err)
	}

	return nil
}

// Stop closes the Redis connection
func (s *RedisStore) Stop() {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Failed to close Redis connection", zap.Error(err))
	}
}

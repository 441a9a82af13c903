package fingerprint

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mitraverify/mitraverify/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the FingerprintStore
// interface. Similarity is computed in Go over all stored rows; the
// table is append-only and appends are serialized by a mutex so
// concurrent analyses never interleave inserts.
type SQLiteStore struct {
	db       *sql.DB
	appendMu sync.Mutex
	logger   *zap.Logger
}

// NewSQLiteStore creates a new SQLite fingerprint store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS fingerprints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hash TEXT NOT NULL,
			source TEXT,
			added_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Query returns the stored entry most similar to the given hash
func (s *SQLiteStore) Query(ctx context.Context, hash string) (*core.FingerprintEntry, float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash, source, added_at
		FROM fingerprints
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query fingerprints: %w", err)
	}
	defer rows.Close()

	var entries []*core.FingerprintEntry
	for rows.Next() {
		var entry core.FingerprintEntry
		var addedAt string
		if err := rows.Scan(&entry.Hash, &entry.Source, &addedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan fingerprint row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, addedAt); err == nil {
			entry.AddedAt = ts
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read fingerprints: %w", err)
	}

	return bestMatch(entries, hash)
}

// Append records a new fingerprint entry
func (s *SQLiteStore) Append(ctx context.Context, entry *core.FingerprintEntry) error {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fingerprints (hash, source, added_at)
		VALUES (?, ?, ?)
	`, entry.Hash, entry.Source, entry.AddedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert fingerprint: %w", err)
	}

	return nil
}

// Stop closes the database connection
func (s *SQLiteStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}

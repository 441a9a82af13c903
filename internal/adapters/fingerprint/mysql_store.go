package fingerprint

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mitraverify/mitraverify/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the FingerprintStore interface
type MySQLStore struct {
	db       *sql.DB
	appendMu sync.Mutex
	logger   *zap.Logger
}

// NewMySQLStore creates a new MySQL fingerprint store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn+"?parseTime=true")
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS fingerprints (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			hash VARCHAR(512) NOT NULL,
			source VARCHAR(255),
			added_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{db: db, logger: logger}, nil
}

// Query returns the stored entry most similar to the given hash
func (s *MySQLStore) Query(ctx context.Context, hash string) (*core.FingerprintEntry, float64, error) {
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
		if err := rows.Scan(&entry.Hash, &entry.Source, &entry.AddedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan fingerprint row: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read fingerprints: %w", err)
	}

	return bestMatch(entries, hash)
}

// Append records a new fingerprint entry
func (s *MySQLStore) Append(ctx context.Context, entry *core.FingerprintEntry) error {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fingerprints (hash, source, added_at)
		VALUES (?, ?, ?)
	`, entry.Hash, entry.Source, entry.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to insert fingerprint: %w", err)
	}

	return nil
}

// Stop closes the database connection
func (s *MySQLStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL connection", zap.Error(err))
	}
}

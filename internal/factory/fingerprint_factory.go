package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitraverify/mitraverify/internal/adapters/fingerprint"
	"github.com/mitraverify/mitraverify/internal/config"
	"github.com/mitraverify/mitraverify/internal/core"
	"go.uber.org/zap"
)

// FingerprintFactory creates fingerprint stores based on configuration
type FingerprintFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFingerprintFactory creates a new fingerprint store factory
func NewFingerprintFactory(cfg *config.Config, logger *zap.Logger) *FingerprintFactory {
	return &FingerprintFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateFingerprintStore creates a fingerprint store based on the configuration
func (f *FingerprintFactory) CreateFingerprintStore() (core.FingerprintStore, error) {
	storeType := f.cfg.GetString("fingerprints.type")

	switch storeType {
	case "memory":
		return fingerprint.NewMemoryStore(f.logger), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("fingerprints.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return fingerprint.NewSQLiteStore(sqlitePath, f.logger)
	case "mysql":
		return fingerprint.NewMySQLStore(f.cfg.GetString("fingerprints.mysql_dsn"), f.logger)
	case "redis":
		return fingerprint.NewRedisStore(f.cfg.GetString("fingerprints.redis_url"), f.logger)
	default:
		return nil, fmt.Errorf("unsupported fingerprint store type: %s", storeType)
	}
}

package gemini

import (
	"github.com/mitraverify/mitraverify/internal/config"
	"github.com/mitraverify/mitraverify/internal/core"
	"go.uber.org/zap"
)

// Factory creates Gemini-backed classifiers
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for Gemini classifiers
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClassifier creates a new Gemini text classifier
func (f *Factory) CreateClassifier() (core.TextClassifier, error) {
	geminiCfg := f.cfg.GetGemini()

	return NewClassifier(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		f.logger,
	)
}

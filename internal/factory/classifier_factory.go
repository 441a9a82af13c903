package factory

import (
	"fmt"

	"github.com/mitraverify/mitraverify/internal/adapters/bedrock"
	"github.com/mitraverify/mitraverify/internal/adapters/gemini"
	"github.com/mitraverify/mitraverify/internal/adapters/openai"
	"github.com/mitraverify/mitraverify/internal/config"
	"github.com/mitraverify/mitraverify/internal/core"
	"go.uber.org/zap"
)

// ClassifierFactory creates text classifier backends
type ClassifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClassifier creates a text classifier based on the configured provider
func (f *ClassifierFactory) CreateClassifier() (core.TextClassifier, error) {
	classifierConfig := f.cfg.GetClassifier()

	switch classifierConfig.Provider {
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger).CreateClassifier()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger).CreateClassifier()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger).CreateClassifier()
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", classifierConfig.Provider)
	}
}

// CreateEmbedder creates the embedder used for evidence retrieval.
// Embeddings always come from the OpenAI backend regardless of the
// classifier provider, matching the evidence corpus vector space.
func (f *ClassifierFactory) CreateEmbedder() (core.Embedder, error) {
	return openai.NewFactory(f.cfg, f.logger).CreateEmbedder()
}

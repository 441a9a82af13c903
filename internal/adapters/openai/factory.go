package openai

import (
	"github.com/mitraverify/mitraverify/internal/config"
	"github.com/mitraverify/mitraverify/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Factory creates OpenAI-backed adapters
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for OpenAI adapters
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClassifier creates a new OpenAI text classifier
func (f *Factory) CreateClassifier() (core.TextClassifier, error) {
	openaiCfg := f.cfg.GetOpenAI()
	client := openai.NewClient(openaiCfg.APIKey)

	return NewClassifier(
		client,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		f.logger,
	), nil
}

// CreateEmbedder creates a new OpenAI embedder
func (f *Factory) CreateEmbedder() (core.Embedder, error) {
	openaiCfg := f.cfg.GetOpenAI()
	client := openai.NewClient(openaiCfg.APIKey)

	return NewEmbedder(client, openaiCfg.EmbeddingModel, f.logger), nil
}

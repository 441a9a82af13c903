package openai

import (
	"context"
	"fmt"

	"github.com/mitraverify/mitraverify/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Embedder is an implementation of the Embedder interface using the
// OpenAI embeddings API, used to project claims into the vector space of
// the evidence corpus
type Embedder struct {
	client    *openai.Client
	modelName string
	logger    *zap.Logger
}

// NewEmbedder creates a new OpenAI embedder
func NewEmbedder(client *openai.Client, modelName string, logger *zap.Logger) *Embedder {
	return &Embedder{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}
}

// Embed returns the embedding vector for the given text
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.modelName),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: OpenAI embedding failed: %v", core.ErrModelUnavailable, err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response from OpenAI", core.ErrModelUnavailable)
	}

	e.logger.Debug("Claim embedded", zap.Int("dimensions", len(resp.Data[0].Embedding)))

	return resp.Data[0].Embedding, nil
}

package core

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// EvidenceRetriever embeds a claim and returns the most semantically
// similar entries from the curated fact-check corpus. Defaults for k and
// the similarity threshold come from configuration so they can be tuned
// without redeploying the model.
type EvidenceRetriever struct {
	embedder      Embedder
	corpus        EvidenceCorpus
	topK          int
	minSimilarity float64
	logger        *zap.Logger
}

// NewEvidenceRetriever creates a new evidence retriever
func NewEvidenceRetriever(
	embedder Embedder,
	corpus EvidenceCorpus,
	topK int,
	minSimilarity float64,
	logger *zap.Logger,
) *EvidenceRetriever {
	return &EvidenceRetriever{
		embedder:      embedder,
		corpus:        corpus,
		topK:          topK,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// Retrieve returns evidence for the claim using the configured defaults
func (r *EvidenceRetriever) Retrieve(ctx context.Context, text string) ([]EvidenceItem, error) {
	return r.RetrieveTopK(ctx, text, r.topK, r.minSimilarity)
}

// RetrieveTopK returns up to k evidence items with similarity of at
// least minSimilarity, ordered by similarity descending. No matching
// entry yields an empty list, not an error.
func (r *EvidenceRetriever) RetrieveTopK(ctx context.Context, text string, k int, minSimilarity float64) ([]EvidenceItem, error) {
	embedding, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("claim embedding failed: %w", err)
	}

	matches, err := r.corpus.Search(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("evidence corpus search failed: %w", err)
	}

	items := make([]EvidenceItem, 0, len(matches))
	for _, match := range matches {
		if match.Similarity >= minSimilarity {
			items = append(items, match)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Similarity > items[j].Similarity
	})
	if len(items) > k {
		items = items[:k]
	}

	r.logger.Debug("Evidence retrieval completed",
		zap.Int("retrieved", len(items)),
		zap.Int("top_k", k),
		zap.Float64("min_similarity", minSimilarity))

	return items, nil
}

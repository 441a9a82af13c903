// Package corpus implements the EvidenceCorpus port over a curated JSON
// file of fact-checked claims with precomputed embeddings.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/mitraverify/mitraverify/internal/core"
	"go.uber.org/zap"
)

// Entry is one curated fact-check record as stored on disk
type Entry struct {
	ID          string    `json:"id"`
	Claim       string    `json:"claim"`
	Verdict     string    `json:"verdict"`
	Explanation string    `json:"explanation"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Language    string    `json:"language"`
	Embedding   []float32 `json:"embedding,omitempty"`
}

// JSONCorpus serves similarity search over a JSON fact-check corpus.
// The corpus is read-only after load; entries missing a precomputed
// embedding are embedded once at startup.
type JSONCorpus struct {
	entries []Entry
	logger  *zap.Logger
}

// NewJSONCorpus loads the corpus from path, creating a small seed corpus
// when the file does not exist. Entries without embeddings are embedded
// via the given embedder; entries that still lack one are excluded from
// search with a warning.
func NewJSONCorpus(ctx context.Context, path string, embedder core.Embedder, logger *zap.Logger) (*JSONCorpus, error) {
	entries, err := loadOrSeed(path, logger)
	if err != nil {
		return nil, err
	}

	missing := 0
	for i := range entries {
		if len(entries[i].Embedding) > 0 {
			continue
		}
		embedding, err := embedder.Embed(ctx, entries[i].Claim)
		if err != nil {
			missing++
			logger.Warn("Failed to embed corpus entry, excluding from search",
				zap.String("id", entries[i].ID),
				zap.Error(err))
			continue
		}
		entries[i].Embedding = embedding
	}

	logger.Info("Evidence corpus loaded",
		zap.Int("entries", len(entries)),
		zap.Int("unembedded", missing),
		zap.String("path", path))

	return &JSONCorpus{entries: entries, logger: logger}, nil
}

// Search returns up to k entries ranked by cosine similarity descending
func (c *JSONCorpus) Search(ctx context.Context, embedding []float32, k int) ([]core.EvidenceItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type scored struct {
		entry      *Entry
		similarity float64
	}

	matches := make([]scored, 0, len(c.entries))
	for i := range c.entries {
		entry := &c.entries[i]
		if len(entry.Embedding) == 0 || len(entry.Embedding) != len(embedding) {
			continue
		}
		matches = append(matches, scored{entry: entry, similarity: cosineSimilarity(embedding, entry.Embedding)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}

	items := make([]core.EvidenceItem, 0, len(matches))
	for _, match := range matches {
		items = append(items, core.EvidenceItem{
			Claim:      match.entry.Claim,
			Verdict:    core.EvidenceVerdict(match.entry.Verdict),
			Source:     match.entry.Source,
			URL:        match.entry.URL,
			Similarity: match.similarity,
		})
	}

	return items, nil
}

// Size returns the number of loaded corpus entries
func (c *JSONCorpus) Size() int {
	return len(c.entries)
}

func loadOrSeed(path string, logger *zap.Logger) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Warn("Evidence corpus not found, creating seed corpus", zap.String("path", path))
		return seedCorpus(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence corpus: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse evidence corpus: %w", err)
	}
	return entries, nil
}

func seedCorpus(path string) ([]Entry, error) {
	entries := []Entry{
		{
			ID:          "sample_001",
			Claim:       "COVID-19 vaccines contain microchips",
			Verdict:     string(core.EvidenceFalse),
			Explanation: "This is a conspiracy theory. COVID-19 vaccines do not contain microchips or tracking devices.",
			Source:      "WHO Fact Check",
			URL:         "https://www.who.int/news-room/feature-stories/detail/vaccines-and-microchips",
			Language:    "en",
		},
		{
			ID:          "sample_002",
			Claim:       "5G towers cause COVID-19",
			Verdict:     string(core.EvidenceFalse),
			Explanation: "There is no scientific evidence linking 5G technology to COVID-19 or any health issues.",
			Source:      "CDC",
			URL:         "https://www.cdc.gov/coronavirus/2019-ncov/science/science-briefs/5g-mobile-networks-COVID-19.html",
			Language:    "en",
		},
		{
			ID:          "sample_003",
			Claim:       "कोविड-19 वैक्सीन में माइक्रोचिप हैं",
			Verdict:     string(core.EvidenceFalse),
			Explanation: "यह एक साजिश सिद्धांत है। कोविड-19 वैक्सीन में माइक्रोचिप या ट्रैकिंग डिवाइस नहीं होते।",
			Source:      "WHO Fact Check",
			URL:         "https://www.who.int/news-room/feature-stories/detail/vaccines-and-microchips",
			Language:    "hi",
		},
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create corpus directory: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal seed corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write seed corpus: %w", err)
	}

	return entries, nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

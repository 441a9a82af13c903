package core

import (
	"context"
	"image"
)

// Prediction is the raw output of a text classifier backend
type Prediction struct {
	Label         TextLabel
	Probabilities map[TextLabel]float64
	Language      string
	ModelName     string
}

// TextClassifier defines the interface for the underlying text model backend
type TextClassifier interface {
	// Predict classifies a claim as reliable or misinformation
	Predict(ctx context.Context, text string) (*Prediction, error)
}

// Embedder defines the interface for embedding claim text into the
// vector space of the evidence corpus
type Embedder interface {
	// Embed returns the embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ImageDecoder defines the interface for decoding image payloads
type ImageDecoder interface {
	// Decode decodes raw bytes into a pixel buffer plus basic metadata
	Decode(data []byte) (image.Image, ImageMetadata, error)
}

// FingerprintStore defines the interface for the append-only store of
// perceptual fingerprints used for image reuse detection. Reads never
// block; appends are serialized by the implementation.
type FingerprintStore interface {
	// Query returns the stored entry most similar to the given hash and
	// its similarity in [0,1]. A nil entry means the store is empty.
	// Ties break towards the earliest-inserted entry.
	Query(ctx context.Context, hash string) (*FingerprintEntry, float64, error)

	// Append records a new fingerprint entry
	Append(ctx context.Context, entry *FingerprintEntry) error
}

// EvidenceCorpus defines the interface for the read-only fact-check corpus
type EvidenceCorpus interface {
	// Search returns up to k corpus entries ranked by cosine similarity
	// to the query embedding, descending
	Search(ctx context.Context, embedding []float32, k int) ([]EvidenceItem, error)
}

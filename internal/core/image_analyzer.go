package core

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"go.uber.org/zap"
)

// Heuristic weights of the manipulation score components
const (
	uniformityWeight  = 0.4
	smoothnessWeight  = 0.3
	compressionWeight = 0.3
)

// ImageAnalyzer computes a perceptual fingerprint and a heuristic
// manipulation score for a submitted image, and checks the fingerprint
// store for prior reuse of the same image
type ImageAnalyzer struct {
	decoder           ImageDecoder
	store             FingerprintStore
	threshold         float64
	reuseThreshold    float64
	storeFingerprints bool
	logger            *zap.Logger
}

// NewImageAnalyzer creates a new image analyzer. storeFingerprints
// controls the only external mutation the analyzer performs: appending
// the fingerprint of a successfully analyzed image to the store.
func NewImageAnalyzer(
	decoder ImageDecoder,
	store FingerprintStore,
	threshold float64,
	reuseThreshold float64,
	storeFingerprints bool,
	logger *zap.Logger,
) *ImageAnalyzer {
	return &ImageAnalyzer{
		decoder:           decoder,
		store:             store,
		threshold:         threshold,
		reuseThreshold:    reuseThreshold,
		storeFingerprints: storeFingerprints,
		logger:            logger,
	}
}

// Analyze runs forensics on a raw image payload
func (a *ImageAnalyzer) Analyze(ctx context.Context, data []byte) (*ImageAnalysisResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image payload", ErrInvalidInput)
	}

	img, metadata, err := a.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("image decoding failed: %w", err)
	}

	score := manipulationScore(img, len(data))

	verdict := ImageAuthentic
	if score > a.threshold {
		verdict = ImagePotentiallyManipulated
	}
	confidence := clamp01(math.Abs(score-a.threshold) * 2)

	hash := DifferenceHash(img)

	match, similarity, err := a.store.Query(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("fingerprint store query failed: %w", err)
	}

	result := &ImageAnalysisResult{
		Verdict:           verdict,
		Confidence:        confidence,
		ManipulationScore: score,
		Hash:              hash,
		Metadata:          metadata,
	}

	if match != nil && similarity >= a.reuseThreshold {
		result.IsReused = true
		result.ReusedSource = match
	}

	result.Explanation = imageExplanation(result)

	if a.storeFingerprints && !result.IsReused {
		entry := &FingerprintEntry{
			Hash:    hash,
			Source:  fmt.Sprintf("upload-%s", time.Now().UTC().Format(time.RFC3339)),
			AddedAt: time.Now().UTC(),
		}
		if err := a.store.Append(ctx, entry); err != nil {
			// Appends are best-effort; the analysis itself stands
			a.logger.Warn("Failed to store image fingerprint", zap.Error(err))
		}
	}

	a.logger.Debug("Image analysis completed",
		zap.String("verdict", string(verdict)),
		zap.Float64("manipulation_score", score),
		zap.Bool("is_reused", result.IsReused))

	return result, nil
}

// manipulationScore combines three heuristics into [0,1]: near-constant
// color regions, unnaturally smooth vertical gradients, and a file size
// far below what the pixel count would suggest
func manipulationScore(img image.Image, fileSize int) float64 {
	stats := collectPixelStats(img)

	uniformity := 1 - clamp01(stats.meanChannelStdDev/128)
	smoothness := 1 - clamp01(stats.meanVerticalDelta/50)

	bounds := img.Bounds()
	expected := float64(bounds.Dx()) * float64(bounds.Dy()) * 3
	compressionRatio := clamp01(float64(fileSize) / expected)

	return uniformityWeight*uniformity +
		smoothnessWeight*smoothness +
		compressionWeight*(1-compressionRatio)
}

type pixelStats struct {
	meanChannelStdDev float64
	meanVerticalDelta float64
}

func collectPixelStats(img image.Image) pixelStats {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	count := float64(width * height)

	var sum, sumSq [3]float64
	var deltaSum float64
	var deltaCount int

	prevRow := make([][3]float64, width)
	row := make([][3]float64, width)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			px := [3]float64{float64(r >> 8), float64(g >> 8), float64(b >> 8)}
			row[x-bounds.Min.X] = px

			for c := 0; c < 3; c++ {
				sum[c] += px[c]
				sumSq[c] += px[c] * px[c]
			}

			if y > bounds.Min.Y {
				prev := prevRow[x-bounds.Min.X]
				for c := 0; c < 3; c++ {
					deltaSum += math.Abs(px[c] - prev[c])
					deltaCount++
				}
			}
		}
		prevRow, row = row, prevRow
	}

	var stdSum float64
	for c := 0; c < 3; c++ {
		mean := sum[c] / count
		variance := sumSq[c]/count - mean*mean
		if variance < 0 {
			variance = 0
		}
		stdSum += math.Sqrt(variance)
	}

	stats := pixelStats{
		meanChannelStdDev: stdSum / 3,
	}
	if deltaCount > 0 {
		stats.meanVerticalDelta = deltaSum / float64(deltaCount)
	}

	return stats
}

// imageExplanation renders a human-readable summary of the forensics
func imageExplanation(result *ImageAnalysisResult) string {
	base := "No obvious signs of manipulation detected."
	if result.Verdict == ImagePotentiallyManipulated {
		base = "Heuristic analysis suggests possible image manipulation."
	}
	if result.IsReused {
		base += fmt.Sprintf(" Image matches a previously seen image from %s.", result.ReusedSource.Source)
	}
	return base
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

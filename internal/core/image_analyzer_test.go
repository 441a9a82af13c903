package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newImageAnalyzer(decoder ImageDecoder, store FingerprintStore, storeFingerprints bool) *ImageAnalyzer {
	return NewImageAnalyzer(decoder, store, 0.5, 0.90, storeFingerprints, zap.NewNop())
}

func TestImageAnalyze_EmptyPayload(t *testing.T) {
	analyzer := newImageAnalyzer(&fakeDecoder{}, &fakeStore{}, false)

	_, err := analyzer.Analyze(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestImageAnalyze_DecodeErrorIsWrapped(t *testing.T) {
	decoder := &fakeDecoder{err: ErrUnsupportedFormat}
	analyzer := newImageAnalyzer(decoder, &fakeStore{}, false)

	_, err := analyzer.Analyze(context.Background(), []byte("not an image"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestImageAnalyze_UniformImageFlagsManipulation(t *testing.T) {
	// A flat single-color image with a tiny payload maxes out all three
	// heuristics
	decoder := &fakeDecoder{
		img:      uniformImage(64, 64),
		metadata: ImageMetadata{Format: "png", Width: 64, Height: 64, ColorMode: "RGBA"},
	}
	analyzer := newImageAnalyzer(decoder, &fakeStore{}, false)

	result, err := analyzer.Analyze(context.Background(), []byte{0x01, 0x02, 0x03})
	require.NoError(t, err)

	assert.Equal(t, ImagePotentiallyManipulated, result.Verdict)
	assert.Greater(t, result.ManipulationScore, 0.9)
	assert.Greater(t, result.Confidence, 0.8)
	assert.Contains(t, result.Explanation, "possible image manipulation")
	assert.Equal(t, "png", result.Metadata.Format)
}

func TestImageAnalyze_NaturalImageIsAuthentic(t *testing.T) {
	// High channel spread, large vertical deltas and a full-size payload
	// give a score near zero
	decoder := &fakeDecoder{
		img:      stripedImage(64, 64),
		metadata: ImageMetadata{Format: "jpeg", Width: 64, Height: 64, ColorMode: "RGBA"},
	}
	analyzer := newImageAnalyzer(decoder, &fakeStore{}, false)

	result, err := analyzer.Analyze(context.Background(), make([]byte, 64*64*3))
	require.NoError(t, err)

	assert.Equal(t, ImageAuthentic, result.Verdict)
	assert.Less(t, result.ManipulationScore, 0.1)
	assert.Contains(t, result.Explanation, "No obvious signs of manipulation")
}

func TestImageAnalyze_ManipulationScoreFormula(t *testing.T) {
	img := uniformImage(10, 10)
	fileSize := 30 // one tenth of the 10*10*3 expected size

	score := manipulationScore(img, fileSize)

	// uniformity = 1, smoothness = 1, compression ratio = 0.1
	expected := 0.4*1 + 0.3*1 + 0.3*(1-0.1)
	assert.InDelta(t, expected, score, 1e-9)
}

func TestImageAnalyze_ConfidenceScalesWithThresholdDistance(t *testing.T) {
	decoder := &fakeDecoder{img: stripedImage(32, 32)}
	analyzer := newImageAnalyzer(decoder, &fakeStore{}, false)

	result, err := analyzer.Analyze(context.Background(), make([]byte, 32*32*3))
	require.NoError(t, err)

	expected := clamp01((0.5 - result.ManipulationScore) * 2)
	assert.InDelta(t, expected, result.Confidence, 1e-9)
}

func TestImageAnalyze_ReuseDetected(t *testing.T) {
	seen := &FingerprintEntry{Hash: "aa", Source: "factcheck-archive"}
	store := &fakeStore{entry: seen, similarity: 0.95}
	decoder := &fakeDecoder{img: stripedImage(64, 64)}
	analyzer := newImageAnalyzer(decoder, store, false)

	result, err := analyzer.Analyze(context.Background(), make([]byte, 64*64*3))
	require.NoError(t, err)

	assert.True(t, result.IsReused)
	require.NotNil(t, result.ReusedSource)
	assert.Equal(t, "factcheck-archive", result.ReusedSource.Source)
	assert.Contains(t, result.Explanation, "previously seen image from factcheck-archive")
}

func TestImageAnalyze_SimilarityBelowThresholdIsNotReuse(t *testing.T) {
	seen := &FingerprintEntry{Hash: "aa", Source: "somewhere"}
	store := &fakeStore{entry: seen, similarity: 0.85}
	decoder := &fakeDecoder{img: stripedImage(64, 64)}
	analyzer := newImageAnalyzer(decoder, store, false)

	result, err := analyzer.Analyze(context.Background(), make([]byte, 64*64*3))
	require.NoError(t, err)

	assert.False(t, result.IsReused)
	assert.Nil(t, result.ReusedSource)
}

func TestImageAnalyze_StoresFingerprintForNewImages(t *testing.T) {
	store := &fakeStore{}
	decoder := &fakeDecoder{img: stripedImage(64, 64)}
	analyzer := newImageAnalyzer(decoder, store, true)

	result, err := analyzer.Analyze(context.Background(), make([]byte, 64*64*3))
	require.NoError(t, err)

	require.Len(t, store.appended, 1)
	assert.Equal(t, result.Hash, store.appended[0].Hash)
	assert.NotEmpty(t, store.appended[0].Source)
}

func TestImageAnalyze_DoesNotStoreReusedImages(t *testing.T) {
	store := &fakeStore{entry: &FingerprintEntry{Hash: "aa", Source: "x"}, similarity: 0.99}
	decoder := &fakeDecoder{img: stripedImage(64, 64)}
	analyzer := newImageAnalyzer(decoder, store, true)

	_, err := analyzer.Analyze(context.Background(), make([]byte, 64*64*3))
	require.NoError(t, err)

	assert.Empty(t, store.appended)
}

func TestImageAnalyze_AppendFailureIsNotFatal(t *testing.T) {
	store := &fakeStore{appendErr: errors.New("disk full")}
	decoder := &fakeDecoder{img: stripedImage(64, 64)}
	analyzer := newImageAnalyzer(decoder, store, true)

	result, err := analyzer.Analyze(context.Background(), make([]byte, 64*64*3))
	require.NoError(t, err, "analysis stands even when the append fails")
	assert.NotNil(t, result)
}

func TestImageAnalyze_StoreQueryFailure(t *testing.T) {
	store := &fakeStore{queryErr: errors.New("store down")}
	decoder := &fakeDecoder{img: stripedImage(64, 64)}
	analyzer := newImageAnalyzer(decoder, store, false)

	_, err := analyzer.Analyze(context.Background(), make([]byte, 64*64*3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fingerprint store query failed")
}

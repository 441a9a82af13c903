package core

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/mitraverify/mitraverify/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClassifier returns a scripted prediction or error
type fakeClassifier struct {
	prediction *Prediction
	err        error
}

func (f *fakeClassifier) Predict(ctx context.Context, text string) (*Prediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prediction, nil
}

// fakeEmbedder returns a scripted embedding or error
type fakeEmbedder struct {
	embedding []float32
	err       error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

// fakeDecoder returns a scripted image regardless of payload
type fakeDecoder struct {
	img      image.Image
	metadata ImageMetadata
	err      error
}

func (f *fakeDecoder) Decode(data []byte) (image.Image, ImageMetadata, error) {
	if f.err != nil {
		return nil, ImageMetadata{}, f.err
	}
	return f.img, f.metadata, nil
}

// fakeStore returns a scripted best match and records appends
type fakeStore struct {
	entry      *FingerprintEntry
	similarity float64
	queryErr   error
	appendErr  error
	appended   []*FingerprintEntry
}

func (f *fakeStore) Query(ctx context.Context, hash string) (*FingerprintEntry, float64, error) {
	if f.queryErr != nil {
		return nil, 0, f.queryErr
	}
	return f.entry, f.similarity, nil
}

func (f *fakeStore) Append(ctx context.Context, entry *FingerprintEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, entry)
	return nil
}

// fakeCorpus returns scripted search results
type fakeCorpus struct {
	items []EvidenceItem
	err   error
}

func (f *fakeCorpus) Search(ctx context.Context, embedding []float32, k int) ([]EvidenceItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func reliablePrediction(misinfoProb float64) *Prediction {
	return &Prediction{
		Probabilities: map[TextLabel]float64{
			LabelMisinformation: misinfoProb,
			LabelReliable:       1 - misinfoProb,
		},
		Language:  "en",
		ModelName: "test-model",
	}
}

// uniformImage is a single-color image, the strongest manipulation signal
// the heuristics can see
func uniformImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Pix[img.PixOffset(x, y)] = 128
			img.Pix[img.PixOffset(x, y)+1] = 128
			img.Pix[img.PixOffset(x, y)+2] = 128
			img.Pix[img.PixOffset(x, y)+3] = 255
		}
	}
	return img
}

// stripedImage alternates black and white rows, giving maximal channel
// spread and maximal vertical deltas
func stripedImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		v := uint8(0)
		if y%2 == 1 {
			v = 255
		}
		for x := 0; x < width; x++ {
			img.Pix[img.PixOffset(x, y)] = v
			img.Pix[img.PixOffset(x, y)+1] = v
			img.Pix[img.PixOffset(x, y)+2] = v
			img.Pix[img.PixOffset(x, y)+3] = 255
		}
	}
	return img
}

type engineDeps struct {
	classifier TextClassifier
	embedder   Embedder
	decoder    ImageDecoder
	store      FingerprintStore
	corpus     EvidenceCorpus
}

func newTestEngine(deps engineDeps) *FusionEngine {
	logger := zap.NewNop()

	textAnalyzer := NewTextAnalyzer(deps.classifier, utils.NewTextProcessor(logger), NewCalibrator(false, 1, 0), 4096, logger)
	imageAnalyzer := NewImageAnalyzer(deps.decoder, deps.store, 0.5, 0.90, false, logger)
	retriever := NewEvidenceRetriever(deps.embedder, deps.corpus, 3, 0.3, logger)

	weights := FusionWeights{Text: 0.6, Image: 0.3, Evidence: 0.1}
	return NewFusionEngine(textAnalyzer, imageAnalyzer, retriever, weights, 0, logger)
}

func TestVerify_EmptyRequest(t *testing.T) {
	engine := newTestEngine(engineDeps{
		classifier: &fakeClassifier{},
		embedder:   &fakeEmbedder{},
		decoder:    &fakeDecoder{},
		store:      &fakeStore{},
		corpus:     &fakeCorpus{},
	})

	_, err := engine.Verify(context.Background(), &VerificationRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVerify_TextOnlyMisinformation(t *testing.T) {
	engine := newTestEngine(engineDeps{
		classifier: &fakeClassifier{prediction: reliablePrediction(0.9)},
		embedder:   &fakeEmbedder{embedding: []float32{1, 0, 0}},
		decoder:    &fakeDecoder{},
		store:      &fakeStore{},
		corpus: &fakeCorpus{items: []EvidenceItem{
			{Claim: "debunked before", Verdict: EvidenceFalse, Source: "factcheck.org", Similarity: 0.8},
		}},
	})

	result, err := engine.Verify(context.Background(), &VerificationRequest{Text: "vaccines contain microchips"})
	require.NoError(t, err)

	assert.Equal(t, VerdictMisinformation, result.OverallVerdict)
	require.NotNil(t, result.TextAnalysis)
	assert.Nil(t, result.ImageAnalysis, "no image submitted, no image analysis")
	assert.Len(t, result.Evidence, 1)
	assert.Empty(t, result.Failures)
	assert.NotEmpty(t, result.ProcessingID)
	assert.Contains(t, result.Explanation, "text model indicates misinformation")
	assert.Contains(t, result.Explanation, "1 supporting fact-check found")
}

func TestVerify_ImageEscalatesToNeedsVerification(t *testing.T) {
	// Text looks reliable but the uniform image with a tiny payload trips
	// every manipulation heuristic
	engine := newTestEngine(engineDeps{
		classifier: &fakeClassifier{prediction: reliablePrediction(0.1)},
		embedder:   &fakeEmbedder{embedding: []float32{1, 0, 0}},
		decoder: &fakeDecoder{
			img:      uniformImage(64, 64),
			metadata: ImageMetadata{Format: "png", Width: 64, Height: 64, ColorMode: "RGBA"},
		},
		store:  &fakeStore{},
		corpus: &fakeCorpus{},
	})

	result, err := engine.Verify(context.Background(), &VerificationRequest{
		Text:  "a perfectly normal claim",
		Image: []byte{0x01, 0x02},
	})
	require.NoError(t, err)

	assert.Equal(t, VerdictNeedsVerification, result.OverallVerdict)
	require.NotNil(t, result.ImageAnalysis)
	assert.Equal(t, ImagePotentiallyManipulated, result.ImageAnalysis.Verdict)
	assert.Contains(t, result.Explanation, "image shows potential manipulation signs")
}

func TestVerify_AllReliable(t *testing.T) {
	// Striped image with a full-size payload triggers no heuristic
	payload := make([]byte, 64*64*3)
	engine := newTestEngine(engineDeps{
		classifier: &fakeClassifier{prediction: reliablePrediction(0.2)},
		embedder:   &fakeEmbedder{embedding: []float32{1, 0, 0}},
		decoder: &fakeDecoder{
			img:      stripedImage(64, 64),
			metadata: ImageMetadata{Format: "png", Width: 64, Height: 64, ColorMode: "RGBA"},
		},
		store:  &fakeStore{},
		corpus: &fakeCorpus{},
	})

	result, err := engine.Verify(context.Background(), &VerificationRequest{
		Text:  "the sky is blue",
		Image: payload,
	})
	require.NoError(t, err)

	assert.Equal(t, VerdictReliable, result.OverallVerdict)
	require.NotNil(t, result.TextAnalysis)
	require.NotNil(t, result.ImageAnalysis)
	assert.Equal(t, ImageAuthentic, result.ImageAnalysis.Verdict)

	// No evidence retrieved, so the confidence weights renormalize over
	// text and image alone
	expected := (0.6*result.TextAnalysis.Confidence + 0.3*result.ImageAnalysis.Confidence) / 0.9
	assert.InDelta(t, expected, result.Confidence, 1e-9)
}

func TestVerify_ComponentFailureDegrades(t *testing.T) {
	payload := make([]byte, 64*64*3)
	engine := newTestEngine(engineDeps{
		classifier: &fakeClassifier{err: errors.New("model timeout")},
		embedder:   &fakeEmbedder{err: errors.New("embedding backend down")},
		decoder: &fakeDecoder{
			img:      stripedImage(64, 64),
			metadata: ImageMetadata{Format: "jpeg", Width: 64, Height: 64, ColorMode: "RGBA"},
		},
		store:  &fakeStore{},
		corpus: &fakeCorpus{},
	})

	result, err := engine.Verify(context.Background(), &VerificationRequest{
		Text:  "some claim",
		Image: payload,
	})
	require.NoError(t, err, "one surviving component is enough for a result")

	assert.Nil(t, result.TextAnalysis)
	require.NotNil(t, result.ImageAnalysis)
	assert.Len(t, result.Failures, 2)
	assert.Contains(t, result.Explanation, "text analysis unavailable")
	assert.Contains(t, result.Explanation, "evidence analysis unavailable")

	// Image carries all remaining weight
	assert.InDelta(t, result.ImageAnalysis.Confidence, result.Confidence, 1e-9)
}

func TestVerify_AllComponentsFailed(t *testing.T) {
	engine := newTestEngine(engineDeps{
		classifier: &fakeClassifier{err: errors.New("model down")},
		embedder:   &fakeEmbedder{err: errors.New("embedder down")},
		decoder:    &fakeDecoder{},
		store:      &fakeStore{},
		corpus:     &fakeCorpus{},
	})

	_, err := engine.Verify(context.Background(), &VerificationRequest{Text: "some claim"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllComponentsUnavailable)
}

func TestVerify_ImageOnlyDecodeFailure(t *testing.T) {
	// An undecodable image on an image-only request surfaces the decode
	// error itself, not a generic unavailability
	engine := newTestEngine(engineDeps{
		classifier: &fakeClassifier{},
		embedder:   &fakeEmbedder{},
		decoder:    &fakeDecoder{err: ErrUnsupportedFormat},
		store:      &fakeStore{},
		corpus:     &fakeCorpus{},
	})

	_, err := engine.Verify(context.Background(), &VerificationRequest{Image: []byte("garbage")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.NotErrorIs(t, err, ErrAllComponentsUnavailable)
}

func TestVerify_CancelledContext(t *testing.T) {
	engine := newTestEngine(engineDeps{
		classifier: &fakeClassifier{prediction: reliablePrediction(0.2)},
		embedder:   &fakeEmbedder{embedding: []float32{1}},
		decoder:    &fakeDecoder{},
		store:      &fakeStore{},
		corpus:     &fakeCorpus{},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Verify(ctx, &VerificationRequest{Text: "some claim"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerify_DeterministicForSameInput(t *testing.T) {
	deps := engineDeps{
		classifier: &fakeClassifier{prediction: reliablePrediction(0.85)},
		embedder:   &fakeEmbedder{embedding: []float32{1, 0}},
		decoder:    &fakeDecoder{},
		store:      &fakeStore{},
		corpus: &fakeCorpus{items: []EvidenceItem{
			{Claim: "known hoax", Verdict: EvidenceFalse, Source: "pib.gov.in", Similarity: 0.7},
		}},
	}
	engine := newTestEngine(deps)

	request := &VerificationRequest{Text: "forwarded as received"}
	first, err := engine.Verify(context.Background(), request)
	require.NoError(t, err)
	second, err := engine.Verify(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, first.OverallVerdict, second.OverallVerdict)
	assert.InDelta(t, first.Confidence, second.Confidence, 1e-9)
	assert.Equal(t, first.Explanation, second.Explanation)
	assert.NotEqual(t, first.ProcessingID, second.ProcessingID, "each run gets its own processing ID")
}

func TestVerify_EvidenceNotDispatchedForImageOnly(t *testing.T) {
	payload := make([]byte, 32*32*3)
	embedder := &fakeEmbedder{err: fmt.Errorf("should not be called")}
	engine := newTestEngine(engineDeps{
		classifier: &fakeClassifier{},
		embedder:   embedder,
		decoder: &fakeDecoder{
			img:      stripedImage(32, 32),
			metadata: ImageMetadata{Format: "png", Width: 32, Height: 32, ColorMode: "RGBA"},
		},
		store:  &fakeStore{},
		corpus: &fakeCorpus{},
	})

	result, err := engine.Verify(context.Background(), &VerificationRequest{Image: payload})
	require.NoError(t, err)

	assert.Nil(t, result.TextAnalysis)
	assert.Empty(t, result.Evidence)
	assert.Empty(t, result.Failures, "an undispatched component is not a failure")
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideVerdict_TextMisinformationWins(t *testing.T) {
	text := &TextAnalysisResult{Prediction: LabelMisinformation, Confidence: 0.9}
	image := &ImageAnalysisResult{Verdict: ImageAuthentic}

	assert.Equal(t, VerdictMisinformation, decideVerdict(text, image))

	// Text priority holds even when the image is manipulated
	image.Verdict = ImagePotentiallyManipulated
	assert.Equal(t, VerdictMisinformation, decideVerdict(text, image))
}

func TestDecideVerdict_ManipulatedImageEscalates(t *testing.T) {
	text := &TextAnalysisResult{Prediction: LabelReliable, Confidence: 0.9}
	image := &ImageAnalysisResult{Verdict: ImagePotentiallyManipulated}

	assert.Equal(t, VerdictNeedsVerification, decideVerdict(text, image))
	assert.Equal(t, VerdictNeedsVerification, decideVerdict(nil, image))
}

func TestDecideVerdict_DefaultsToReliable(t *testing.T) {
	text := &TextAnalysisResult{Prediction: LabelReliable, Confidence: 0.6}
	image := &ImageAnalysisResult{Verdict: ImageAuthentic}

	assert.Equal(t, VerdictReliable, decideVerdict(text, image))
	assert.Equal(t, VerdictReliable, decideVerdict(text, nil))
	assert.Equal(t, VerdictReliable, decideVerdict(nil, nil))
}

func TestEvidenceConfidence(t *testing.T) {
	assert.Zero(t, evidenceConfidence(nil))

	// One item at similarity 0.9 is scaled down by the count saturation
	one := []EvidenceItem{{Similarity: 0.9}}
	assert.InDelta(t, 0.9*(1.0/3.0), evidenceConfidence(one), 1e-9)

	// Three items reach full saturation, contribution is the mean
	three := []EvidenceItem{{Similarity: 0.9}, {Similarity: 0.6}, {Similarity: 0.3}}
	assert.InDelta(t, 0.6, evidenceConfidence(three), 1e-9)

	// More than three items saturate at 1
	five := []EvidenceItem{
		{Similarity: 0.8}, {Similarity: 0.8}, {Similarity: 0.8}, {Similarity: 0.8}, {Similarity: 0.8},
	}
	assert.InDelta(t, 0.8, evidenceConfidence(five), 1e-9)
}

func TestFuseConfidence_AllComponentsPresent(t *testing.T) {
	weights := FusionWeights{Text: 0.6, Image: 0.3, Evidence: 0.1}
	text := &TextAnalysisResult{Confidence: 0.8}
	image := &ImageAnalysisResult{Confidence: 0.6}
	evidence := []EvidenceItem{{Similarity: 0.9}, {Similarity: 0.9}, {Similarity: 0.9}}

	expected := 0.6*0.8 + 0.3*0.6 + 0.1*0.9
	assert.InDelta(t, expected, fuseConfidence(weights, text, image, evidence), 1e-9)
}

func TestFuseConfidence_RenormalizesMissingComponents(t *testing.T) {
	weights := FusionWeights{Text: 0.6, Image: 0.3, Evidence: 0.1}
	text := &TextAnalysisResult{Confidence: 0.8}

	// Text alone carries full weight
	assert.InDelta(t, 0.8, fuseConfidence(weights, text, nil, nil), 1e-9)

	// Text plus image renormalize to 0.6/0.9 and 0.3/0.9
	image := &ImageAnalysisResult{Confidence: 0.5}
	expected := (0.6*0.8 + 0.3*0.5) / 0.9
	assert.InDelta(t, expected, fuseConfidence(weights, text, image, nil), 1e-9)

	// Empty evidence never counts as a present component
	assert.InDelta(t, expected, fuseConfidence(weights, text, image, []EvidenceItem{}), 1e-9)
}

func TestFuseConfidence_NoComponents(t *testing.T) {
	weights := FusionWeights{Text: 0.6, Image: 0.3, Evidence: 0.1}
	assert.Zero(t, fuseConfidence(weights, nil, nil, nil))
}

func TestFuseConfidence_StaysInUnitInterval(t *testing.T) {
	weights := FusionWeights{Text: 0.6, Image: 0.3, Evidence: 0.1}
	text := &TextAnalysisResult{Confidence: 1.0}
	image := &ImageAnalysisResult{Confidence: 1.0}
	evidence := []EvidenceItem{{Similarity: 1.0}, {Similarity: 1.0}, {Similarity: 1.0}}

	fused := fuseConfidence(weights, text, image, evidence)
	assert.GreaterOrEqual(t, fused, 0.0)
	assert.LessOrEqual(t, fused, 1.0)
}

func TestBuildExplanation(t *testing.T) {
	text := &TextAnalysisResult{Prediction: LabelMisinformation, Confidence: 0.9}
	image := &ImageAnalysisResult{
		Verdict:      ImagePotentiallyManipulated,
		IsReused:     true,
		ReusedSource: &FingerprintEntry{Source: "factcheck-archive"},
	}
	evidence := []EvidenceItem{{Similarity: 0.8}, {Similarity: 0.7}}

	got := buildExplanation(text, image, evidence, true, nil)
	assert.Contains(t, got, "text model indicates misinformation with high confidence")
	assert.Contains(t, got, "image shows potential manipulation signs")
	assert.Contains(t, got, "image matches a previously seen image from factcheck-archive")
	assert.Contains(t, got, "2 supporting fact-checks found")
}

func TestBuildExplanation_NoEvidenceFound(t *testing.T) {
	text := &TextAnalysisResult{Prediction: LabelReliable, Confidence: 0.7}

	got := buildExplanation(text, nil, nil, true, nil)
	assert.Contains(t, got, "text model indicates reliable with moderate confidence")
	assert.Contains(t, got, "no matching fact-checks found")
}

func TestBuildExplanation_Failures(t *testing.T) {
	failures := []ComponentFailure{{Component: "text", Reason: "model timeout"}}
	image := &ImageAnalysisResult{Verdict: ImageAuthentic}

	got := buildExplanation(nil, image, nil, false, failures)
	assert.Contains(t, got, "image shows no manipulation signs")
	assert.Contains(t, got, "text analysis unavailable (model timeout)")
}

func TestConfidenceBand(t *testing.T) {
	assert.Equal(t, "high", confidenceBand(0.85))
	assert.Equal(t, "moderate", confidenceBand(0.7))
	assert.Equal(t, "low", confidenceBand(0.6))
	assert.Equal(t, "low", confidenceBand(0.2))
}

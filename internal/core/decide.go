package core

import (
	"fmt"
	"strings"
)

// FusionWeights are the nominal confidence weights of the three
// components. When a component is absent or failed its weight is
// redistributed proportionally across the present components.
type FusionWeights struct {
	Text     float64
	Image    float64
	Evidence float64
}

// evidenceSaturation is the retrieved-item count at which the evidence
// component reaches its full confidence contribution
const evidenceSaturation = 3.0

// decideVerdict selects the overall verdict by priority rather than by a
// confidence threshold: a textual misinformation call wins outright,
// image forensics corroborates but only escalates to needs_verification,
// and evidence never flips the verdict on its own.
func decideVerdict(text *TextAnalysisResult, image *ImageAnalysisResult) Verdict {
	if text != nil && text.Prediction == LabelMisinformation {
		return VerdictMisinformation
	}
	if image != nil && image.Verdict == ImagePotentiallyManipulated {
		return VerdictNeedsVerification
	}
	return VerdictReliable
}

// evidenceConfidence derives the evidence component's confidence from
// the count and similarity of retrieved items: mean similarity scaled by
// a saturating function of the item count
func evidenceConfidence(items []EvidenceItem) float64 {
	if len(items) == 0 {
		return 0
	}

	var total float64
	for _, item := range items {
		total += item.Similarity
	}
	mean := total / float64(len(items))

	saturation := float64(len(items)) / evidenceSaturation
	if saturation > 1 {
		saturation = 1
	}

	return clamp01(mean * saturation)
}

// fuseConfidence combines component confidences under the weights,
// renormalized so the applied weights always sum to 1 over the present
// components. The result stays in [0,1] and a missing component never
// counts as zero confidence.
func fuseConfidence(weights FusionWeights, text *TextAnalysisResult, image *ImageAnalysisResult, evidence []EvidenceItem) float64 {
	type component struct {
		weight     float64
		confidence float64
	}

	var components []component
	if text != nil {
		components = append(components, component{weights.Text, text.Confidence})
	}
	if image != nil {
		components = append(components, component{weights.Image, image.Confidence})
	}
	if len(evidence) > 0 {
		components = append(components, component{weights.Evidence, evidenceConfidence(evidence)})
	}

	if len(components) == 0 {
		return 0
	}

	var totalWeight float64
	for _, c := range components {
		totalWeight += c.weight
	}
	if totalWeight <= 0 {
		return 0
	}

	var confidence float64
	for _, c := range components {
		confidence += c.weight / totalWeight * c.confidence
	}

	return clamp01(confidence)
}

// buildExplanation composes a short deterministic summary of which
// signals drove the decision. Failed components are named explicitly so
// confidence drops stay explainable.
func buildExplanation(text *TextAnalysisResult, image *ImageAnalysisResult, evidence []EvidenceItem, evidenceRetrieved bool, failures []ComponentFailure) string {
	var parts []string

	if text != nil {
		parts = append(parts, fmt.Sprintf("text model indicates %s with %s confidence",
			text.Prediction, confidenceBand(text.Confidence)))
	}

	if image != nil {
		if image.Verdict == ImagePotentiallyManipulated {
			parts = append(parts, "image shows potential manipulation signs")
		} else {
			parts = append(parts, "image shows no manipulation signs")
		}
		if image.IsReused {
			parts = append(parts, fmt.Sprintf("image matches a previously seen image from %s", image.ReusedSource.Source))
		}
	}

	if evidenceRetrieved {
		switch len(evidence) {
		case 0:
			parts = append(parts, "no matching fact-checks found")
		case 1:
			parts = append(parts, "1 supporting fact-check found")
		default:
			parts = append(parts, fmt.Sprintf("%d supporting fact-checks found", len(evidence)))
		}
	}

	for _, failure := range failures {
		parts = append(parts, fmt.Sprintf("%s analysis unavailable (%s)", failure.Component, failure.Reason))
	}

	if len(parts) == 0 {
		return "analysis completed but no clear indicators found"
	}

	return strings.Join(parts, "; ")
}

func confidenceBand(confidence float64) string {
	switch {
	case confidence > 0.8:
		return "high"
	case confidence > 0.6:
		return "moderate"
	default:
		return "low"
	}
}

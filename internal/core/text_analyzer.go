package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitraverify/mitraverify/internal/language"
	"github.com/mitraverify/mitraverify/internal/utils"
	"go.uber.org/zap"
)

// TextAnalyzer wraps a multilingual binary text classifier and turns its
// raw output into a calibrated TextAnalysisResult
type TextAnalyzer struct {
	classifier    TextClassifier
	textProcessor *utils.TextProcessor
	calibrator    *Calibrator
	maxTextSize   int
	logger        *zap.Logger
}

// NewTextAnalyzer creates a new text analyzer
func NewTextAnalyzer(
	classifier TextClassifier,
	textProcessor *utils.TextProcessor,
	calibrator *Calibrator,
	maxTextSize int,
	logger *zap.Logger,
) *TextAnalyzer {
	return &TextAnalyzer{
		classifier:    classifier,
		textProcessor: textProcessor,
		calibrator:    calibrator,
		maxTextSize:   maxTextSize,
		logger:        logger,
	}
}

// Analyze classifies a textual claim as reliable or misinformation.
// Over-long input is truncated to the model window and the truncation is
// signaled in the explanation, never applied silently.
func (a *TextAnalyzer) Analyze(ctx context.Context, text string) (*TextAnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidInput)
	}

	detectedLanguage := language.Detect(text)

	processed, truncated := a.textProcessor.ProcessText(text, a.maxTextSize)

	prediction, err := a.classifier.Predict(ctx, processed)
	if err != nil {
		return nil, fmt.Errorf("text classification failed: %w", err)
	}

	raw := normalizeProbabilities(prediction.Probabilities)

	// Recalibrate the misinformation probability when a calibration
	// step is configured; the raw distribution is kept alongside.
	probs := raw
	if a.calibrator.Enabled() {
		calibrated := a.calibrator.Apply(raw[LabelMisinformation])
		probs = map[TextLabel]float64{
			LabelMisinformation: calibrated,
			LabelReliable:       1 - calibrated,
		}
	}

	label := LabelReliable
	if probs[LabelMisinformation] > 0.5 {
		label = LabelMisinformation
	}
	confidence := probs[label]

	if prediction.Language != "" {
		detectedLanguage = prediction.Language
	}

	explanation := textExplanation(label, confidence)
	if truncated {
		explanation += " Input text was truncated before analysis."
	}

	result := &TextAnalysisResult{
		Prediction:       label,
		Confidence:       confidence,
		Probabilities:    probs,
		RawProbabilities: raw,
		Language:         detectedLanguage,
		Explanation:      explanation,
		ModelUsed:        prediction.ModelName,
	}

	a.logger.Debug("Text analysis completed",
		zap.String("prediction", string(label)),
		zap.Float64("confidence", confidence),
		zap.String("language", detectedLanguage),
		zap.Bool("truncated", truncated))

	return result, nil
}

// normalizeProbabilities fills in missing labels and rescales the
// distribution so both labels sum to 1
func normalizeProbabilities(probs map[TextLabel]float64) map[TextLabel]float64 {
	reliable := probs[LabelReliable]
	misinformation := probs[LabelMisinformation]

	total := reliable + misinformation
	if total <= 0 {
		return map[TextLabel]float64{
			LabelReliable:       0.5,
			LabelMisinformation: 0.5,
		}
	}

	return map[TextLabel]float64{
		LabelReliable:       reliable / total,
		LabelMisinformation: misinformation / total,
	}
}

// textExplanation renders a human-readable summary of the prediction
func textExplanation(label TextLabel, confidence float64) string {
	if label == LabelMisinformation {
		switch {
		case confidence > 0.8:
			return "High confidence detection of misinformation patterns in the text."
		case confidence > 0.6:
			return "Moderate confidence detection of potential misinformation."
		default:
			return "Low confidence detection of possible misinformation patterns."
		}
	}
	switch {
	case confidence > 0.8:
		return "High confidence that the text appears reliable."
	case confidence > 0.6:
		return "Moderate confidence that the text appears reliable."
	default:
		return "Low confidence assessment - text may need further verification."
	}
}

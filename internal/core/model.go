package core

import (
	"time"
)

// TextLabel is the binary label produced by the text classifier
type TextLabel string

const (
	LabelReliable       TextLabel = "reliable"
	LabelMisinformation TextLabel = "misinformation"
)

// ImageVerdict is the outcome of image forensics
type ImageVerdict string

const (
	ImageAuthentic              ImageVerdict = "authentic"
	ImagePotentiallyManipulated ImageVerdict = "potentially_manipulated"
)

// EvidenceVerdict is the fact-check verdict attached to a corpus entry
type EvidenceVerdict string

const (
	EvidenceTrue       EvidenceVerdict = "true"
	EvidenceFalse      EvidenceVerdict = "false"
	EvidenceUnverified EvidenceVerdict = "unverified"
)

// Verdict is the fused, caller-facing verdict
type Verdict string

const (
	VerdictMisinformation    Verdict = "misinformation"
	VerdictReliable          Verdict = "reliable"
	VerdictNeedsVerification Verdict = "needs_verification"
)

// VerificationRequest represents a claim submitted for verification.
// At least one of Text or Image must be present.
type VerificationRequest struct {
	Text  string
	Image []byte
}

// HasText reports whether the request carries a non-empty textual claim
func (r *VerificationRequest) HasText() bool {
	return len(r.Text) > 0
}

// HasImage reports whether the request carries an image payload
func (r *VerificationRequest) HasImage() bool {
	return len(r.Image) > 0
}

// TextAnalysisResult represents the outcome of text claim analysis.
// It is produced fresh per request and immutable once returned.
type TextAnalysisResult struct {
	Prediction    TextLabel             `json:"prediction"`
	Confidence    float64               `json:"confidence"`
	Probabilities map[TextLabel]float64 `json:"probabilities"`
	// RawProbabilities holds the uncalibrated model output. It equals
	// Probabilities when no calibration step is configured.
	RawProbabilities map[TextLabel]float64 `json:"raw_probabilities"`
	Language         string                `json:"language"`
	Explanation      string                `json:"explanation"`
	ModelUsed        string                `json:"model_used"`
}

// ImageMetadata holds basic properties of a decoded image
type ImageMetadata struct {
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ColorMode string `json:"color_mode"`
}

// FingerprintEntry is a stored perceptual fingerprint of a previously seen image
type FingerprintEntry struct {
	Hash    string    `json:"hash"`
	Source  string    `json:"source"`
	AddedAt time.Time `json:"added_at"`
}

// ImageAnalysisResult represents the outcome of image forensics
type ImageAnalysisResult struct {
	Verdict           ImageVerdict      `json:"verdict"`
	Confidence        float64           `json:"confidence"`
	ManipulationScore float64           `json:"manipulation_score"`
	IsReused          bool              `json:"is_reused"`
	ReusedSource      *FingerprintEntry `json:"reused_source,omitempty"`
	Hash              string            `json:"hash"`
	Metadata          ImageMetadata     `json:"metadata"`
	Explanation       string            `json:"explanation"`
}

// EvidenceItem is a fact-checked claim retrieved from the evidence corpus
type EvidenceItem struct {
	Claim      string          `json:"claim"`
	Verdict    EvidenceVerdict `json:"verdict"`
	Source     string          `json:"source"`
	URL        string          `json:"url"`
	Similarity float64         `json:"similarity"`
}

// ComponentFailure records an analysis component that could not contribute
type ComponentFailure struct {
	Component string `json:"component"`
	Reason    string `json:"reason"`
}

// FusionResult is the sole artifact returned to the caller. Any component
// result may be absent when that modality was not submitted or its
// adapter failed; failures are listed so confidence drops stay explainable.
type FusionResult struct {
	OverallVerdict Verdict              `json:"overall_verdict"`
	Confidence     float64              `json:"confidence"`
	TextAnalysis   *TextAnalysisResult  `json:"text_analysis,omitempty"`
	ImageAnalysis  *ImageAnalysisResult `json:"image_analysis,omitempty"`
	Evidence       []EvidenceItem       `json:"evidence"`
	Failures       []ComponentFailure   `json:"failures,omitempty"`
	Explanation    string               `json:"explanation"`
	ProcessingTime float64              `json:"processing_time"`
	ProcessingID   string               `json:"processing_id"`
	AnalyzedAt     time.Time            `json:"analyzed_at"`
}

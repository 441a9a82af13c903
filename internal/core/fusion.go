package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Component names used in failure records and explanations
const (
	componentText     = "text"
	componentImage    = "image"
	componentEvidence = "evidence"
)

// FusionEngine orchestrates the analysis adapters: it fans out one
// independent task per applicable modality, joins on all of them, and
// reconciles their outputs into a single explainable verdict. A task
// failure degrades to an absent component instead of failing the
// request, unless every dispatched component failed.
type FusionEngine struct {
	text             *TextAnalyzer
	image            *ImageAnalyzer
	evidence         *EvidenceRetriever
	weights          FusionWeights
	componentTimeout time.Duration
	logger           *zap.Logger
}

// NewFusionEngine creates a new fusion engine
func NewFusionEngine(
	text *TextAnalyzer,
	image *ImageAnalyzer,
	evidence *EvidenceRetriever,
	weights FusionWeights,
	componentTimeout time.Duration,
	logger *zap.Logger,
) *FusionEngine {
	return &FusionEngine{
		text:             text,
		image:            image,
		evidence:         evidence,
		weights:          weights,
		componentTimeout: componentTimeout,
		logger:           logger,
	}
}

// Verify runs the full pipeline for one request: dispatch, collect,
// decide, explain. Tasks are independent and share no state; each
// carries its own deadline, and caller cancellation propagates to all
// in-flight tasks.
func (e *FusionEngine) Verify(ctx context.Context, request *VerificationRequest) (*FusionResult, error) {
	if !request.HasText() && !request.HasImage() {
		return nil, fmt.Errorf("%w: either text or image must be provided", ErrInvalidInput)
	}

	start := time.Now()

	var (
		textResult    *TextAnalysisResult
		textErr       error
		imageResult   *ImageAnalysisResult
		imageErr      error
		evidenceItems []EvidenceItem
		evidenceErr   error

		textDispatched     = request.HasText()
		imageDispatched    = request.HasImage()
		evidenceDispatched = request.HasText()
	)

	var group errgroup.Group

	if textDispatched {
		group.Go(func() error {
			taskCtx, cancel := e.taskContext(ctx)
			defer cancel()
			textResult, textErr = e.text.Analyze(taskCtx, request.Text)
			return nil
		})
	}

	if imageDispatched {
		group.Go(func() error {
			taskCtx, cancel := e.taskContext(ctx)
			defer cancel()
			imageResult, imageErr = e.image.Analyze(taskCtx, request.Image)
			return nil
		})
	}

	if evidenceDispatched {
		group.Go(func() error {
			taskCtx, cancel := e.taskContext(ctx)
			defer cancel()
			evidenceItems, evidenceErr = e.evidence.Retrieve(taskCtx, request.Text)
			return nil
		})
	}

	// Task errors are collected as typed results, never returned
	// across the join boundary
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failures []ComponentFailure
	dispatched := 0
	failed := 0

	if textDispatched {
		dispatched++
		if textErr != nil {
			failed++
			failures = append(failures, ComponentFailure{Component: componentText, Reason: textErr.Error()})
			e.logger.Warn("Text component failed", zap.Error(textErr))
		}
	}
	if imageDispatched {
		dispatched++
		if imageErr != nil {
			failed++
			failures = append(failures, ComponentFailure{Component: componentImage, Reason: imageErr.Error()})
			e.logger.Warn("Image component failed", zap.Error(imageErr))
		}
	}
	if evidenceDispatched {
		dispatched++
		if evidenceErr != nil {
			failed++
			failures = append(failures, ComponentFailure{Component: componentEvidence, Reason: evidenceErr.Error()})
			e.logger.Warn("Evidence component failed", zap.Error(evidenceErr))
		}
	}

	if failed == dispatched {
		// A single-component request propagates its own error so callers
		// can tell bad input apart from backend unavailability
		if dispatched == 1 {
			switch {
			case textErr != nil:
				return nil, textErr
			case imageErr != nil:
				return nil, imageErr
			}
		}
		return nil, fmt.Errorf("%w: %d of %d components failed", ErrAllComponentsUnavailable, failed, dispatched)
	}

	if evidenceItems == nil {
		evidenceItems = []EvidenceItem{}
	}

	verdict := decideVerdict(textResult, imageResult)
	confidence := fuseConfidence(e.weights, textResult, imageResult, evidenceItems)
	explanation := buildExplanation(textResult, imageResult, evidenceItems, evidenceDispatched && evidenceErr == nil, failures)

	result := &FusionResult{
		OverallVerdict: verdict,
		Confidence:     confidence,
		TextAnalysis:   textResult,
		ImageAnalysis:  imageResult,
		Evidence:       evidenceItems,
		Failures:       failures,
		Explanation:    explanation,
		ProcessingTime: time.Since(start).Seconds(),
		ProcessingID:   uuid.NewString(),
		AnalyzedAt:     time.Now().UTC(),
	}

	e.logger.Info("Content verification completed",
		zap.String("processing_id", result.ProcessingID),
		zap.String("overall_verdict", string(verdict)),
		zap.Float64("confidence", confidence),
		zap.Int("evidence_count", len(evidenceItems)),
		zap.Int("failed_components", failed))

	return result, nil
}

func (e *FusionEngine) taskContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.componentTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.componentTimeout)
}

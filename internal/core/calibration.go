package core

import "math"

// Calibrator applies Platt-style scaling to the raw misinformation
// probability so reported confidence better reflects true likelihood.
// Coefficients come from configuration; a disabled calibrator passes
// probabilities through unchanged.
type Calibrator struct {
	enabled   bool
	slope     float64
	intercept float64
}

// NewCalibrator creates a calibrator with the given sigmoid coefficients
func NewCalibrator(enabled bool, slope, intercept float64) *Calibrator {
	return &Calibrator{
		enabled:   enabled,
		slope:     slope,
		intercept: intercept,
	}
}

// Enabled reports whether calibration is active
func (c *Calibrator) Enabled() bool {
	return c.enabled
}

// Apply recalibrates a probability via sigmoid(slope*logit(p) + intercept).
// Inputs are clamped away from 0 and 1 to keep the logit finite.
func (c *Calibrator) Apply(p float64) float64 {
	if !c.enabled {
		return p
	}

	const eps = 1e-6
	p = math.Min(math.Max(p, eps), 1-eps)
	logit := math.Log(p / (1 - p))
	return 1 / (1 + math.Exp(-(c.slope*logit + c.intercept)))
}

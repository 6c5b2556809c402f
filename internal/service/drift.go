package service

import (
	"fmt"
	"math"

	"github.com/pulseguard-risk-server/internal/domain"
)

// Default drift detection parameters, overridable by the caller.
const (
	DefaultDriftThreshold = 15.0
	DefaultHighThreshold  = 25.0
	DefaultDriftWindow    = 3
)

// DriftOptions configures drift detection thresholds and window size.
type DriftOptions struct {
	DriftThreshold float64 // net change triggering a MODERATE alert
	HighThreshold  float64 // net change triggering a HIGH alert
	Window         int     // number of recent visits to analyze
}

// DefaultDriftOptions returns the standard thresholds.
func DefaultDriftOptions() DriftOptions {
	return DriftOptions{
		DriftThreshold: DefaultDriftThreshold,
		HighThreshold:  DefaultHighThreshold,
		Window:         DefaultDriftWindow,
	}
}

const insufficientDataMessage = "Insufficient visit data for drift analysis."

// DetectDrift classifies the recent trend of a chronological risk score
// sequence. The slope comes from an ordinary least-squares fit over the
// windowed scores; the drift value is the endpoint delta over the same
// window. An alert requires both a drift threshold breach and a positive
// slope: a negative-slope window indicates recovery, not risk, and never
// alerts regardless of drift magnitude.
//
// Known policy caveat: an oscillating-but-elevated trajectory (e.g. scores
// bouncing between 60 and 90 with near-zero slope) never alerts. Carried
// deliberately; any new threshold policy should revisit it.
func DetectDrift(scores []float64, opts DriftOptions) domain.DriftAnalysis {
	if len(scores) < 2 {
		return domain.DriftAnalysis{
			AlertLevel:     domain.AlertStable,
			DriftValue:     0,
			Slope:          0,
			Trend:          domain.TrendStable,
			Message:        insufficientDataMessage,
			AnalyzedScores: roundScores(scores),
		}
	}

	recent := scores
	if opts.Window > 0 && len(scores) > opts.Window {
		recent = scores[len(scores)-opts.Window:]
	}

	slope := olsSlope(recent)
	drift := recent[len(recent)-1] - recent[0]

	var trend domain.Trend
	switch {
	case slope > 0.5:
		trend = domain.TrendIncreasing
	case slope < -0.5:
		trend = domain.TrendDecreasing
	default:
		trend = domain.TrendStable
	}

	var level domain.AlertLevel
	var message string
	switch {
	case drift >= opts.HighThreshold && slope > 0:
		level = domain.AlertHigh
		message = fmt.Sprintf(
			"⚠️ HIGH ALERT: Patient risk has increased by %.1f%% over the last %d visits (slope=%.1f). Immediate clinical intervention recommended.",
			drift, len(recent), slope)
	case drift >= opts.DriftThreshold && slope > 0:
		level = domain.AlertModerate
		message = fmt.Sprintf(
			"⚠️ MODERATE ALERT: Risk drift of %.1f%% detected (slope=%.1f). Schedule follow-up within 2 weeks.",
			drift, slope)
	default:
		level = domain.AlertStable
		message = fmt.Sprintf("Patient risk is stable (drift=%.1f%%, slope=%.1f).", drift, slope)
	}

	return domain.DriftAnalysis{
		AlertLevel:     level,
		DriftValue:     round2(drift),
		Slope:          round2(slope),
		Trend:          trend,
		Message:        message,
		AnalyzedScores: roundScores(recent),
	}
}

// olsSlope fits an ordinary least-squares line against the index sequence
// 0..k-1 and returns its slope, the per-visit average signed rate of change.
func olsSlope(scores []float64) float64 {
	n := float64(len(scores))

	var sumX, sumY float64
	for i, y := range scores {
		sumX += float64(i)
		sumY += y
	}
	meanX := sumX / n
	meanY := sumY / n

	var num, den float64
	for i, y := range scores {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundScores(scores []float64) []float64 {
	rounded := make([]float64, len(scores))
	for i, s := range scores {
		rounded[i] = round2(s)
	}
	return rounded
}

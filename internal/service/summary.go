package service

import (
	"time"

	"github.com/pulseguard-risk-server/internal/domain"
)

// Per-visit timeline flag thresholds. Fixed display policy, independent of
// the configurable drift thresholds.
const (
	timelineHighAlertScore = 70.0
	timelineDriftingScore  = 50.0
)

// Timeline flag values.
const (
	timelineFlagHighAlert = "⚠ HIGH ALERT"
	timelineFlagDrifting  = "Drifting"
	timelineFlagStable    = "Stable"
)

// BuildRiskSummary runs drift detection over a patient's full chronological
// score sequence with default thresholds and annotates each visit for the
// timeline. Rebuilt fresh on every request.
func BuildRiskSummary(visits []*domain.Visit) domain.RiskSummary {
	return BuildRiskSummaryWithOptions(visits, DefaultDriftOptions())
}

// BuildRiskSummaryWithOptions is BuildRiskSummary with configurable drift
// thresholds.
func BuildRiskSummaryWithOptions(visits []*domain.Visit, opts DriftOptions) domain.RiskSummary {
	scores := make([]float64, len(visits))
	timeline := make([]domain.VisitTimelineEntry, len(visits))

	for i, v := range visits {
		scores[i] = v.Prediction.RiskScore
		timeline[i] = domain.VisitTimelineEntry{
			VisitNumber: i + 1,
			VisitDate:   v.VisitDate.Format(time.RFC3339),
			Stage:       v.Prediction.StageLabel,
			RiskScore:   v.Prediction.RiskScore,
			Alert:       timelineFlag(v.Prediction.RiskScore),
		}
	}

	return domain.RiskSummary{
		DriftAnalysis: DetectDrift(scores, opts),
		Timeline:      timeline,
	}
}

func timelineFlag(score float64) string {
	switch {
	case score >= timelineHighAlertScore:
		return timelineFlagHighAlert
	case score >= timelineDriftingScore:
		return timelineFlagDrifting
	default:
		return timelineFlagStable
	}
}

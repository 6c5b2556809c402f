// Package report assembles printable clinical summaries for a patient.
package report

import (
	"fmt"
	"time"

	"github.com/pulseguard-risk-server/internal/domain"
	"github.com/pulseguard-risk-server/internal/service"
)

// ClinicalReport is the structured document returned by the report endpoint.
// Clients render it to PDF or print views themselves.
type ClinicalReport struct {
	GeneratedAt     time.Time           `json:"generated_at"`
	Patient         *domain.Patient     `json:"patient"`
	VisitCount      int                 `json:"visit_count"`
	LatestVisit     *domain.Visit       `json:"latest_visit,omitempty"`
	RiskSummary     domain.RiskSummary  `json:"risk_summary"`
	Alerts          []*domain.Alert     `json:"alerts,omitempty"`
	Recommendations []string            `json:"recommendations"`
	Headline        string              `json:"headline"`
}

// Build assembles a report from a patient's stored history. Visits must be
// in chronological order, as returned by the visit repository.
func Build(patient *domain.Patient, visits []*domain.Visit, alerts []*domain.Alert, opts service.DriftOptions) *ClinicalReport {
	summary := service.BuildRiskSummaryWithOptions(visits, opts)

	rep := &ClinicalReport{
		GeneratedAt: time.Now().UTC(),
		Patient:     patient,
		VisitCount:  len(visits),
		RiskSummary: summary,
		Alerts:      alerts,
	}

	if len(visits) == 0 {
		rep.Headline = fmt.Sprintf("No recorded visits for %s yet.", patient.Name)
		rep.Recommendations = service.RecommendationsForStage(domain.StageNormal)
		return rep
	}

	latest := visits[len(visits)-1]
	rep.LatestVisit = latest
	rep.Recommendations = service.RecommendationsForStage(latest.Prediction.Stage)
	rep.Headline = fmt.Sprintf("%s: %s, risk score %.2f%%, trend %s.",
		patient.Name,
		latest.Prediction.StageLabel,
		latest.Prediction.RiskScore,
		summary.DriftAnalysis.Trend,
	)

	return rep
}

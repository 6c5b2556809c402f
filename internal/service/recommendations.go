package service

import (
	"github.com/pulseguard-risk-server/internal/domain"
)

// RecommendationsForStage returns actionable lifestyle recommendations keyed
// by the predicted hypertension stage. Used by report generation and as the
// advisor's rule-based baseline.
func RecommendationsForStage(stage domain.Stage) []string {
	switch stage {
	case domain.StageCrisis:
		return []string{
			"Seek immediate medical attention",
			"Avoid strenuous activity until evaluated by a physician",
			"Do not delay; contact emergency services if symptoms worsen",
		}
	case domain.StageTwo:
		return []string{
			"Schedule an appointment with your doctor soon",
			"Reduce salt intake to less than 5g/day",
			"Avoid alcohol and smoking",
			"Take a 30-minute walk daily",
			"Monitor your blood pressure every day",
			"Manage stress with deep breathing or meditation",
		}
	case domain.StageOne:
		return []string{
			"Eat more fruits, vegetables, and whole grains (DASH diet)",
			"Reduce sodium and processed food",
			"Exercise at least 150 minutes/week",
			"Maintain a healthy weight",
			"Limit alcohol and quit smoking",
			"Follow up with your doctor for regular monitoring",
		}
	default:
		return []string{
			"Maintain your current healthy lifestyle",
			"Keep up regular physical activity",
			"Re-check your blood pressure at your next routine visit",
		}
	}
}

package domain

import (
	"time"
)

// Core Enums and Types

// Stage represents the four ordinal hypertension severity classes
// assigned by the trained classifier.
type Stage int

const (
	StageNormal Stage = iota
	StageOne
	StageTwo
	StageCrisis
)

// StageCount is the size of the classifier's output distribution.
const StageCount = 4

var stageLabels = map[Stage]string{
	StageNormal: "Normal",
	StageOne:    "Stage 1",
	StageTwo:    "Stage 2",
	StageCrisis: "Crisis",
}

var stageColors = map[Stage]string{
	StageNormal: "green",
	StageOne:    "yellow",
	StageTwo:    "orange",
	StageCrisis: "red",
}

// Label returns the human-readable stage label.
func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// Color returns the display color tag for dashboards and reports.
func (s Stage) Color() string {
	if color, ok := stageColors[s]; ok {
		return color
	}
	return "gray"
}

// AlertLevel represents the drift alert severity.
type AlertLevel string

const (
	AlertStable   AlertLevel = "STABLE"
	AlertModerate AlertLevel = "MODERATE"
	AlertHigh     AlertLevel = "HIGH"
)

// Trend represents the direction of a patient's risk trajectory.
type Trend string

const (
	TrendIncreasing Trend = "INCREASING"
	TrendDecreasing Trend = "DECREASING"
	TrendStable     Trend = "STABLE"
)

// Clinical Input Models

// ClinicalObservation is a point-in-time measurement set for one patient
// visit. Fields are range-checked by ValidateObservation before they reach
// the encoder; the core treats a validated observation as immutable.
type ClinicalObservation struct {
	Age              float64 `json:"age"`
	Gender           float64 `json:"gender"`
	BMI              float64 `json:"bmi"`
	SystolicBP       float64 `json:"systolic_bp"`
	DiastolicBP      float64 `json:"diastolic_bp"`
	HeartRate        float64 `json:"heart_rate"`
	Cholesterol      float64 `json:"cholesterol"`
	Glucose          float64 `json:"glucose"`
	Smoking          float64 `json:"smoking"`
	Alcohol          float64 `json:"alcohol"`
	PhysicalActivity float64 `json:"physical_activity"`
	StressLevel      float64 `json:"stress_level"`
}

// Prediction Models

// PredictionResult is the outcome of one classifier invocation. Probabilities
// are percentages keyed by stage label and sum to ~100; RiskScore is the
// combined probability mass of the two most severe stages.
type PredictionResult struct {
	Stage         Stage              `json:"stage"`
	StageLabel    string             `json:"stage_label"`
	RiskScore     float64            `json:"risk_score"`
	Probabilities map[string]float64 `json:"probabilities"`
	Color         string             `json:"color"`
}

// Drift Models

// DriftAnalysis classifies the recent trend of a patient's risk trajectory.
// It is recomputed fresh from the score sequence on every call; DriftValue is
// the endpoint delta within the analyzed window while Slope is the OLS
// rate-of-change, and the two may disagree under a non-monotonic window.
type DriftAnalysis struct {
	AlertLevel     AlertLevel `json:"alert_level"`
	DriftValue     float64    `json:"drift_value"`
	Slope          float64    `json:"slope"`
	Trend          Trend      `json:"trend"`
	Message        string     `json:"message"`
	AnalyzedScores []float64  `json:"analyzed_scores"`
}

// VisitTimelineEntry is one annotated row of a patient's visit history.
type VisitTimelineEntry struct {
	VisitNumber int     `json:"visit_number"`
	VisitDate   string  `json:"visit_date"`
	Stage       string  `json:"stage"`
	RiskScore   float64 `json:"risk_score"`
	Alert       string  `json:"alert"`
}

// RiskSummary combines drift analysis with the annotated visit timeline.
type RiskSummary struct {
	DriftAnalysis DriftAnalysis        `json:"drift_analysis"`
	Timeline      []VisitTimelineEntry `json:"timeline"`
}

// Persistence Models

// Patient represents a stored patient profile. The visit history is owned by
// the persistence layer and fetched separately.
type Patient struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DateOfBirth string    `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	Contact     string    `json:"contact"`
	Address     string    `json:"address,omitempty"`
	DoctorID    string    `json:"doctor_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Visit represents one stored clinical visit. Visits are append-only: a
// visit's risk score is never revised after the fact.
type Visit struct {
	ID          string              `json:"visit_id"`
	PatientID   string              `json:"patient_id"`
	Observation ClinicalObservation `json:"observation"`
	Prediction  PredictionResult    `json:"prediction"`
	VisitDate   time.Time           `json:"visit_date"`
}

// Alert represents a stored drift alert raised for a patient.
type Alert struct {
	ID             string     `json:"id"`
	PatientID      string     `json:"patient_id"`
	VisitID        string     `json:"visit_id,omitempty"`
	Level          AlertLevel `json:"alert_level"`
	Message        string     `json:"message"`
	RiskScore      float64    `json:"risk_score"`
	StageLabel     string     `json:"stage"`
	Acknowledged   bool       `json:"acknowledged"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

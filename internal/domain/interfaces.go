package domain

import (
	"context"
)

// Classifier is the injected scoring capability. It accepts the fixed-order
// 13-field numeric feature vector and is immutable after construction, so it
// is safe for unbounded concurrent reads.
type Classifier interface {
	Predict(features []float64) (Stage, error)
	PredictProba(features []float64) ([]float64, error)
}

// Scaler linearly rescales the designated 5-field subvector in its fixed
// order.
type Scaler interface {
	Transform(values []float64) ([]float64, error)
}

// PatientRepository owns durable patient profiles.
type PatientRepository interface {
	Create(ctx context.Context, patient *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	List(ctx context.Context, limit int) ([]*Patient, error)
	Update(ctx context.Context, patient *Patient) error
	Delete(ctx context.Context, id string) error
}

// VisitRepository owns the append-only visit history of each patient.
// Visits are returned in chronological order; a stored visit is never
// revised.
type VisitRepository interface {
	Append(ctx context.Context, visit *Visit) error
	ListByPatient(ctx context.Context, patientID string) ([]*Visit, error)
}

// AlertRepository owns drift alerts raised for patients.
type AlertRepository interface {
	Save(ctx context.Context, alert *Alert) error
	ListByPatient(ctx context.Context, patientID string, unacknowledgedOnly bool) ([]*Alert, error)
	ListAll(ctx context.Context, unacknowledgedOnly bool) ([]*Alert, error)
	Acknowledge(ctx context.Context, alertID string) error
}

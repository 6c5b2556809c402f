package store

import (
	"context"

	"github.com/pulseguard-risk-server/internal/domain"
)

// The repository views below adapt the single SQLiteStore to the
// per-aggregate repository interfaces the service layer consumes, so
// lite and PostgreSQL deployments are interchangeable behind them.

type patientRepo struct{ s *SQLiteStore }

// Patients returns the patient repository view of the store.
func (s *SQLiteStore) Patients() domain.PatientRepository {
	return patientRepo{s}
}

func (r patientRepo) Create(ctx context.Context, patient *domain.Patient) error {
	return r.s.CreatePatient(ctx, patient)
}

func (r patientRepo) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	return r.s.GetPatient(ctx, id)
}

func (r patientRepo) List(ctx context.Context, limit int) ([]*domain.Patient, error) {
	return r.s.ListPatients(ctx, limit)
}

func (r patientRepo) Update(ctx context.Context, patient *domain.Patient) error {
	return r.s.UpdatePatient(ctx, patient)
}

func (r patientRepo) Delete(ctx context.Context, id string) error {
	return r.s.DeletePatient(ctx, id)
}

type visitRepo struct{ s *SQLiteStore }

// Visits returns the visit repository view of the store.
func (s *SQLiteStore) Visits() domain.VisitRepository {
	return visitRepo{s}
}

func (r visitRepo) Append(ctx context.Context, visit *domain.Visit) error {
	return r.s.AppendVisit(ctx, visit)
}

func (r visitRepo) ListByPatient(ctx context.Context, patientID string) ([]*domain.Visit, error) {
	return r.s.ListVisitsByPatient(ctx, patientID)
}

type alertRepo struct{ s *SQLiteStore }

// Alerts returns the alert repository view of the store.
func (s *SQLiteStore) Alerts() domain.AlertRepository {
	return alertRepo{s}
}

func (r alertRepo) Save(ctx context.Context, alert *domain.Alert) error {
	return r.s.SaveAlert(ctx, alert)
}

func (r alertRepo) ListByPatient(ctx context.Context, patientID string, unacknowledgedOnly bool) ([]*domain.Alert, error) {
	return r.s.ListAlertsByPatient(ctx, patientID, unacknowledgedOnly)
}

func (r alertRepo) ListAll(ctx context.Context, unacknowledgedOnly bool) ([]*domain.Alert, error) {
	return r.s.ListAllAlerts(ctx, unacknowledgedOnly)
}

func (r alertRepo) Acknowledge(ctx context.Context, alertID string) error {
	return r.s.AcknowledgeAlert(ctx, alertID)
}

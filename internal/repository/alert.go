package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/pulseguard-risk-server/internal/domain"
)

// AlertRepository handles drift alert persistence
type AlertRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *pgxpool.Pool, logger *logrus.Logger) *AlertRepository {
	return &AlertRepository{
		db:  db,
		log: logger,
	}
}

// Save inserts a new alert
func (r *AlertRepository) Save(ctx context.Context, alert *domain.Alert) error {
	query := `
		INSERT INTO alerts (
			id, patient_id, visit_id, level, message, risk_score, stage_label,
			acknowledged, created_at
		) VALUES (
			$1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9
		)`

	_, err := r.db.Exec(ctx, query,
		alert.ID,
		alert.PatientID,
		alert.VisitID,
		alert.Level,
		alert.Message,
		alert.RiskScore,
		alert.StageLabel,
		alert.Acknowledged,
		alert.CreatedAt,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"alert_id":   alert.ID,
			"patient_id": alert.PatientID,
			"error":      err,
		}).Error("Failed to save alert")
		return fmt.Errorf("saving alert: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"alert_id":   alert.ID,
		"patient_id": alert.PatientID,
		"level":      alert.Level,
	}).Info("Alert saved successfully")

	return nil
}

// ListByPatient retrieves alerts for one patient, newest first
func (r *AlertRepository) ListByPatient(ctx context.Context, patientID string, unacknowledgedOnly bool) ([]*domain.Alert, error) {
	query := `
		SELECT id, patient_id, COALESCE(visit_id::text, ''), level, message,
			   risk_score, stage_label, acknowledged, created_at, acknowledged_at
		FROM alerts
		WHERE patient_id = $1 AND (NOT $2 OR NOT acknowledged)
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, patientID, unacknowledgedOnly)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"patient_id": patientID,
			"error":      err,
		}).Error("Failed to list alerts for patient")
		return nil, fmt.Errorf("listing alerts for patient: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// ListAll retrieves alerts across all patients, newest first
func (r *AlertRepository) ListAll(ctx context.Context, unacknowledgedOnly bool) ([]*domain.Alert, error) {
	query := `
		SELECT id, patient_id, COALESCE(visit_id::text, ''), level, message,
			   risk_score, stage_label, acknowledged, created_at, acknowledged_at
		FROM alerts
		WHERE NOT $1 OR NOT acknowledged
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, unacknowledgedOnly)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"error": err,
		}).Error("Failed to list alerts")
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// Acknowledge marks an alert as reviewed
func (r *AlertRepository) Acknowledge(ctx context.Context, alertID string) error {
	query := `
		UPDATE alerts
		SET acknowledged = TRUE, acknowledged_at = NOW()
		WHERE id = $1 AND NOT acknowledged`

	result, err := r.db.Exec(ctx, query, alertID)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"alert_id": alertID,
			"error":    err,
		}).Error("Failed to acknowledge alert")
		return fmt.Errorf("acknowledging alert: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("alert not found or already acknowledged: %w", domain.ErrNotFound)
	}

	r.log.WithFields(logrus.Fields{
		"alert_id": alertID,
	}).Info("Alert acknowledged")

	return nil
}

type alertRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanAlerts(rows alertRows) ([]*domain.Alert, error) {
	var alerts []*domain.Alert
	for rows.Next() {
		var alert domain.Alert

		err := rows.Scan(
			&alert.ID,
			&alert.PatientID,
			&alert.VisitID,
			&alert.Level,
			&alert.Message,
			&alert.RiskScore,
			&alert.StageLabel,
			&alert.Acknowledged,
			&alert.CreatedAt,
			&alert.AcknowledgedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning alert row: %w", err)
		}

		alerts = append(alerts, &alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alert rows: %w", err)
	}

	return alerts, nil
}

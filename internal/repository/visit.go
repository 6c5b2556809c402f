package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/pulseguard-risk-server/internal/domain"
)

// VisitRepository handles the append-only visit history. Stored visits are
// never updated: a risk score computed at visit time stays as computed.
type VisitRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewVisitRepository creates a new visit repository
func NewVisitRepository(db *pgxpool.Pool, logger *logrus.Logger) *VisitRepository {
	return &VisitRepository{
		db:  db,
		log: logger,
	}
}

// Append inserts a new visit record
func (r *VisitRepository) Append(ctx context.Context, visit *domain.Visit) error {
	observation, err := json.Marshal(visit.Observation)
	if err != nil {
		return fmt.Errorf("marshaling observation: %w", err)
	}
	prediction, err := json.Marshal(visit.Prediction)
	if err != nil {
		return fmt.Errorf("marshaling prediction: %w", err)
	}

	query := `
		INSERT INTO visits (
			id, patient_id, observation, prediction, risk_score, visit_date
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)`

	_, err = r.db.Exec(ctx, query,
		visit.ID,
		visit.PatientID,
		observation,
		prediction,
		visit.Prediction.RiskScore,
		visit.VisitDate,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"visit_id":   visit.ID,
			"patient_id": visit.PatientID,
			"error":      err,
		}).Error("Failed to append visit")
		return fmt.Errorf("appending visit: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"visit_id":   visit.ID,
		"patient_id": visit.PatientID,
		"risk_score": visit.Prediction.RiskScore,
	}).Info("Visit appended successfully")

	return nil
}

// ListByPatient retrieves a patient's visits in chronological order
func (r *VisitRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.Visit, error) {
	query := `
		SELECT id, patient_id, observation, prediction, visit_date
		FROM visits
		WHERE patient_id = $1
		ORDER BY visit_date ASC`

	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"patient_id": patientID,
			"error":      err,
		}).Error("Failed to list visits")
		return nil, fmt.Errorf("listing visits: %w", err)
	}
	defer rows.Close()

	var visits []*domain.Visit
	for rows.Next() {
		var visit domain.Visit
		var observation, prediction []byte

		err := rows.Scan(
			&visit.ID,
			&visit.PatientID,
			&observation,
			&prediction,
			&visit.VisitDate,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning visit row: %w", err)
		}

		if err := json.Unmarshal(observation, &visit.Observation); err != nil {
			return nil, fmt.Errorf("unmarshaling observation: %w", err)
		}
		if err := json.Unmarshal(prediction, &visit.Prediction); err != nil {
			return nil, fmt.Errorf("unmarshaling prediction: %w", err)
		}

		visits = append(visits, &visit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visit rows: %w", err)
	}

	return visits, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/pulseguard-risk-server/internal/domain"
)

// PatientRepository handles patient profile persistence
type PatientRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *pgxpool.Pool, logger *logrus.Logger) *PatientRepository {
	return &PatientRepository{
		db:  db,
		log: logger,
	}
}

// Create inserts a new patient into the database
func (r *PatientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	query := `
		INSERT INTO patients (
			id, name, date_of_birth, gender, contact, address, doctor_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err := r.db.Exec(ctx, query,
		patient.ID,
		patient.Name,
		patient.DateOfBirth,
		patient.Gender,
		patient.Contact,
		patient.Address,
		patient.DoctorID,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"patient_id": patient.ID,
			"error":      err,
		}).Error("Failed to create patient")
		return fmt.Errorf("creating patient: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"patient_id": patient.ID,
		"name":       patient.Name,
	}).Info("Patient created successfully")

	return nil
}

// GetByID retrieves a patient by ID
func (r *PatientRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	query := `
		SELECT id, name, date_of_birth, gender, contact, address, doctor_id,
			   created_at, updated_at
		FROM patients
		WHERE id = $1`

	var patient domain.Patient

	err := r.db.QueryRow(ctx, query, id).Scan(
		&patient.ID,
		&patient.Name,
		&patient.DateOfBirth,
		&patient.Gender,
		&patient.Contact,
		&patient.Address,
		&patient.DoctorID,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("patient not found: %w", domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"patient_id": id,
			"error":      err,
		}).Error("Failed to get patient by ID")
		return nil, fmt.Errorf("getting patient by ID: %w", err)
	}

	return &patient, nil
}

// List retrieves patients ordered by creation time, newest first
func (r *PatientRepository) List(ctx context.Context, limit int) ([]*domain.Patient, error) {
	query := `
		SELECT id, name, date_of_birth, gender, contact, address, doctor_id,
			   created_at, updated_at
		FROM patients
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"error": err,
		}).Error("Failed to list patients")
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	defer rows.Close()

	var patients []*domain.Patient
	for rows.Next() {
		var patient domain.Patient

		err := rows.Scan(
			&patient.ID,
			&patient.Name,
			&patient.DateOfBirth,
			&patient.Gender,
			&patient.Contact,
			&patient.Address,
			&patient.DoctorID,
			&patient.CreatedAt,
			&patient.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning patient row: %w", err)
		}

		patients = append(patients, &patient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating patient rows: %w", err)
	}

	return patients, nil
}

// Update updates an existing patient profile
func (r *PatientRepository) Update(ctx context.Context, patient *domain.Patient) error {
	query := `
		UPDATE patients
		SET name = $2, date_of_birth = $3, gender = $4, contact = $5,
			address = $6, doctor_id = $7, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		patient.ID,
		patient.Name,
		patient.DateOfBirth,
		patient.Gender,
		patient.Contact,
		patient.Address,
		patient.DoctorID,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"patient_id": patient.ID,
			"error":      err,
		}).Error("Failed to update patient")
		return fmt.Errorf("updating patient: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("patient not found: %w", domain.ErrNotFound)
	}

	r.log.WithFields(logrus.Fields{
		"patient_id": patient.ID,
	}).Info("Patient updated successfully")

	return nil
}

// Delete removes a patient and, via cascade, their visit history and alerts
func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM patients WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"patient_id": id,
			"error":      err,
		}).Error("Failed to delete patient")
		return fmt.Errorf("deleting patient: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("patient not found: %w", domain.ErrNotFound)
	}

	r.log.WithFields(logrus.Fields{
		"patient_id": id,
	}).Info("Patient deleted successfully")

	return nil
}

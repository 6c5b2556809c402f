// Package store provides a standalone SQLite persistence layer for
// single-node deployments that run without PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pulseguard-risk-server/internal/domain"
)

// SQLiteStore implements the patient, visit and alert repositories
// on a single SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens the database file, creating it and the schema
// if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create schema
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		date_of_birth TEXT NOT NULL,
		gender TEXT NOT NULL,
		contact TEXT NOT NULL,
		address TEXT DEFAULT '',
		doctor_id TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS visits (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		observation TEXT NOT NULL,
		prediction TEXT NOT NULL,
		risk_score REAL NOT NULL,
		visit_date DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		visit_id TEXT DEFAULT '',
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		risk_score REAL NOT NULL,
		stage_label TEXT NOT NULL,
		acknowledged INTEGER NOT NULL DEFAULT 0,
		acknowledged_at DATETIME,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_visits_patient ON visits(patient_id, visit_date);
	CREATE INDEX IF NOT EXISTS idx_alerts_patient ON alerts(patient_id, created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Health verifies the database is reachable.
func (s *SQLiteStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Patients

// CreatePatient inserts a new patient profile.
func (s *SQLiteStore) CreatePatient(ctx context.Context, patient *domain.Patient) error {
	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO patients (
			id, name, date_of_birth, gender, contact, address, doctor_id,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		patient.ID,
		patient.Name,
		patient.DateOfBirth,
		patient.Gender,
		patient.Contact,
		patient.Address,
		patient.DoctorID,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert patient: %w", err)
	}
	return nil
}

// GetPatient retrieves a patient by ID.
func (s *SQLiteStore) GetPatient(ctx context.Context, id string) (*domain.Patient, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, date_of_birth, gender, contact, address, doctor_id,
			created_at, updated_at
		FROM patients
		WHERE id = ?
	`, id)

	var p domain.Patient
	err := row.Scan(
		&p.ID, &p.Name, &p.DateOfBirth, &p.Gender, &p.Contact,
		&p.Address, &p.DoctorID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("patient not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan patient: %w", err)
	}
	return &p, nil
}

// ListPatients returns stored patients, newest first.
func (s *SQLiteStore) ListPatients(ctx context.Context, limit int) ([]*domain.Patient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, date_of_birth, gender, contact, address, doctor_id,
			created_at, updated_at
		FROM patients
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	var result []*domain.Patient
	for rows.Next() {
		var p domain.Patient
		err := rows.Scan(
			&p.ID, &p.Name, &p.DateOfBirth, &p.Gender, &p.Contact,
			&p.Address, &p.DoctorID, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient row: %w", err)
		}
		result = append(result, &p)
	}
	return result, rows.Err()
}

// UpdatePatient updates an existing patient profile.
func (s *SQLiteStore) UpdatePatient(ctx context.Context, patient *domain.Patient) error {
	patient.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE patients SET
			name = ?,
			date_of_birth = ?,
			gender = ?,
			contact = ?,
			address = ?,
			doctor_id = ?,
			updated_at = ?
		WHERE id = ?
	`,
		patient.Name,
		patient.DateOfBirth,
		patient.Gender,
		patient.Contact,
		patient.Address,
		patient.DoctorID,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("patient not found: %w", domain.ErrNotFound)
	}
	return nil
}

// DeletePatient removes a patient and their history.
func (s *SQLiteStore) DeletePatient(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM patients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("patient not found: %w", domain.ErrNotFound)
	}
	return nil
}

// Visits

// AppendVisit inserts one visit record. Visits are never updated.
func (s *SQLiteStore) AppendVisit(ctx context.Context, visit *domain.Visit) error {
	observation, err := json.Marshal(visit.Observation)
	if err != nil {
		return fmt.Errorf("failed to marshal observation: %w", err)
	}
	prediction, err := json.Marshal(visit.Prediction)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO visits (
			id, patient_id, observation, prediction, risk_score, visit_date
		) VALUES (?, ?, ?, ?, ?, ?)
	`,
		visit.ID,
		visit.PatientID,
		string(observation),
		string(prediction),
		visit.Prediction.RiskScore,
		visit.VisitDate.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert visit: %w", err)
	}
	return nil
}

// ListVisitsByPatient returns a patient's visits in chronological order.
func (s *SQLiteStore) ListVisitsByPatient(ctx context.Context, patientID string) ([]*domain.Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, observation, prediction, visit_date
		FROM visits
		WHERE patient_id = ?
		ORDER BY visit_date ASC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var result []*domain.Visit
	for rows.Next() {
		var v domain.Visit
		var observation, prediction string

		if err := rows.Scan(&v.ID, &v.PatientID, &observation, &prediction, &v.VisitDate); err != nil {
			return nil, fmt.Errorf("failed to scan visit row: %w", err)
		}
		if err := json.Unmarshal([]byte(observation), &v.Observation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal observation: %w", err)
		}
		if err := json.Unmarshal([]byte(prediction), &v.Prediction); err != nil {
			return nil, fmt.Errorf("failed to unmarshal prediction: %w", err)
		}
		result = append(result, &v)
	}
	return result, rows.Err()
}

// Alerts

// SaveAlert inserts one drift alert.
func (s *SQLiteStore) SaveAlert(ctx context.Context, alert *domain.Alert) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (
			id, patient_id, visit_id, level, message, risk_score, stage_label,
			acknowledged, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		alert.ID,
		alert.PatientID,
		alert.VisitID,
		string(alert.Level),
		alert.Message,
		alert.RiskScore,
		alert.StageLabel,
		alert.Acknowledged,
		alert.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// ListAlertsByPatient returns alerts for one patient, newest first.
func (s *SQLiteStore) ListAlertsByPatient(ctx context.Context, patientID string, unacknowledgedOnly bool) ([]*domain.Alert, error) {
	query := `
		SELECT id, patient_id, visit_id, level, message, risk_score, stage_label,
			acknowledged, created_at, acknowledged_at
		FROM alerts
		WHERE patient_id = ?`
	if unacknowledgedOnly {
		query += " AND acknowledged = 0"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// ListAllAlerts returns alerts across all patients, newest first.
func (s *SQLiteStore) ListAllAlerts(ctx context.Context, unacknowledgedOnly bool) ([]*domain.Alert, error) {
	query := `
		SELECT id, patient_id, visit_id, level, message, risk_score, stage_label,
			acknowledged, created_at, acknowledged_at
		FROM alerts`
	if unacknowledgedOnly {
		query += " WHERE acknowledged = 0"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// AcknowledgeAlert marks an alert as reviewed.
func (s *SQLiteStore) AcknowledgeAlert(ctx context.Context, alertID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE alerts
		SET acknowledged = 1, acknowledged_at = ?
		WHERE id = ? AND acknowledged = 0
	`, time.Now().UTC(), alertID)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alert not found or already acknowledged: %w", domain.ErrNotFound)
	}
	return nil
}

func scanAlerts(rows *sql.Rows) ([]*domain.Alert, error) {
	var result []*domain.Alert
	for rows.Next() {
		var a domain.Alert
		var level string

		err := rows.Scan(
			&a.ID, &a.PatientID, &a.VisitID, &level, &a.Message,
			&a.RiskScore, &a.StageLabel, &a.Acknowledged,
			&a.CreatedAt, &a.AcknowledgedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}

		a.Level = domain.AlertLevel(level)
		result = append(result, &a)
	}
	return result, rows.Err()
}

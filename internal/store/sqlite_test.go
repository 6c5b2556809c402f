package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseguard-risk-server/internal/domain"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := NewSQLiteStore(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	return store
}

func newTestPatient() *domain.Patient {
	return &domain.Patient{
		ID:          uuid.New().String(),
		Name:        "Sam Okafor",
		DateOfBirth: "1968-09-03",
		Gender:      "male",
		Contact:     "+1-555-0121",
		DoctorID:    "dr-118",
	}
}

func newTestVisit(patientID string, riskScore float64, visitDate time.Time) *domain.Visit {
	return &domain.Visit{
		ID:        uuid.New().String(),
		PatientID: patientID,
		Observation: domain.ClinicalObservation{
			Age:              58,
			BMI:              29.1,
			SystolicBP:       152,
			DiastolicBP:      96,
			HeartRate:        88,
			Cholesterol:      230,
			Glucose:          120,
			Smoking:          1,
			PhysicalActivity: 2,
			StressLevel:      8,
		},
		Prediction: domain.PredictionResult{
			Stage:      domain.StageTwo,
			StageLabel: domain.StageTwo.Label(),
			RiskScore:  riskScore,
			Probabilities: map[string]float64{
				"Normal": 5, "Stage 1": 20, "Stage 2": 60, "Crisis": 15,
			},
			Color: domain.StageTwo.Color(),
		},
		VisitDate: visitDate,
	}
}

func TestNewSQLiteStore(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)

	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	// Verify database file was created
	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "Database file should exist")

	assert.NoError(t, store.Health(context.Background()))
}

func TestSQLiteStore_PatientLifecycle(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	patients := store.Patients()

	patient := newTestPatient()
	require.NoError(t, patients.Create(ctx, patient))
	assert.False(t, patient.CreatedAt.IsZero(), "CreatedAt should be set")

	retrieved, err := patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, patient.Name, retrieved.Name)
	assert.Equal(t, patient.DoctorID, retrieved.DoctorID)

	patient.Contact = "+1-555-0888"
	require.NoError(t, patients.Update(ctx, patient))

	updated, err := patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, "+1-555-0888", updated.Contact)

	require.NoError(t, patients.Delete(ctx, patient.ID))

	_, err = patients.GetByID(ctx, patient.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSQLiteStore_PatientNotFound(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	patients := store.Patients()

	_, err := patients.GetByID(ctx, uuid.New().String())
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = patients.Update(ctx, newTestPatient())
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = patients.Delete(ctx, uuid.New().String())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSQLiteStore_VisitHistoryOrder(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	patient := newTestPatient()
	require.NoError(t, store.Patients().Create(ctx, patient))

	visits := store.Visits()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	scores := []float64{38.5, 52.75, 71}

	// Insert out of chronological order
	for _, i := range []int{2, 0, 1} {
		v := newTestVisit(patient.ID, scores[i], base.AddDate(0, 0, i*30))
		require.NoError(t, visits.Append(ctx, v))
	}

	history, err := visits.ListByPatient(ctx, patient.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Returned oldest first regardless of insertion order
	for i, score := range scores {
		assert.Equal(t, score, history[i].Prediction.RiskScore)
	}

	// Observation and prediction survive the JSON round trip
	assert.Equal(t, 152.0, history[0].Observation.SystolicBP)
	assert.Equal(t, domain.StageTwo, history[0].Prediction.Stage)
	assert.Equal(t, "Stage 2", history[0].Prediction.StageLabel)
}

func TestSQLiteStore_AlertLifecycle(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	patient := newTestPatient()
	require.NoError(t, store.Patients().Create(ctx, patient))

	alerts := store.Alerts()
	alert := &domain.Alert{
		ID:         uuid.New().String(),
		PatientID:  patient.ID,
		Level:      domain.AlertHigh,
		Message:    "Risk drift detected",
		RiskScore:  74,
		StageLabel: "Stage 2",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, alerts.Save(ctx, alert))

	pending, err := alerts.ListByPatient(ctx, patient.ID, true)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.AlertHigh, pending[0].Level)

	require.NoError(t, alerts.Acknowledge(ctx, alert.ID))

	pending, err = alerts.ListByPatient(ctx, patient.ID, true)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := alerts.ListAll(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Acknowledged)
	assert.NotNil(t, all[0].AcknowledgedAt)

	err = alerts.Acknowledge(ctx, alert.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSQLiteStore_DeletePatientCascades(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	patient := newTestPatient()
	require.NoError(t, store.Patients().Create(ctx, patient))

	require.NoError(t, store.Visits().Append(ctx, newTestVisit(patient.ID, 44, time.Now().UTC())))
	require.NoError(t, store.Alerts().Save(ctx, &domain.Alert{
		ID:         uuid.New().String(),
		PatientID:  patient.ID,
		Level:      domain.AlertModerate,
		Message:    "Risk drift detected",
		RiskScore:  58,
		StageLabel: "Stage 1",
		CreatedAt:  time.Now().UTC(),
	}))

	require.NoError(t, store.Patients().Delete(ctx, patient.ID))

	history, err := store.Visits().ListByPatient(ctx, patient.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	alerts, err := store.Alerts().ListByPatient(ctx, patient.ID, false)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

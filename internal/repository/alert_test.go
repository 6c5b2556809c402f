package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pulseguard-risk-server/internal/domain"
)

func testAlert(patientID string, level domain.AlertLevel) *domain.Alert {
	return &domain.Alert{
		ID:         uuid.New().String(),
		PatientID:  patientID,
		Level:      level,
		Message:    "Risk drift detected",
		RiskScore:  72.5,
		StageLabel: "Stage 2",
		CreatedAt:  time.Now().UTC(),
	}
}

func TestAlertRepository_SaveAndList(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	patients := NewPatientRepository(db.Pool, logger)
	alerts := NewAlertRepository(db.Pool, logger)

	ctx := context.Background()
	patient := testPatient()
	if err := patients.Create(ctx, patient); err != nil {
		t.Fatalf("Failed to create patient: %v", err)
	}

	alert := testAlert(patient.ID, domain.AlertHigh)
	if err := alerts.Save(ctx, alert); err != nil {
		t.Fatalf("Failed to save alert: %v", err)
	}

	listed, err := alerts.ListByPatient(ctx, patient.ID, false)
	if err != nil {
		t.Fatalf("Failed to list alerts: %v", err)
	}

	if len(listed) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(listed))
	}
	if listed[0].Level != domain.AlertHigh {
		t.Errorf("Expected level HIGH, got %s", listed[0].Level)
	}
	if listed[0].Acknowledged {
		t.Error("New alert should not be acknowledged")
	}
}

func TestAlertRepository_Acknowledge(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	patients := NewPatientRepository(db.Pool, logger)
	alerts := NewAlertRepository(db.Pool, logger)

	ctx := context.Background()
	patient := testPatient()
	if err := patients.Create(ctx, patient); err != nil {
		t.Fatalf("Failed to create patient: %v", err)
	}

	alert := testAlert(patient.ID, domain.AlertModerate)
	if err := alerts.Save(ctx, alert); err != nil {
		t.Fatalf("Failed to save alert: %v", err)
	}

	if err := alerts.Acknowledge(ctx, alert.ID); err != nil {
		t.Fatalf("Failed to acknowledge alert: %v", err)
	}

	// Acknowledged alerts drop out of the unacknowledged view
	pending, err := alerts.ListByPatient(ctx, patient.ID, true)
	if err != nil {
		t.Fatalf("Failed to list pending alerts: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Expected no pending alerts, got %d", len(pending))
	}

	all, err := alerts.ListByPatient(ctx, patient.ID, false)
	if err != nil {
		t.Fatalf("Failed to list alerts: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(all))
	}
	if !all[0].Acknowledged || all[0].AcknowledgedAt == nil {
		t.Error("Expected alert to carry acknowledgment state")
	}

	// Acknowledging twice fails
	err = alerts.Acknowledge(ctx, alert.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double acknowledge, got %v", err)
	}
}

func TestAlertRepository_ListAll(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	patients := NewPatientRepository(db.Pool, logger)
	alerts := NewAlertRepository(db.Pool, logger)

	ctx := context.Background()
	first := testPatient()
	second := testPatient()
	for _, p := range []*domain.Patient{first, second} {
		if err := patients.Create(ctx, p); err != nil {
			t.Fatalf("Failed to create patient: %v", err)
		}
	}

	if err := alerts.Save(ctx, testAlert(first.ID, domain.AlertHigh)); err != nil {
		t.Fatalf("Failed to save alert: %v", err)
	}
	if err := alerts.Save(ctx, testAlert(second.ID, domain.AlertModerate)); err != nil {
		t.Fatalf("Failed to save alert: %v", err)
	}

	all, err := alerts.ListAll(ctx, false)
	if err != nil {
		t.Fatalf("Failed to list all alerts: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 alerts, got %d", len(all))
	}
}

package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pulseguard-risk-server/internal/database"
	"github.com/pulseguard-risk-server/internal/domain"
)

// generateTestPassword creates a secure random password for test databases
func generateTestPassword() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a default test password if random generation fails
		return "test_fallback_password_123"
	}
	return "test_" + hex.EncodeToString(bytes)
}

func setupTestDB(t *testing.T) (*database.DB, func()) {
	ctx := context.Background()

	// Generate secure random password for test database
	testPassword := generateTestPassword()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	// Get connection details
	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	// Create database connection
	cfg := &domain.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		Database:        "testdb",
		Username:        "testuser",
		Password:        testPassword,
		MaxConns:        10,
		MinConns:        2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
		SSLMode:         "disable",
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := database.NewConnection(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Failed to create database connection: %v", err)
	}

	// Run migrations
	databaseURL := "postgres://testuser:" + testPassword + "@" + host + ":" + port.Port() + "/testdb?sslmode=disable"
	migrationRunner, err := database.NewMigrationRunner(databaseURL, "../../migrations", logger)
	if err != nil {
		t.Fatalf("Failed to create migration runner: %v", err)
	}

	if err := migrationRunner.Up(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		migrationRunner.Close()
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}

	return db, cleanup
}

func testPatient() *domain.Patient {
	return &domain.Patient{
		ID:          uuid.New().String(),
		Name:        "Jordan Rivera",
		DateOfBirth: "1975-04-12",
		Gender:      "female",
		Contact:     "+1-555-0147",
		Address:     "12 Elm Street",
		DoctorID:    "dr-210",
	}
}

func TestPatientRepository_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewPatientRepository(db.Pool, logger)

	patient := testPatient()

	ctx := context.Background()
	if err := repo.Create(ctx, patient); err != nil {
		t.Fatalf("Failed to create patient: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, patient.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve patient: %v", err)
	}

	if retrieved.Name != patient.Name {
		t.Errorf("Expected name %s, got %s", patient.Name, retrieved.Name)
	}
	if retrieved.DoctorID != patient.DoctorID {
		t.Errorf("Expected doctor ID %s, got %s", patient.DoctorID, retrieved.DoctorID)
	}
}

func TestPatientRepository_GetByID_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewPatientRepository(db.Pool, logger)

	_, err := repo.GetByID(context.Background(), uuid.New().String())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPatientRepository_Update(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewPatientRepository(db.Pool, logger)

	patient := testPatient()

	ctx := context.Background()
	if err := repo.Create(ctx, patient); err != nil {
		t.Fatalf("Failed to create patient: %v", err)
	}

	patient.Contact = "+1-555-0199"
	if err := repo.Update(ctx, patient); err != nil {
		t.Fatalf("Failed to update patient: %v", err)
	}

	updated, err := repo.GetByID(ctx, patient.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve updated patient: %v", err)
	}

	if updated.Contact != "+1-555-0199" {
		t.Errorf("Expected contact +1-555-0199, got %s", updated.Contact)
	}
}

func TestPatientRepository_Delete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewPatientRepository(db.Pool, logger)

	patient := testPatient()

	ctx := context.Background()
	if err := repo.Create(ctx, patient); err != nil {
		t.Fatalf("Failed to create patient: %v", err)
	}

	if err := repo.Delete(ctx, patient.ID); err != nil {
		t.Fatalf("Failed to delete patient: %v", err)
	}

	_, err := repo.GetByID(ctx, patient.ID)
	if err == nil {
		t.Error("Expected error when getting deleted patient, got nil")
	}
}

func TestPatientRepository_List(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewPatientRepository(db.Pool, logger)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		p := testPatient()
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Failed to create patient: %v", err)
		}
	}

	patients, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list patients: %v", err)
	}

	if len(patients) != 3 {
		t.Errorf("Expected 3 patients, got %d", len(patients))
	}
}

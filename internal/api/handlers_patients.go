package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pulseguard-risk-server/internal/domain"
)

const defaultPatientListLimit = 100

type patientRequest struct {
	Name        string `json:"name" binding:"required"`
	DateOfBirth string `json:"date_of_birth" binding:"required"`
	Gender      string `json:"gender" binding:"required"`
	Contact     string `json:"contact"`
	Address     string `json:"address"`
	DoctorID    string `json:"doctor_id"`
}

func (s *Server) handleCreatePatient(c *gin.Context) {
	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body", err.Error())
		return
	}

	patient := &domain.Patient{
		ID:          uuid.New().String(),
		Name:        req.Name,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Contact:     req.Contact,
		Address:     req.Address,
		DoctorID:    req.DoctorID,
	}

	if err := s.deps.Patients.Create(c.Request.Context(), patient); err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to create patient", err.Error())
		return
	}

	c.JSON(http.StatusCreated, patient)
}

func (s *Server) handleGetPatient(c *gin.Context) {
	patient, err := s.deps.Patients.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "patient not found", "")
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to load patient", err.Error())
		return
	}

	c.JSON(http.StatusOK, patient)
}

func (s *Server) handleListPatients(c *gin.Context) {
	limit := defaultPatientListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.respondError(c, http.StatusBadRequest, domain.ErrCodeValidation, "limit must be a positive integer", "")
			return
		}
		limit = parsed
	}

	patients, err := s.deps.Patients.List(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to list patients", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patients": patients,
		"count":    len(patients),
	})
}

func (s *Server) handleUpdatePatient(c *gin.Context) {
	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body", err.Error())
		return
	}

	patient := &domain.Patient{
		ID:          c.Param("id"),
		Name:        req.Name,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Contact:     req.Contact,
		Address:     req.Address,
		DoctorID:    req.DoctorID,
	}

	if err := s.deps.Patients.Update(c.Request.Context(), patient); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "patient not found", "")
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to update patient", err.Error())
		return
	}

	c.JSON(http.StatusOK, patient)
}

func (s *Server) handleDeletePatient(c *gin.Context) {
	patientID := c.Param("id")

	if err := s.deps.Patients.Delete(c.Request.Context(), patientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "patient not found", "")
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to delete patient", err.Error())
		return
	}

	s.invalidateSummary(c, patientID)

	c.JSON(http.StatusOK, gin.H{"deleted": patientID})
}

func (s *Server) handleListPatientVisits(c *gin.Context) {
	patientID := c.Param("id")
	ctx := c.Request.Context()

	if _, err := s.deps.Patients.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "patient not found", "")
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to load patient", err.Error())
		return
	}

	visits, err := s.deps.Visits.ListByPatient(ctx, patientID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to load visit history", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patient_id": patientID,
		"visits":     visits,
		"count":      len(visits),
	})
}

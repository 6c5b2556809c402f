package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulseguard-risk-server/internal/domain"
	"github.com/pulseguard-risk-server/internal/report"
)

func (s *Server) handleListAlerts(c *gin.Context) {
	unacknowledgedOnly := c.Query("unacknowledged") == "true"

	alerts, err := s.deps.Alerts.ListAll(c.Request.Context(), unacknowledgedOnly)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to list alerts", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

func (s *Server) handleListPatientAlerts(c *gin.Context) {
	patientID := c.Param("id")
	unacknowledgedOnly := c.Query("unacknowledged") == "true"

	alerts, err := s.deps.Alerts.ListByPatient(c.Request.Context(), patientID, unacknowledgedOnly)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to list alerts", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patient_id": patientID,
		"alerts":     alerts,
		"count":      len(alerts),
	})
}

func (s *Server) handleAcknowledgeAlert(c *gin.Context) {
	alertID := c.Param("alertID")

	if err := s.deps.Alerts.Acknowledge(c.Request.Context(), alertID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "alert not found or already acknowledged", "")
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to acknowledge alert", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"acknowledged": alertID})
}

type reportRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
}

// handleReport assembles the structured clinical report for a patient.
func (s *Server) handleReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body", err.Error())
		return
	}

	ctx := c.Request.Context()
	patient, err := s.deps.Patients.GetByID(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "patient not found", "")
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to load patient", err.Error())
		return
	}

	visits, err := s.deps.Visits.ListByPatient(ctx, patient.ID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to load visit history", err.Error())
		return
	}

	alerts, err := s.deps.Alerts.ListByPatient(ctx, patient.ID, false)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to load alerts", err.Error())
		return
	}

	c.JSON(http.StatusOK, report.Build(patient, visits, alerts, s.deps.DriftOpts))
}

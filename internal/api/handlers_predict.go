package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pulseguard-risk-server/internal/domain"
	"github.com/pulseguard-risk-server/internal/service"
)

// handlePredict scores one observation without touching patient history.
func (s *Server) handlePredict(c *gin.Context) {
	var obs domain.ClinicalObservation
	if err := c.ShouldBindJSON(&obs); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body", err.Error())
		return
	}

	result, err := s.predict(c, obs)
	if err != nil {
		return
	}

	c.JSON(http.StatusOK, result)
}

type visitRequest struct {
	PatientID   string                     `json:"patient_id" binding:"required"`
	Observation domain.ClinicalObservation `json:"observation"`
	VisitDate   *time.Time                 `json:"visit_date"`
}

// handlePredictVisit scores an observation, appends it to the patient's
// history, reruns drift detection and persists any resulting alert.
func (s *Server) handlePredictVisit(c *gin.Context) {
	var req visitRequest
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

	result, err := s.predict(c, req.Observation)
	if err != nil {
		return
	}

	visitDate := time.Now().UTC()
	if req.VisitDate != nil {
		visitDate = req.VisitDate.UTC()
	}

	visit := &domain.Visit{
		ID:          uuid.New().String(),
		PatientID:   patient.ID,
		Observation: req.Observation,
		Prediction:  *result,
		VisitDate:   visitDate,
	}
	if err := s.deps.Visits.Append(ctx, visit); err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to store visit", err.Error())
		return
	}

	history, err := s.deps.Visits.ListByPatient(ctx, patient.ID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to load visit history", err.Error())
		return
	}

	summary := service.BuildRiskSummaryWithOptions(history, s.deps.DriftOpts)
	drift := summary.DriftAnalysis

	var saved *domain.Alert
	if drift.AlertLevel != domain.AlertStable {
		saved = &domain.Alert{
			ID:         uuid.New().String(),
			PatientID:  patient.ID,
			VisitID:    visit.ID,
			Level:      drift.AlertLevel,
			Message:    drift.Message,
			RiskScore:  result.RiskScore,
			StageLabel: result.StageLabel,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.deps.Alerts.Save(ctx, saved); err != nil {
			// The visit is already stored; log and keep serving.
			s.deps.Log.WithFields(logrus.Fields{
				"patient_id": patient.ID,
				"error":      err,
			}).Error("Failed to persist drift alert")
			saved = nil
		} else if s.deps.Hub != nil {
			s.deps.Hub.BroadcastAlert(saved)
		}
	}

	s.invalidateSummary(c, patient.ID)

	c.JSON(http.StatusCreated, gin.H{
		"visit_id":       visit.ID,
		"prediction":     result,
		"drift_analysis": drift,
		"alert":          saved,
	})
}

// handleRiskSummary serves the full drift summary for one patient.
func (s *Server) handleRiskSummary(c *gin.Context) {
	patientID := c.Param("patientID")
	ctx := c.Request.Context()

	if s.deps.Summaries != nil {
		cached, err := s.deps.Summaries.Get(ctx, patientID)
		if err != nil {
			s.deps.Log.WithError(err).Warn("Summary cache read failed")
		} else if cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	if _, err := s.deps.Patients.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "patient not found", "")
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to load patient", err.Error())
		return
	}

	history, err := s.deps.Visits.ListByPatient(ctx, patientID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to load visit history", err.Error())
		return
	}

	summary := service.BuildRiskSummaryWithOptions(history, s.deps.DriftOpts)

	if s.deps.Summaries != nil {
		if err := s.deps.Summaries.Set(ctx, patientID, &summary); err != nil {
			s.deps.Log.WithError(err).Warn("Summary cache write failed")
		}
	}

	c.JSON(http.StatusOK, summary)
}

type adviceRequest struct {
	Question    string                      `json:"question" binding:"required"`
	Observation *domain.ClinicalObservation `json:"observation,omitempty"`
	PatientID   string                      `json:"patient_id,omitempty"`
}

// handleAdvice answers a lifestyle question against either a provided
// observation or the patient's most recent visit.
func (s *Server) handleAdvice(c *gin.Context) {
	var req adviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body", err.Error())
		return
	}

	ctx := c.Request.Context()
	var prediction *domain.PredictionResult

	switch {
	case req.Observation != nil:
		result, err := s.predict(c, *req.Observation)
		if err != nil {
			return
		}
		prediction = result

	case req.PatientID != "":
		history, err := s.deps.Visits.ListByPatient(ctx, req.PatientID)
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to load visit history", err.Error())
			return
		}
		if len(history) == 0 {
			s.respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "no visits recorded for patient", "")
			return
		}
		prediction = &history[len(history)-1].Prediction

	default:
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeValidation, "observation or patient_id is required", "")
		return
	}

	c.JSON(http.StatusOK, s.deps.Advisor.Advise(ctx, req.Question, prediction))
}

// predict validates and scores an observation, writing the error response
// itself when something fails. Callers stop on non-nil error.
func (s *Server) predict(c *gin.Context, obs domain.ClinicalObservation) (*domain.PredictionResult, error) {
	if err := domain.ValidateObservation(obs); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			s.respondError(c, http.StatusBadRequest, domain.ErrCodeValidation, ve.Error(), "")
			return nil, err
		}
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeValidation, err.Error(), "")
		return nil, err
	}

	result, err := s.deps.Predictor.Predict(obs)
	if err != nil {
		if errors.Is(err, domain.ErrModelUnavailable) {
			s.respondError(c, http.StatusServiceUnavailable, domain.ErrCodeModelUnavailable, "prediction model unavailable", "")
			return nil, err
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeInternal, "prediction failed", err.Error())
		return nil, err
	}

	return result, nil
}

// invalidateSummary drops the cached risk summary after history changes.
func (s *Server) invalidateSummary(c *gin.Context, patientID string) {
	if s.deps.Summaries == nil {
		return
	}
	if err := s.deps.Summaries.Invalidate(c.Request.Context(), patientID); err != nil {
		s.deps.Log.WithError(err).Warn("Summary cache invalidation failed")
	}
}

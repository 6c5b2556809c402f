// Package api exposes the risk inference service over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pulseguard-risk-server/internal/assistant"
	"github.com/pulseguard-risk-server/internal/auth"
	"github.com/pulseguard-risk-server/internal/cache"
	"github.com/pulseguard-risk-server/internal/domain"
	"github.com/pulseguard-risk-server/internal/middleware"
	"github.com/pulseguard-risk-server/internal/realtime"
	"github.com/pulseguard-risk-server/internal/service"
)

// Dependencies carries everything the HTTP layer needs. Summaries and
// RateLimiter are optional.
type Dependencies struct {
	Log         *logrus.Logger
	Predictor   *service.RiskPredictor
	Patients    domain.PatientRepository
	Visits      domain.VisitRepository
	Alerts      domain.AlertRepository
	Auth        *auth.Service
	Advisor     *assistant.Advisor
	Hub         *realtime.Hub
	Summaries   *cache.SummaryCache
	DriftOpts   service.DriftOptions
	RateLimiter *middleware.RateLimiter
	LogLevel    string
}

// Server represents the HTTP server
type Server struct {
	deps   Dependencies
	router *gin.Engine
	server *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(deps Dependencies) *Server {
	// Set Gin mode based on environment
	if deps.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(corsMiddleware())
	if deps.RateLimiter != nil {
		router.Use(deps.RateLimiter.Handler())
	}

	server := &Server{
		deps:   deps,
		router: router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context, cfg *domain.ServerConfig) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.deps.Log.WithField("addr", addr).Info("HTTP server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("starting server: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")

	// Public routes
	v1.POST("/predict", s.handlePredict)
	v1.POST("/advice", s.handleAdvice)
	v1.POST("/auth/register", s.handleRegister)
	v1.POST("/auth/login", s.handleLogin)

	// Dashboard clients authenticate the stream with a token query
	// parameter since browsers cannot set headers on WebSocket upgrades.
	v1.GET("/alerts/stream", s.handleAlertStream)

	// Protected routes
	guard := auth.Middleware(s.deps.Auth.Tokens())
	protected := v1.Group("", guard)
	{
		protected.GET("/auth/me", s.handleMe)

		protected.POST("/predict/visit", s.handlePredictVisit)
		protected.GET("/predict/risk/:patientID", s.handleRiskSummary)

		protected.POST("/patients", s.handleCreatePatient)
		protected.GET("/patients", s.handleListPatients)
		protected.GET("/patients/:id", s.handleGetPatient)
		protected.PUT("/patients/:id", s.handleUpdatePatient)
		protected.DELETE("/patients/:id", s.handleDeletePatient)
		protected.GET("/patients/:id/visits", s.handleListPatientVisits)
		protected.GET("/patients/:id/alerts", s.handleListPatientAlerts)

		protected.GET("/alerts", s.handleListAlerts)
		protected.POST("/alerts/:alertID/acknowledge", s.handleAcknowledgeAlert)

		protected.POST("/reports", s.handleReport)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	})
}

// handleAlertStream upgrades the connection and joins the alert feed.
func (s *Server) handleAlertStream(c *gin.Context) {
	if token := c.Query("token"); token != "" {
		if _, err := s.deps.Auth.Tokens().Verify(token); err != nil {
			s.respondError(c, http.StatusUnauthorized, domain.ErrCodeAuthentication, "invalid or expired token", "")
			return
		}
	}
	s.deps.Hub.ServeHTTP(c.Writer, c.Request)
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// respondError writes a standardized error payload.
func (s *Server) respondError(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": domain.NewAPIError(code, message, details, c.GetString("correlation_id")),
	})
}

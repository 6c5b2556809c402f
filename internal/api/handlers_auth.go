package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulseguard-risk-server/internal/auth"
	"github.com/pulseguard-risk-server/internal/domain"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeValidation, "username and password are required", err.Error())
		return
	}

	user, err := s.deps.Auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			s.respondError(c, http.StatusConflict, domain.ErrCodeValidation, "username already registered", "")
			return
		}
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeValidation, err.Error(), "")
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeValidation, "username and password are required", err.Error())
		return
	}

	token, user, err := s.deps.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.respondError(c, http.StatusUnauthorized, domain.ErrCodeAuthentication, "invalid username or password", "")
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeInternal, "login failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(s.deps.Auth.Tokens().TTL().Seconds()),
		"user":       user,
	})
}

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id":  c.GetString(auth.ContextUserID),
		"username": c.GetString(auth.ContextUsername),
		"role":     c.GetString(auth.ContextRole),
	})
}

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hanapbuhay/backend/internal/auth"
	apierrors "github.com/hanapbuhay/backend/internal/errors"
	"github.com/hanapbuhay/backend/internal/logging"
)

// handleRegister handles account registration
func (s *APIServer) handleRegister(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrEmailAlreadyExists) {
			respondError(c, apierrors.NewConflictError("Email already registered"))
		} else {
			logging.LogError(err, c.GetString("request_id"), "auth", "register")
			respondError(c, apierrors.ErrPersistenceError)
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// handleLogin handles account login
func (s *APIServer) handleLogin(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrAccountDeactivated):
			// Deactivated accounts get the same answer as bad credentials
			logging.LogSecurityEvent("login_failed", "", c.ClientIP(), req.Email)
			respondError(c, apierrors.ErrInvalidCredentialsError)
		default:
			logging.LogError(err, c.GetString("request_id"), "auth", "login")
			respondError(c, apierrors.ErrPersistenceError)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleRefresh handles token refresh
func (s *APIServer) handleRefresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	tokens, err := s.authService.RefreshTokens(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			respondError(c, apierrors.ErrTokenExpiredError)
		case errors.Is(err, auth.ErrInvalidToken),
			errors.Is(err, auth.ErrAccountNotFound),
			errors.Is(err, auth.ErrAccountDeactivated):
			respondError(c, apierrors.ErrUnauthenticatedError)
		default:
			logging.LogError(err, c.GetString("request_id"), "auth", "refresh")
			respondError(c, apierrors.ErrPersistenceError)
		}
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// handleCreateClientProfile completes registration for a client account
func (s *APIServer) handleCreateClientProfile(c *gin.Context) {
	var req auth.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	profile, err := s.authService.CreateClientProfile(c.Request.Context(), &req)
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// handleCreateWorkerProfile completes registration for a worker account
func (s *APIServer) handleCreateWorkerProfile(c *gin.Context) {
	var req auth.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	profile, err := s.authService.CreateWorkerProfile(c.Request.Context(), &req)
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

func respondProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		respondError(c, apierrors.ErrTokenExpiredError)
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrAccountNotFound):
		respondError(c, apierrors.ErrUnauthenticatedError)
	case errors.Is(err, auth.ErrRoleMismatch):
		respondError(c, apierrors.NewInvalidRequestError("Continuation token was issued for a different role"))
	case errors.Is(err, auth.ErrProfileExists):
		respondError(c, apierrors.NewConflictError("Profile already exists for this account"))
	default:
		logging.LogError(err, c.GetString("request_id"), "auth", "create_profile")
		respondError(c, apierrors.ErrPersistenceError)
	}
}

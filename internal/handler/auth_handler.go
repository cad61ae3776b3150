package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/notabase/internal/service"
	"github.com/suteetoe/notabase/pkg/logger"
	"github.com/suteetoe/notabase/prometheus"
	"go.uber.org/zap"
)

// AuthHandler exposes signup and login.
type AuthHandler struct {
	identity *service.IdentityService
}

// NewAuthHandler wires the auth handler.
func NewAuthHandler(identity *service.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// Signup registers a new user and implicitly creates their workspace.
func (h *AuthHandler) Signup(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SignupCounter.Inc()

	// Parse request
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Workspace string `json:"workspace,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse signup request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	token, user, err := h.identity.Signup(c.Request().Context(), req.Username, req.Email, req.Password, req.Workspace)
	if err != nil {
		log.Error("Signup failed", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError("signup_failed")
		return writeError(c, err)
	}

	log.Info("User registered",
		zap.String("email", user.Email),
		zap.Uint("tenant_id", user.TenantID))

	return c.JSON(http.StatusCreated, echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":        user.ID,
			"email":     user.Email,
			"username":  user.Username,
			"tenant_id": user.TenantID,
			"role":      user.Role,
		},
	})
}

// Login verifies credentials and issues a token.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	// Parse request
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	token, user, err := h.identity.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("Login failed", zap.String("email", req.Email))
		prometheus.RecordAuthError("login_failure")
		return writeError(c, err)
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.Uint("tenant_id", user.TenantID),
		zap.String("role", string(user.Role)))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":        user.ID,
			"email":     user.Email,
			"username":  user.Username,
			"tenant_id": user.TenantID,
			"role":      user.Role,
		},
	})
}

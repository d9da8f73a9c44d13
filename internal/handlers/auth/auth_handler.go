// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"

	"agentmarket-service/internal/domain/user"
	"agentmarket-service/internal/middleware"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/pkg/response"
	service "agentmarket-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrConflict) {
			response.Conflict(c, "email already registered", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to register", err)
		return
	}

	response.Success(c, http.StatusCreated, "registered successfully", result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	response.Success(c, http.StatusOK, "logged in successfully", result)
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	u, err := h.authService.GetMe(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", u)
}

// GetRole serves the cached role hint used by clients to shape navigation.
func (h *AuthHandler) GetRole(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	role, err := h.authService.RoleHint(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	response.Success(c, http.StatusOK, "role retrieved", gin.H{"role": role})
}

// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"errors"
	"net/http"

	domain "agentmarket-service/internal/domain/subscription"
	"agentmarket-service/internal/middleware"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/pkg/response"
	service "agentmarket-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SubscriptionHandler struct {
	subService *service.SubscriptionService
	logger     *zap.Logger
}

func NewSubscriptionHandler(subService *service.SubscriptionService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subService: subService,
		logger:     logger,
	}
}

// Get returns the authenticated user's subscription record.
func (h *SubscriptionHandler) Get(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	sub, err := h.subService.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "no subscription on record")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to get subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription retrieved", sub)
}

// Access reports whether the authenticated user currently has platform access.
func (h *SubscriptionHandler) Access(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	hasAccess := h.subService.HasActiveAccess(c.Request.Context(), userID)

	response.Success(c, http.StatusOK, "access checked", gin.H{"has_access": hasAccess})
}

// GrantLegacyGrace places a pre-billing user into the legacy grace window.
// Admin only. Granting twice is a no-op.
func (h *SubscriptionHandler) GrantLegacyGrace(c *gin.Context) {
	var req domain.GrantLegacyGraceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.subService.CreateLegacyGrace(c.Request.Context(), req.UserID, req.GraceDays); err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to grant grace period", err)
		return
	}

	response.Success(c, http.StatusOK, "grace period granted", nil)
}

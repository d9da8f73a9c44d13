// internal/handlers/notification/notification_handler.go
package notification

import (
	"errors"
	"net/http"
	"strconv"

	"agentmarket-service/internal/middleware"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/pkg/response"
	service "agentmarket-service/internal/service/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notifService *service.NotificationService
	logger       *zap.Logger
}

func NewNotificationHandler(notifService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifService: notifService,
		logger:       logger,
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	notifications, err := h.notifService.List(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list notifications", err)
		return
	}

	response.Success(c, http.StatusOK, "notifications retrieved", notifications)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid notification ID", err)
		return
	}

	if err := h.notifService.MarkRead(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "notification not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to mark notification read", err)
		return
	}

	response.Success(c, http.StatusOK, "notification marked read", nil)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	count, err := h.notifService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to count notifications", err)
		return
	}

	response.Success(c, http.StatusOK, "unread count retrieved", gin.H{"unread": count})
}

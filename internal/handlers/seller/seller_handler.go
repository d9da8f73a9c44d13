// internal/handlers/seller/seller_handler.go
package seller

import (
	"errors"
	"net/http"
	"strconv"

	domain "agentmarket-service/internal/domain/seller"
	"agentmarket-service/internal/middleware"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/pkg/response"
	service "agentmarket-service/internal/service/seller"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SellerHandler serves seller applications and the admin review queue.
type SellerHandler struct {
	sellerService *service.SellerService
	logger        *zap.Logger
}

func NewSellerHandler(sellerService *service.SellerService, logger *zap.Logger) *SellerHandler {
	return &SellerHandler{
		sellerService: sellerService,
		logger:        logger,
	}
}

// Apply submits a seller application for the authenticated user.
func (h *SellerHandler) Apply(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req domain.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	app, err := h.sellerService.Apply(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrConflict) {
			response.Conflict(c, "you already have a pending application", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to submit application", err)
		return
	}

	response.Success(c, http.StatusCreated, "application submitted", app)
}

// ListOwn lists the authenticated user's applications.
func (h *SellerHandler) ListOwn(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	apps, err := h.sellerService.ListOwn(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list applications", err)
		return
	}

	response.Success(c, http.StatusOK, "applications retrieved", apps)
}

// ListPending lists applications awaiting review. Admin only.
func (h *SellerHandler) ListPending(c *gin.Context) {
	apps, err := h.sellerService.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list applications", err)
		return
	}

	response.Success(c, http.StatusOK, "applications retrieved", apps)
}

// Approve approves a pending application and promotes the applicant to
// seller. Admin only.
func (h *SellerHandler) Approve(c *gin.Context) {
	reviewerID := middleware.MustGetUserID(c)

	applicationID, ok := applicationIDParam(c)
	if !ok {
		return
	}

	var req domain.ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.sellerService.Approve(c.Request.Context(), reviewerID, applicationID, req.Note); err != nil {
		h.writeReviewError(c, err, "failed to approve application")
		return
	}

	response.Success(c, http.StatusOK, "application approved", nil)
}

// Reject rejects a pending application. Admin only.
func (h *SellerHandler) Reject(c *gin.Context) {
	reviewerID := middleware.MustGetUserID(c)

	applicationID, ok := applicationIDParam(c)
	if !ok {
		return
	}

	var req domain.ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.sellerService.Reject(c.Request.Context(), reviewerID, applicationID, req.Note); err != nil {
		h.writeReviewError(c, err, "failed to reject application")
		return
	}

	response.Success(c, http.StatusOK, "application rejected", nil)
}

func applicationIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid application ID", err)
		return 0, false
	}
	return id, true
}

func (h *SellerHandler) writeReviewError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, xerrors.ErrNotFound):
		response.NotFound(c, "application not found")
	case errors.Is(err, xerrors.ErrInvalidTransition):
		response.Conflict(c, "application has already been reviewed", err)
	default:
		response.Error(c, http.StatusInternalServerError, fallback, err)
	}
}

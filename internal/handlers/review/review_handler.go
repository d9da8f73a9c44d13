// internal/handlers/review/review_handler.go
package review

import (
	"errors"
	"net/http"
	"strconv"

	domain "agentmarket-service/internal/domain/review"
	"agentmarket-service/internal/middleware"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/pkg/response"
	service "agentmarket-service/internal/service/review"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
	logger        *zap.Logger
}

func NewReviewHandler(reviewService *service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// Eligibility reports whether the authenticated buyer may review the agent
// yet, and if not, why.
func (h *ReviewHandler) Eligibility(c *gin.Context) {
	buyerID := middleware.MustGetUserID(c)

	agentID, err := strconv.ParseInt(c.Query("agent_id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "agent_id is required", err)
		return
	}

	elig, err := h.reviewService.CheckEligibility(c.Request.Context(), buyerID, agentID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "agent not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to check eligibility", err)
		return
	}

	response.Success(c, http.StatusOK, "eligibility checked", elig)
}

// Submit creates a review for an agent the buyer purchased.
func (h *ReviewHandler) Submit(c *gin.Context) {
	buyerID := middleware.MustGetUserID(c)

	agentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid agent ID", err)
		return
	}

	var req domain.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	r, err := h.reviewService.SubmitReview(c.Request.Context(), buyerID, agentID, &req)
	if err != nil {
		var notEligible *domain.NotEligibleError
		switch {
		case errors.As(err, &notEligible):
			response.Forbidden(c, notEligible.Error())
		case errors.Is(err, xerrors.ErrInvalidRating):
			response.ValidationError(c, "rating must be between 1 and 5", err)
		case errors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "agent not found")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to submit review", err)
		}
		return
	}

	response.Success(c, http.StatusCreated, "review submitted", r)
}

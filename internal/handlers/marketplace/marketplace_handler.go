// internal/handlers/marketplace/marketplace_handler.go
package marketplace

import (
	"errors"
	"net/http"
	"strconv"

	"agentmarket-service/internal/domain/agent"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/pkg/response"
	"agentmarket-service/internal/repository/postgres"
	agentUsecase "agentmarket-service/internal/service/agent"
	reviewUsecase "agentmarket-service/internal/service/review"

	"github.com/gin-gonic/gin"
)

// MarketplaceHandler serves the public, unauthenticated browse surface.
type MarketplaceHandler struct {
	agentService  *agentUsecase.AgentService
	reviewService *reviewUsecase.ReviewService
	categoryRepo  *postgres.CategoryRepository
}

func NewMarketplaceHandler(
	agentService *agentUsecase.AgentService,
	reviewService *reviewUsecase.ReviewService,
	categoryRepo *postgres.CategoryRepository,
) *MarketplaceHandler {
	return &MarketplaceHandler{
		agentService:  agentService,
		reviewService: reviewService,
		categoryRepo:  categoryRepo,
	}
}

// ListAgents lists publicly visible agents with category/search filters.
func (h *MarketplaceHandler) ListAgents(c *gin.Context) {
	var filters agent.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.agentService.ListPublic(c.Request.Context(), &filters)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list agents", err)
		return
	}

	response.Success(c, http.StatusOK, "agents retrieved", result)
}

// GetAgent retrieves a publicly visible agent and counts the view.
func (h *MarketplaceHandler) GetAgent(c *gin.Context) {
	agentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid agent ID", err)
		return
	}

	a, err := h.agentService.GetPublic(c.Request.Context(), agentID)
	if err != nil {
		response.NotFound(c, "agent not found")
		return
	}

	response.Success(c, http.StatusOK, "agent retrieved", a)
}

// ListAgentReviews lists reviews for an agent lineage.
func (h *MarketplaceHandler) ListAgentReviews(c *gin.Context) {
	agentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid agent ID", err)
		return
	}

	reviews, err := h.reviewService.ListByAgent(c.Request.Context(), agentID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "agent not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to list reviews", err)
		return
	}

	response.Success(c, http.StatusOK, "reviews retrieved", reviews)
}

// ListCategories lists marketplace categories.
func (h *MarketplaceHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryRepo.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list categories", err)
		return
	}

	response.Success(c, http.StatusOK, "categories retrieved", categories)
}

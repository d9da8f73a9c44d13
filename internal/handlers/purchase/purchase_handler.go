// internal/handlers/purchase/purchase_handler.go
package purchase

import (
	"errors"
	"net/http"
	"strconv"

	"agentmarket-service/internal/middleware"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/pkg/response"
	service "agentmarket-service/internal/service/purchase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PurchaseHandler struct {
	purchaseService *service.PurchaseService
	logger          *zap.Logger
}

func NewPurchaseHandler(purchaseService *service.PurchaseService, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
		logger:          logger,
	}
}

type purchaseRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// Purchase records a completed purchase of an agent version for the
// authenticated buyer.
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	buyerID := middleware.MustGetUserID(c)

	agentVersionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid agent ID", err)
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	p, err := h.purchaseService.RecordPurchase(c.Request.Context(), buyerID, agentVersionID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrAlreadyOwned):
			response.Conflict(c, "you already own this agent version", err)
		case errors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "agent not found")
		case errors.Is(err, xerrors.ErrInvalidInput):
			response.ValidationError(c, "agent is not available for purchase", err)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to record purchase", err)
		}
		return
	}

	response.Success(c, http.StatusCreated, "purchase recorded", p)
}

// ListMine lists the authenticated buyer's purchases.
func (h *PurchaseHandler) ListMine(c *gin.Context) {
	buyerID := middleware.MustGetUserID(c)

	purchases, err := h.purchaseService.ListByBuyer(c.Request.Context(), buyerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list purchases", err)
		return
	}

	response.Success(c, http.StatusOK, "purchases retrieved", purchases)
}

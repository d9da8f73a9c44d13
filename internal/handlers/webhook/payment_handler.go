// internal/handlers/webhook/payment_handler.go
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"agentmarket-service/internal/domain/subscription"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/pkg/response"
	purchaseUsecase "agentmarket-service/internal/service/purchase"
	subscriptionUsecase "agentmarket-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentWebhookHandler ingests events from the payment provider. The
// provider is the source of truth for payment and subscription state;
// this handler only translates its events into domain operations.
type PaymentWebhookHandler struct {
	purchaseService *purchaseUsecase.PurchaseService
	subService      *subscriptionUsecase.SubscriptionService
	signingSecret   string
	logger          *zap.Logger
}

func NewPaymentWebhookHandler(
	purchaseService *purchaseUsecase.PurchaseService,
	subService *subscriptionUsecase.SubscriptionService,
	signingSecret string,
	logger *zap.Logger,
) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		purchaseService: purchaseService,
		subService:      subService,
		signingSecret:   signingSecret,
		logger:          logger,
	}
}

type webhookEnvelope struct {
	Type string          `json:"type" binding:"required"`
	Data json.RawMessage `json:"data"`
}

type paymentCompletedEvent struct {
	BuyerID        int64   `json:"buyer_id"`
	AgentVersionID int64   `json:"agent_version_id"`
	Amount         float64 `json:"amount"`
}

// HandleEvent verifies the provider signature and dispatches by event type.
// Unknown types are acknowledged so the provider does not retry them.
func (h *PaymentWebhookHandler) HandleEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.ValidationError(c, "failed to read body", err)
		return
	}

	if !h.verifySignature(body, c.GetHeader("X-Webhook-Signature")) {
		response.Unauthorized(c, "invalid webhook signature")
		return
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		response.ValidationError(c, "invalid event payload", err)
		return
	}

	switch envelope.Type {
	case "payment.completed":
		h.handlePaymentCompleted(c, envelope.Data)
	case "subscription.updated":
		h.handleSubscriptionUpdated(c, envelope.Data)
	default:
		h.logger.Info("ignoring webhook event", zap.String("type", envelope.Type))
		response.Success(c, http.StatusOK, "event ignored", nil)
	}
}

func (h *PaymentWebhookHandler) handlePaymentCompleted(c *gin.Context, data json.RawMessage) {
	var event paymentCompletedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		response.ValidationError(c, "invalid payment event", err)
		return
	}

	p, err := h.purchaseService.RecordSettledPurchase(c.Request.Context(), event.BuyerID, event.AgentVersionID, event.Amount)
	if err != nil {
		// Provider retries mean the same payment can arrive twice; an
		// already-owned version is a successful delivery, not a failure.
		if errors.Is(err, xerrors.ErrAlreadyOwned) {
			response.Success(c, http.StatusOK, "purchase already recorded", nil)
			return
		}
		if errors.Is(err, xerrors.ErrNotFound) || errors.Is(err, xerrors.ErrInvalidInput) {
			response.ValidationError(c, "payment references an unavailable agent", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to record purchase", err)
		return
	}

	response.Success(c, http.StatusOK, "purchase recorded", p)
}

func (h *PaymentWebhookHandler) handleSubscriptionUpdated(c *gin.Context, data json.RawMessage) {
	var event subscription.ProviderEvent
	if err := json.Unmarshal(data, &event); err != nil {
		response.ValidationError(c, "invalid subscription event", err)
		return
	}

	if err := h.subService.ApplyProviderEvent(c.Request.Context(), &event); err != nil {
		if errors.Is(err, xerrors.ErrInvalidInput) {
			response.ValidationError(c, "invalid subscription event", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to apply subscription event", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription updated", nil)
}

func (h *PaymentWebhookHandler) verifySignature(body []byte, signature string) bool {
	if h.signingSecret == "" {
		// No secret configured; accept everything (local development).
		return true
	}
	mac := hmac.New(sha256.New, []byte(h.signingSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

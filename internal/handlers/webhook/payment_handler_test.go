package webhook

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agentmarket-service/internal/domain/agent"
	"agentmarket-service/internal/domain/purchase"
	"agentmarket-service/internal/repository/postgres"
	notifyUsecase "agentmarket-service/internal/service/notification"
	purchaseUsecase "agentmarket-service/internal/service/purchase"
	subscriptionUsecase "agentmarket-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupWebhookRoute(t *testing.T) (*gin.Engine, pgxmock.PgxPoolIface) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	db := postgres.NewDB(mock)
	logger := zap.NewNop()

	purchaseService := purchaseUsecase.NewPurchaseService(
		postgres.NewPurchaseRepository(db),
		postgres.NewAgentRepository(db),
		notifyUsecase.NewNotificationService(postgres.NewNotificationRepository(db), logger),
		db,
		logger,
	)
	subService := subscriptionUsecase.NewSubscriptionService(postgres.NewSubscriptionRepository(db), logger)

	h := NewPaymentWebhookHandler(purchaseService, subService, "", logger)

	r := gin.New()
	r.POST("/webhooks/payments", h.HandleEvent)
	return r, mock
}

func lockedAgentRow(id int64, status agent.Status) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "seller_id", "category_id", "name", "description", "price",
		"status", "rejection_reason", "approved_at",
		"version", "parent_agent_id", "has_active_update",
		"view_count", "purchase_count", "created_at", "updated_at",
	}).AddRow(
		id, int64(2), int64(1), "Support Bot", "answers tickets", 49.99,
		status, nil, nil,
		1, nil, false,
		int64(0), int64(5), now, now,
	)
}

func postEvent(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandleEvent_PaymentCompleted_ArchivedVersionStillSettles(t *testing.T) {
	r, mock := setupWebhookRoute(t)
	defer mock.Close()

	// The version retired between checkout and webhook delivery. The charge
	// already happened, so the event must still produce ownership.
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM agents WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(10)).
		WillReturnRows(lockedAgentRow(10, agent.StatusArchived))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM purchases WHERE buyer_id = \$1 AND agent_version_id = \$2\)`).
		WithArgs(int64(1), int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO purchases`).
		WithArgs(pgxmock.AnyArg(), int64(1), int64(10), int64(10), 49.99, purchase.StatusCompleted, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(77)))
	mock.ExpectExec(`UPDATE agents SET purchase_count = purchase_count \+ 1`).
		WithArgs(pgxmock.AnyArg(), int64(10)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(int64(1), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(int64(2), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), time.Now()))

	w := postEvent(t, r, `{"type":"payment.completed","data":{"buyer_id":1,"agent_version_id":10,"amount":49.99}}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandleEvent_PaymentCompleted_DuplicateDeliveryAcknowledged(t *testing.T) {
	r, mock := setupWebhookRoute(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM agents WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(10)).
		WillReturnRows(lockedAgentRow(10, agent.StatusApproved))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM purchases WHERE buyer_id = \$1 AND agent_version_id = \$2\)`).
		WithArgs(int64(1), int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	w := postEvent(t, r, `{"type":"payment.completed","data":{"buyer_id":1,"agent_version_id":10,"amount":49.99}}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandleEvent_UnknownTypeAcknowledged(t *testing.T) {
	r, mock := setupWebhookRoute(t)
	defer mock.Close()

	w := postEvent(t, r, `{"type":"payout.created","data":{}}`)
	require.Equal(t, http.StatusOK, w.Code)
}

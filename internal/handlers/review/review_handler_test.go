package review

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agentmarket-service/internal/repository/postgres"
	service "agentmarket-service/internal/service/review"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupEligibilityRoute(t *testing.T) (*gin.Engine, pgxmock.PgxPoolIface) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	db := postgres.NewDB(mock)

	svc := service.NewReviewService(
		postgres.NewReviewRepository(db),
		postgres.NewPurchaseRepository(db),
		postgres.NewAgentRepository(db),
		zap.NewNop(),
	)
	h := NewReviewHandler(svc, zap.NewNop())

	r := gin.New()
	r.GET("/reviews/eligibility", func(c *gin.Context) {
		c.Set("user_id", int64(1))
		c.Next()
	}, h.Eligibility)
	return r, mock
}

func expectAgentLookup(mock pgxmock.PgxPoolIface, id int64) {
	created := time.Now()
	mock.ExpectQuery(`FROM agents WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "seller_id", "category_id", "name", "description", "price",
			"status", "rejection_reason", "approved_at",
			"version", "parent_agent_id", "has_active_update",
			"view_count", "purchase_count", "created_at", "updated_at",
		}).AddRow(
			id, int64(2), int64(1), "Support Bot", "answers tickets", 49.99,
			"approved", nil, nil,
			1, nil, false,
			int64(0), int64(0), created, created,
		))
}

func TestEligibility_NoPurchase(t *testing.T) {
	r, mock := setupEligibilityRoute(t)
	defer mock.Close()

	expectAgentLookup(mock, 10)
	mock.ExpectQuery(`FROM purchases`).
		WithArgs(int64(1), int64(10)).
		WillReturnError(pgx.ErrNoRows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reviews/eligibility?agent_id=10", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Eligible bool   `json:"eligible"`
			Reason   string `json:"reason"`
			Message  string `json:"message"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.False(t, body.Data.Eligible)
	require.Equal(t, "NO_PURCHASE", body.Data.Reason)
	require.NotEmpty(t, body.Data.Message)
}

func TestEligibility_TooSoonIncludesDaysRemaining(t *testing.T) {
	r, mock := setupEligibilityRoute(t)
	defer mock.Close()

	expectAgentLookup(mock, 10)
	mock.ExpectQuery(`FROM purchases`).
		WithArgs(int64(1), int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "reference", "buyer_id", "agent_id", "agent_version_id",
			"amount", "status", "purchased_at",
		}).AddRow(
			int64(77), "01JABCDEF", int64(1), int64(10), int64(10),
			49.99, "completed", time.Now().Add(-10*24*time.Hour),
		))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reviews/eligibility?agent_id=10", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Eligible      bool   `json:"eligible"`
			Reason        string `json:"reason"`
			DaysRemaining int    `json:"days_remaining"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.False(t, body.Data.Eligible)
	require.Equal(t, "TOO_SOON", body.Data.Reason)
	require.Equal(t, 4, body.Data.DaysRemaining)
}

func TestEligibility_MissingAgentID(t *testing.T) {
	r, mock := setupEligibilityRoute(t)
	defer mock.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reviews/eligibility", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEligibility_UnknownAgent(t *testing.T) {
	r, mock := setupEligibilityRoute(t)
	defer mock.Close()

	mock.ExpectQuery(`FROM agents WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reviews/eligibility?agent_id=404", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

package postgres

import (
	"context"
	"testing"
	"time"

	"agentmarket-service/internal/domain/agent"
	xerrors "agentmarket-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var agentColumnNames = []string{
	"id", "seller_id", "category_id", "name", "description", "price",
	"status", "rejection_reason", "approved_at",
	"version", "parent_agent_id", "has_active_update",
	"view_count", "purchase_count", "created_at", "updated_at",
}

func agentRow(id int64, status agent.Status) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(agentColumnNames).AddRow(
		id, int64(2), int64(1), "Support Bot", "answers tickets", 49.99,
		status, nil, nil,
		1, nil, false,
		int64(0), int64(0), now, now,
	)
}

func TestAgentRepo_FindByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAgentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`FROM agents WHERE id = \$1`).
		WithArgs(int64(10)).
		WillReturnRows(agentRow(10, agent.StatusApproved))
	a, err := r.FindByID(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), a.ID)
	require.Equal(t, agent.StatusApproved, a.Status)

	mock.ExpectQuery(`FROM agents WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.FindByID(ctx, 404)
	require.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestAgentRepo_UpdateStatusWithTx_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAgentRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin(ctx)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE agents SET status = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(agent.StatusUnderReview, pgxmock.AnyArg(), int64(404)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err = r.UpdateStatusWithTx(ctx, tx, 404, agent.StatusUnderReview)
	require.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestAgentRepo_MarkRejectedWithTx(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAgentRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin(ctx)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE agents`).
		WithArgs(agent.StatusRejected, "low quality description", pgxmock.AnyArg(), int64(10)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.MarkRejectedWithTx(ctx, tx, 10, "low quality description"))
}

func TestAgentRepo_IncrementPurchaseCountWithTx(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAgentRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin(ctx)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE agents SET purchase_count = purchase_count \+ 1, updated_at = \$1 WHERE id = \$2`).
		WithArgs(pgxmock.AnyArg(), int64(10)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.IncrementPurchaseCountWithTx(ctx, tx, 10))
}

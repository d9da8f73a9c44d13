package agent

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"agentmarket-service/internal/domain/agent"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/repository/postgres"
	notifyUsecase "agentmarket-service/internal/service/notification"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var agentColumnNames = []string{
	"id", "seller_id", "category_id", "name", "description", "price",
	"status", "rejection_reason", "approved_at",
	"version", "parent_agent_id", "has_active_update",
	"view_count", "purchase_count", "created_at", "updated_at",
}

type agentRowOpts struct {
	status        agent.Status
	version       int
	parentAgentID sql.NullInt64
}

func agentRow(id int64, opts agentRowOpts) *pgxmock.Rows {
	now := time.Now()
	version := opts.version
	if version == 0 {
		version = 1
	}
	return pgxmock.NewRows(agentColumnNames).AddRow(
		id, int64(2), int64(1), "Support Bot", "answers tickets", 49.99,
		opts.status, nil, nil,
		version, opts.parentAgentID, false,
		int64(0), int64(0), now, now,
	)
}

func newAgentService(t *testing.T) (*AgentService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	db := postgres.NewDB(mock)
	logger := zap.NewNop()

	svc := NewAgentService(
		postgres.NewAgentRepository(db),
		postgres.NewCategoryRepository(db),
		notifyUsecase.NewNotificationService(postgres.NewNotificationRepository(db), logger),
		db,
		logger,
	)
	return svc, mock
}

func TestSubmitForReview_FromDraft(t *testing.T) {
	svc, mock := newAgentService(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM agents WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(10)).
		WillReturnRows(agentRow(10, agentRowOpts{status: agent.StatusDraft}))
	mock.ExpectExec(`UPDATE agents SET status = \$1`).
		WithArgs(agent.StatusUnderReview, pgxmock.AnyArg(), int64(10)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	a, err := svc.SubmitForReview(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Equal(t, agent.StatusUnderReview, a.Status)
}

func TestSubmitForReview_WrongSeller(t *testing.T) {
	svc, mock := newAgentService(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM agents WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(10)).
		WillReturnRows(agentRow(10, agentRowOpts{status: agent.StatusDraft}))
	mock.ExpectRollback()

	_, err := svc.SubmitForReview(context.Background(), 99, 10)
	require.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestSubmitForReview_VersionFlagsParent(t *testing.T) {
	svc, mock := newAgentService(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM agents WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(11)).
		WillReturnRows(agentRow(11, agentRowOpts{
			status:        agent.StatusDraft,
			version:       2,
			parentAgentID: sql.NullInt64{Int64: 10, Valid: true},
		}))
	mock.ExpectExec(`UPDATE agents SET status = \$1`).
		WithArgs(agent.StatusUnderReview, pgxmock.AnyArg(), int64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// The live version goes hidden while its replacement is moderated.
	mock.ExpectExec(`UPDATE agents\s+SET has_active_update = \$1, updated_at = \$2\s+WHERE \(id = \$3 OR parent_agent_id = \$3\) AND status = 'approved'`).
		WithArgs(true, pgxmock.AnyArg(), int64(10)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	_, err := svc.SubmitForReview(context.Background(), 2, 11)
	require.NoError(t, err)
}

func TestApprove_InvalidTransition(t *testing.T) {
	svc, mock := newAgentService(t)
	defer mock.Close()

	for _, status := range []agent.Status{agent.StatusDraft, agent.StatusApproved, agent.StatusRejected, agent.StatusArchived} {
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM agents WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(10)).
			WillReturnRows(agentRow(10, agentRowOpts{status: status}))
		mock.ExpectRollback()

		_, err := svc.Approve(context.Background(), 10)
		require.ErrorIs(t, err, xerrors.ErrInvalidTransition, "approve from %s must fail", status)
	}
}

func TestApprove_VersionSupersedesParent(t *testing.T) {
	svc, mock := newAgentService(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM agents WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(11)).
		WillReturnRows(agentRow(11, agentRowOpts{
			status:        agent.StatusUnderReview,
			version:       2,
			parentAgentID: sql.NullInt64{Int64: 10, Valid: true},
		}))
	mock.ExpectExec(`UPDATE agents`).
		WithArgs(agent.StatusApproved, pgxmock.AnyArg(), pgxmock.AnyArg(), int64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// The old version retires in the same transaction.
	mock.ExpectExec(`UPDATE agents\s+SET status = 'archived', has_active_update = FALSE, updated_at = \$1\s+WHERE \(id = \$2 OR parent_agent_id = \$2\) AND status = 'approved' AND id <> \$3`).
		WithArgs(pgxmock.AnyArg(), int64(10), int64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(int64(2), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	a, err := svc.Approve(context.Background(), 11)
	require.NoError(t, err)
	require.Equal(t, agent.StatusApproved, a.Status)
}

func TestReject_RequiresReason(t *testing.T) {
	svc, mock := newAgentService(t)
	defer mock.Close()

	_, err := svc.Reject(context.Background(), 10, "")
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestReject_VersionRestoresParentVisibility(t *testing.T) {
	svc, mock := newAgentService(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM agents WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(11)).
		WillReturnRows(agentRow(11, agentRowOpts{
			status:        agent.StatusUnderReview,
			version:       2,
			parentAgentID: sql.NullInt64{Int64: 10, Valid: true},
		}))
	mock.ExpectExec(`UPDATE agents`).
		WithArgs(agent.StatusRejected, "missing safety documentation", pgxmock.AnyArg(), int64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// Rejecting the replacement puts the old version back on the market.
	mock.ExpectExec(`UPDATE agents\s+SET has_active_update = \$1, updated_at = \$2\s+WHERE \(id = \$3 OR parent_agent_id = \$3\) AND status = 'approved'`).
		WithArgs(false, pgxmock.AnyArg(), int64(10)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(int64(2), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	a, err := svc.Reject(context.Background(), 11, "missing safety documentation")
	require.NoError(t, err)
	require.Equal(t, agent.StatusRejected, a.Status)
}

func TestNewVersion_FromLaterVersionPointsAtRoot(t *testing.T) {
	svc, mock := newAgentService(t)
	defer mock.Close()

	// Spawning v3 from the live v2 (itself a child of root 10): the clone
	// must point at the root, and the pending-update flag lands on v2, the
	// row that is actually visible.
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM agents WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(11)).
		WillReturnRows(agentRow(11, agentRowOpts{
			status:        agent.StatusApproved,
			version:       2,
			parentAgentID: sql.NullInt64{Int64: 10, Valid: true},
		}))
	mock.ExpectQuery(`INSERT INTO agents`).
		WithArgs(int64(2), int64(1), "Support Bot", "answers tickets", 49.99,
			agent.StatusDraft, 3, sql.NullInt64{Int64: 10, Valid: true}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(12), time.Now(), time.Now()))
	mock.ExpectExec(`UPDATE agents SET has_active_update = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(true, pgxmock.AnyArg(), int64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	child, err := svc.NewVersion(context.Background(), 2, 11)
	require.NoError(t, err)
	require.Equal(t, 3, child.Version)
	require.Equal(t, int64(10), child.LineageID())
}

func TestReject_ThirdGenerationRestoresLiveVersion(t *testing.T) {
	svc, mock := newAgentService(t)
	defer mock.Close()

	// v3 points at root 10, but the row hidden behind has_active_update is
	// the approved v2. The clear targets whichever lineage row is approved,
	// so the long-archived root stays untouched and v2 comes back.
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM agents WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(12)).
		WillReturnRows(agentRow(12, agentRowOpts{
			status:        agent.StatusUnderReview,
			version:       3,
			parentAgentID: sql.NullInt64{Int64: 10, Valid: true},
		}))
	mock.ExpectExec(`UPDATE agents`).
		WithArgs(agent.StatusRejected, "regression in tool calls", pgxmock.AnyArg(), int64(12)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE agents\s+SET has_active_update = \$1, updated_at = \$2\s+WHERE \(id = \$3 OR parent_agent_id = \$3\) AND status = 'approved'`).
		WithArgs(false, pgxmock.AnyArg(), int64(10)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(int64(2), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	a, err := svc.Reject(context.Background(), 12, "regression in tool calls")
	require.NoError(t, err)
	require.Equal(t, agent.StatusRejected, a.Status)
}

func TestApprove_ThirdGenerationRetiresLiveVersion(t *testing.T) {
	svc, mock := newAgentService(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM agents WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(12)).
		WillReturnRows(agentRow(12, agentRowOpts{
			status:        agent.StatusUnderReview,
			version:       3,
			parentAgentID: sql.NullInt64{Int64: 10, Valid: true},
		}))
	mock.ExpectExec(`UPDATE agents`).
		WithArgs(agent.StatusApproved, pgxmock.AnyArg(), pgxmock.AnyArg(), int64(12)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// The approved-status filter picks out v2; the new v3 row is excluded.
	mock.ExpectExec(`UPDATE agents\s+SET status = 'archived', has_active_update = FALSE, updated_at = \$1\s+WHERE \(id = \$2 OR parent_agent_id = \$2\) AND status = 'approved' AND id <> \$3`).
		WithArgs(pgxmock.AnyArg(), int64(10), int64(12)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(int64(2), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	a, err := svc.Approve(context.Background(), 12)
	require.NoError(t, err)
	require.Equal(t, agent.StatusApproved, a.Status)
}

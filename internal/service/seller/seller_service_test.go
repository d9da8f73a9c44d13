package seller

import (
	"context"
	"testing"
	"time"

	"agentmarket-service/internal/domain/seller"
	"agentmarket-service/internal/domain/user"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/pkg/rolecache"
	"agentmarket-service/internal/repository/postgres"
	notifyUsecase "agentmarket-service/internal/service/notification"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var applicationColumnNames = []string{
	"id", "user_id", "company_name", "pitch", "status",
	"reviewer_id", "review_note", "created_at", "reviewed_at",
}

func applicationRow(id, userID int64, status seller.ApplicationStatus) *pgxmock.Rows {
	return pgxmock.NewRows(applicationColumnNames).AddRow(
		id, userID, "Acme Bots", "We build support agents for e-commerce shops.", status,
		nil, nil, time.Now(), nil,
	)
}

func newSellerService(t *testing.T) (*SellerService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	db := postgres.NewDB(mock)
	logger := zap.NewNop()

	// The cache client points nowhere; invalidation failures are tolerated.
	cache := rolecache.New(redis.NewClient(&redis.Options{Addr: "localhost:1"}))

	svc := NewSellerService(
		postgres.NewSellerApplicationRepository(db),
		postgres.NewUserRepository(db),
		notifyUsecase.NewNotificationService(postgres.NewNotificationRepository(db), logger),
		cache,
		db,
		logger,
	)
	return svc, mock
}

func TestApprove_PromotesApplicant(t *testing.T) {
	svc, mock := newSellerService(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM seller_applications`).
		WithArgs(int64(3)).
		WillReturnRows(applicationRow(3, 5, seller.ApplicationPending))
	mock.ExpectExec(`UPDATE seller_applications`).
		WithArgs(seller.ApplicationApproved, int64(9), "looks solid", pgxmock.AnyArg(), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET role = \$1`).
		WithArgs(user.RoleSeller, pgxmock.AnyArg(), int64(5), user.RoleBuyer).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(int64(5), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	require.NoError(t, svc.Approve(context.Background(), 9, 3, "looks solid"))
}

func TestApprove_AlreadyReviewed(t *testing.T) {
	svc, mock := newSellerService(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM seller_applications`).
		WithArgs(int64(3)).
		WillReturnRows(applicationRow(3, 5, seller.ApplicationApproved))
	mock.ExpectRollback()

	err := svc.Approve(context.Background(), 9, 3, "")
	require.ErrorIs(t, err, xerrors.ErrInvalidTransition)
}

func TestReject_DoesNotPromote(t *testing.T) {
	svc, mock := newSellerService(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM seller_applications`).
		WithArgs(int64(3)).
		WillReturnRows(applicationRow(3, 5, seller.ApplicationPending))
	mock.ExpectExec(`UPDATE seller_applications`).
		WithArgs(seller.ApplicationRejected, int64(9), "needs more detail", pgxmock.AnyArg(), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(int64(5), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	require.NoError(t, svc.Reject(context.Background(), 9, 3, "needs more detail"))
}

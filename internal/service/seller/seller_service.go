// internal/service/seller/seller_service.go
package seller

import (
	"context"
	"fmt"

	"agentmarket-service/internal/domain/notification"
	"agentmarket-service/internal/domain/seller"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/pkg/rolecache"
	"agentmarket-service/internal/repository/postgres"
	notifyUsecase "agentmarket-service/internal/service/notification"

	"go.uber.org/zap"
)

// SellerService handles seller applications and their admin review.
type SellerService struct {
	appRepo      *postgres.SellerApplicationRepository
	userRepo     *postgres.UserRepository
	notifService *notifyUsecase.NotificationService
	roleCache    *rolecache.Cache
	db           *postgres.DB
	logger       *zap.Logger
}

func NewSellerService(
	appRepo *postgres.SellerApplicationRepository,
	userRepo *postgres.UserRepository,
	notifService *notifyUsecase.NotificationService,
	roleCache *rolecache.Cache,
	db *postgres.DB,
	logger *zap.Logger,
) *SellerService {
	return &SellerService{
		appRepo:      appRepo,
		userRepo:     userRepo,
		notifService: notifService,
		roleCache:    roleCache,
		db:           db,
		logger:       logger,
	}
}

// Apply files a seller application for the user. At most one pending
// application per user is allowed.
func (s *SellerService) Apply(ctx context.Context, userID int64, req *seller.ApplyRequest) (*seller.Application, error) {
	app := &seller.Application{
		UserID:      userID,
		CompanyName: req.CompanyName,
		Pitch:       req.Pitch,
		Status:      seller.ApplicationPending,
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info("seller application filed",
		zap.Int64("application_id", app.ID),
		zap.Int64("user_id", userID),
	)

	return app, nil
}

// ListOwn retrieves the user's applications.
func (s *SellerService) ListOwn(ctx context.Context, userID int64) ([]seller.Application, error) {
	return s.appRepo.FindByUser(ctx, userID)
}

// ListPending retrieves the admin review queue.
func (s *SellerService) ListPending(ctx context.Context) ([]seller.Application, error) {
	return s.appRepo.ListPending(ctx)
}

// Approve accepts a pending application and promotes the applicant to
// seller in the same transaction. The cached role is invalidated so UI
// hints refresh promptly.
func (s *SellerService) Approve(ctx context.Context, reviewerID, applicationID int64, note string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	app, err := s.appRepo.FindByIDForUpdateWithTx(ctx, tx, applicationID)
	if err != nil {
		return err
	}

	if app.Status != seller.ApplicationPending {
		return xerrors.ErrInvalidTransition
	}

	if err := s.appRepo.MarkReviewedWithTx(ctx, tx, applicationID, seller.ApplicationApproved, reviewerID, note); err != nil {
		return err
	}

	if err := s.userRepo.PromoteToSellerWithTx(ctx, tx, app.UserID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.roleCache.Invalidate(ctx, app.UserID)

	s.notifService.Notify(ctx, app.UserID, notification.KindApplicationOutcome,
		"Seller application approved",
		"You can now publish agents in the marketplace.",
	)

	s.logger.Info("seller application approved",
		zap.Int64("application_id", applicationID),
		zap.Int64("reviewer_id", reviewerID),
	)

	return nil
}

// Reject declines a pending application with an optional note.
func (s *SellerService) Reject(ctx context.Context, reviewerID, applicationID int64, note string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	app, err := s.appRepo.FindByIDForUpdateWithTx(ctx, tx, applicationID)
	if err != nil {
		return err
	}

	if app.Status != seller.ApplicationPending {
		return xerrors.ErrInvalidTransition
	}

	if err := s.appRepo.MarkReviewedWithTx(ctx, tx, applicationID, seller.ApplicationRejected, reviewerID, note); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifService.Notify(ctx, app.UserID, notification.KindApplicationOutcome,
		"Seller application rejected",
		"Your seller application was not approved this time.",
	)

	s.logger.Info("seller application rejected",
		zap.Int64("application_id", applicationID),
		zap.Int64("reviewer_id", reviewerID),
	)

	return nil
}

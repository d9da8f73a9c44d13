// internal/service/subscription/subscription_service.go
package subscription

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"agentmarket-service/internal/domain/subscription"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/repository/postgres"

	"go.uber.org/zap"
)

const defaultGraceDays = 30

// SubscriptionService is the single access gate for subscription-protected
// content.
type SubscriptionService struct {
	subRepo *postgres.SubscriptionRepository
	logger  *zap.Logger

	now func() time.Time
}

func NewSubscriptionService(subRepo *postgres.SubscriptionRepository, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		subRepo: subRepo,
		logger:  logger,
		now:     time.Now,
	}
}

// HasActiveAccess reports whether the user may access gated content. A
// missing subscription row means no access, and any lookup failure is
// treated the same way: the gate fails closed, never open.
func (s *SubscriptionService) HasActiveAccess(ctx context.Context, userID int64) bool {
	sub, err := s.subRepo.FindByUserID(ctx, userID)
	if errors.Is(err, xerrors.ErrNotFound) {
		return false
	}
	if err != nil {
		s.logger.Warn("subscription lookup failed, denying access",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return false
	}

	return sub.HasAccess(s.now())
}

// Get retrieves the user's subscription row.
func (s *SubscriptionService) Get(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	return s.subRepo.FindByUserID(ctx, userID)
}

// CreateLegacyGrace grants a time-bounded legacy grace period to a user who
// purchased under the old one-time-payment model. Idempotent: a user with
// any existing subscription row keeps it unchanged.
func (s *SubscriptionService) CreateLegacyGrace(ctx context.Context, userID int64, graceDays int) error {
	if graceDays <= 0 {
		graceDays = defaultGraceDays
	}

	gracePeriodEnd := s.now().AddDate(0, 0, graceDays)
	if err := s.subRepo.CreateLegacyGrace(ctx, userID, gracePeriodEnd); err != nil {
		return err
	}

	s.logger.Info("legacy grace period granted",
		zap.Int64("user_id", userID),
		zap.Int("grace_days", graceDays),
	)

	return nil
}

// ApplyProviderEvent upserts the user's subscription from a payment
// processor lifecycle event.
func (s *SubscriptionService) ApplyProviderEvent(ctx context.Context, event *subscription.ProviderEvent) error {
	if event.UserID == 0 || event.Status == "" {
		return xerrors.ErrInvalidInput
	}

	sub := &subscription.Subscription{
		UserID:            event.UserID,
		Status:            event.Status,
		CancelAtPeriodEnd: event.CancelAtPeriodEnd,
	}
	if event.CurrentPeriodEnd != nil {
		sub.CurrentPeriodEnd = sql.NullTime{Time: *event.CurrentPeriodEnd, Valid: true}
	}
	if event.TrialEnd != nil {
		sub.TrialEnd = sql.NullTime{Time: *event.TrialEnd, Valid: true}
	}
	if event.ProviderReference != "" {
		sub.ProviderReference = sql.NullString{String: event.ProviderReference, Valid: true}
	}

	if err := s.subRepo.UpsertFromProvider(ctx, sub); err != nil {
		return err
	}

	s.logger.Info("subscription updated from provider",
		zap.Int64("user_id", event.UserID),
		zap.String("status", string(event.Status)),
	)

	return nil
}

// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agentmarket-service/internal/domain/subscription"
	xerrors "agentmarket-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type SubscriptionRepository struct {
	db *DB
}

func NewSubscriptionRepository(db *DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// FindByUserID retrieves the user's subscription row. One row per user.
func (r *SubscriptionRepository) FindByUserID(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	query := `
		SELECT id, user_id, status, current_period_end, grace_period_end, trial_end,
		       cancel_at_period_end, provider_reference, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
	`

	var sub subscription.Subscription
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&sub.ID, &sub.UserID, &sub.Status, &sub.CurrentPeriodEnd, &sub.GracePeriodEnd, &sub.TrialEnd,
		&sub.CancelAtPeriodEnd, &sub.ProviderReference, &sub.CreatedAt, &sub.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	return &sub, nil
}

// CreateLegacyGrace inserts a legacy_grace subscription for a user migrated
// off the one-time-purchase model. Idempotent: an existing row of any status
// wins and the insert becomes a no-op, so grace periods cannot be granted
// twice.
func (r *SubscriptionRepository) CreateLegacyGrace(ctx context.Context, userID int64, gracePeriodEnd time.Time) error {
	query := `
		INSERT INTO subscriptions (user_id, status, grace_period_end)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := r.db.Pool.Exec(ctx, query, userID, subscription.StatusLegacyGrace, gracePeriodEnd)
	if err != nil {
		return fmt.Errorf("failed to create legacy grace subscription: %w", err)
	}

	return nil
}

// UpsertFromProvider applies a subscription lifecycle event from the payment
// processor, creating or refreshing the user's row.
func (r *SubscriptionRepository) UpsertFromProvider(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, status, current_period_end, trial_end,
		                           cancel_at_period_end, provider_reference)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			status = EXCLUDED.status,
			current_period_end = EXCLUDED.current_period_end,
			trial_end = EXCLUDED.trial_end,
			cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			provider_reference = EXCLUDED.provider_reference,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(
		ctx, query,
		sub.UserID, sub.Status, sub.CurrentPeriodEnd, sub.TrialEnd,
		sub.CancelAtPeriodEnd, sub.ProviderReference,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return nil
}

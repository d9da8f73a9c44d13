// internal/domain/subscription/entity.go
package subscription

import (
	"database/sql"
	"time"
)

// Status mirrors the payment provider's subscription lifecycle, plus the
// legacy_grace state granted during the migration away from one-time
// purchases.
type Status string

const (
	StatusActive      Status = "active"
	StatusTrialing    Status = "trialing"
	StatusPastDue     Status = "past_due"
	StatusLegacyGrace Status = "legacy_grace"
	StatusCanceled    Status = "canceled"
	StatusIncomplete  Status = "incomplete"
	StatusExpired     Status = "expired"
)

// Subscription is one row per user.
type Subscription struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"user_id" db:"user_id"`

	Status            Status       `json:"status" db:"status"`
	CurrentPeriodEnd  sql.NullTime `json:"current_period_end,omitempty" db:"current_period_end"`
	GracePeriodEnd    sql.NullTime `json:"grace_period_end,omitempty" db:"grace_period_end"`
	TrialEnd          sql.NullTime `json:"trial_end,omitempty" db:"trial_end"`
	CancelAtPeriodEnd bool         `json:"cancel_at_period_end" db:"cancel_at_period_end"`

	ProviderReference sql.NullString `json:"provider_reference,omitempty" db:"provider_reference"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasAccess maps the subscription status to an access decision at the given
// instant. The switch is exhaustive over Status; unknown statuses deny.
func (s *Subscription) HasAccess(now time.Time) bool {
	switch s.Status {
	case StatusActive, StatusTrialing, StatusPastDue:
		return true
	case StatusLegacyGrace:
		return s.GracePeriodEnd.Valid && s.GracePeriodEnd.Time.After(now)
	case StatusCanceled, StatusIncomplete, StatusExpired:
		return false
	}
	return false
}

// internal/domain/subscription/dto.go
package subscription

import "time"

// ProviderEvent is the shape of a subscription lifecycle webhook from the
// payment processor. The processor itself is external; only the contract
// shape is preserved here.
type ProviderEvent struct {
	UserID            int64      `json:"user_id"`
	Status            Status     `json:"status"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	TrialEnd          *time.Time `json:"trial_end,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
	ProviderReference string     `json:"provider_reference,omitempty"`
}

type GrantLegacyGraceRequest struct {
	UserID    int64 `json:"user_id" binding:"required"`
	GraceDays int   `json:"grace_days"`
}

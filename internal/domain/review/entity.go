// internal/domain/review/entity.go
package review

import (
	"fmt"
	"time"
)

// ReviewWaitPeriod is how long after a purchase a buyer must wait before
// reviewing. Reviews are meant to reflect actual usage outcomes rather than
// first impressions; product policy, fixed at 14 days.
const ReviewWaitPeriod = 14 * 24 * time.Hour

// Review is one buyer's rating of one agent version. Unique per
// (agent_version_id, buyer_id).
type Review struct {
	ID int64 `json:"id" db:"id"`

	AgentID        int64 `json:"agent_id" db:"agent_id"`
	AgentVersionID int64 `json:"agent_version_id" db:"agent_version_id"`
	BuyerID        int64 `json:"buyer_id" db:"buyer_id"`

	Rating           int    `json:"rating" db:"rating"`
	Comment          string `json:"comment" db:"comment"`
	VerifiedPurchase bool   `json:"verified_purchase" db:"verified_purchase"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EligibilityReason explains why a buyer may not review an agent yet.
type EligibilityReason string

const (
	ReasonNoPurchase      EligibilityReason = "NO_PURCHASE"
	ReasonTooSoon         EligibilityReason = "TOO_SOON"
	ReasonAlreadyReviewed EligibilityReason = "ALREADY_REVIEWED"
)

// Eligibility is the result of the review-eligibility check.
type Eligibility struct {
	Eligible      bool              `json:"eligible"`
	Reason        EligibilityReason `json:"reason,omitempty"`
	Message       string            `json:"message,omitempty"`
	DaysRemaining int               `json:"days_remaining,omitempty"`
}

// NotEligibleError is returned when a review submission fails the
// eligibility check.
type NotEligibleError struct {
	Reason EligibilityReason
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("not eligible to review: %s", e.Reason)
}

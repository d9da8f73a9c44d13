// internal/domain/notification/entity.go
package notification

import "time"

// Kind classifies a notification for client rendering.
type Kind string

const (
	KindAgentApproved       Kind = "agent_approved"
	KindAgentRejected       Kind = "agent_rejected"
	KindPurchaseReceipt     Kind = "purchase_receipt"
	KindAgentSold           Kind = "agent_sold"
	KindApplicationOutcome  Kind = "application_outcome"
	KindSubscriptionUpdated Kind = "subscription_updated"
)

type Notification struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"user_id" db:"user_id"`

	Kind  Kind   `json:"kind" db:"kind"`
	Title string `json:"title" db:"title"`
	Body  string `json:"body" db:"body"`
	Read  bool   `json:"read" db:"read"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

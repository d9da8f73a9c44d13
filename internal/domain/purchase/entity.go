// internal/domain/purchase/entity.go
package purchase

import "time"

// Status is the settlement state of a purchase.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRefunded  Status = "refunded"
)

// Purchase records one buyer's completed acquisition of one agent version.
// Uniqueness is per (buyer_id, agent_version_id) regardless of status.
type Purchase struct {
	ID        int64  `json:"id" db:"id"`
	Reference string `json:"reference" db:"reference"`

	BuyerID        int64 `json:"buyer_id" db:"buyer_id"`
	AgentID        int64 `json:"agent_id" db:"agent_id"`
	AgentVersionID int64 `json:"agent_version_id" db:"agent_version_id"`

	Amount float64 `json:"amount" db:"amount"`
	Status Status  `json:"status" db:"status"`

	PurchasedAt time.Time `json:"purchased_at" db:"purchased_at"`
}

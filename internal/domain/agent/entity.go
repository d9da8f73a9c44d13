// internal/domain/agent/entity.go
package agent

import (
	"database/sql"
	"time"
)

// Status is the moderation status of an agent listing.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusArchived    Status = "archived"
)

// Agent represents one seller's listing. Versions are separate rows linked
// through ParentAgentID; purchases and reviews are pinned to a version row.
type Agent struct {
	ID       int64 `json:"id" db:"id"`
	SellerID int64 `json:"seller_id" db:"seller_id"`

	CategoryID  int64   `json:"category_id" db:"category_id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`

	// Moderation
	Status          Status         `json:"status" db:"status"`
	RejectionReason sql.NullString `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ApprovedAt      sql.NullTime   `json:"approved_at,omitempty" db:"approved_at"`

	// Versioning
	Version         int           `json:"version" db:"version"`
	ParentAgentID   sql.NullInt64 `json:"parent_agent_id,omitempty" db:"parent_agent_id"`
	HasActiveUpdate bool          `json:"has_active_update" db:"has_active_update"`

	// Aggregates
	ViewCount     int64 `json:"view_count" db:"view_count"`
	PurchaseCount int64 `json:"purchase_count" db:"purchase_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LineageID returns the id of the lineage root: the parent for a version
// row, the agent itself otherwise.
func (a *Agent) LineageID() int64 {
	if a.ParentAgentID.Valid {
		return a.ParentAgentID.Int64
	}
	return a.ID
}

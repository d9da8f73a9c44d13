// internal/domain/seller/entity.go
package seller

import (
	"database/sql"
	"time"
)

// ApplicationStatus is the review state of a seller application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending_review"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application is a buyer's request to become a seller, reviewed by an admin.
type Application struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"user_id" db:"user_id"`

	CompanyName string `json:"company_name" db:"company_name"`
	Pitch       string `json:"pitch" db:"pitch"`

	Status     ApplicationStatus `json:"status" db:"status"`
	ReviewerID sql.NullInt64     `json:"reviewer_id,omitempty" db:"reviewer_id"`
	ReviewNote sql.NullString    `json:"review_note,omitempty" db:"review_note"`

	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	ReviewedAt sql.NullTime `json:"reviewed_at,omitempty" db:"reviewed_at"`
}

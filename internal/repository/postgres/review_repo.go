// internal/repository/postgres/review_repo.go
package postgres

import (
	"context"
	"fmt"

	"agentmarket-service/internal/domain/review"
	xerrors "agentmarket-service/internal/pkg/errors"
)

type ReviewRepository struct {
	db *DB
}

func NewReviewRepository(db *DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review. The unique index on (agent_version_id, buyer_id)
// rejects duplicates; a violation maps to ErrDuplicateEntry.
func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	query := `
		INSERT INTO reviews (agent_id, agent_version_id, buyer_id, rating, comment, verified_purchase)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		rv.AgentID, rv.AgentVersionID, rv.BuyerID, rv.Rating, rv.Comment, rv.VerifiedPurchase,
	).Scan(&rv.ID, &rv.CreatedAt)

	if isUniqueViolation(err) {
		return xerrors.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// ExistsByVersionAndBuyer reports whether the buyer already reviewed the
// agent version.
func (r *ReviewRepository) ExistsByVersionAndBuyer(ctx context.Context, agentVersionID, buyerID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE agent_version_id = $1 AND buyer_id = $2)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, agentVersionID, buyerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}

	return exists, nil
}

// ListByAgent retrieves reviews across all versions of an agent lineage,
// newest first.
func (r *ReviewRepository) ListByAgent(ctx context.Context, agentID int64) ([]review.Review, error) {
	query := `
		SELECT id, agent_id, agent_version_id, buyer_id, rating, comment, verified_purchase, created_at
		FROM reviews
		WHERE agent_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []review.Review{}
	for rows.Next() {
		var rv review.Review
		err := rows.Scan(
			&rv.ID, &rv.AgentID, &rv.AgentVersionID, &rv.BuyerID,
			&rv.Rating, &rv.Comment, &rv.VerifiedPurchase, &rv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}

	return reviews, nil
}

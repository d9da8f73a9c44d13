// internal/repository/postgres/purchase_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"agentmarket-service/internal/domain/purchase"
	xerrors "agentmarket-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type PurchaseRepository struct {
	db *DB
}

func NewPurchaseRepository(db *DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// CreateWithTx inserts a purchase inside a transaction. The unique index on
// (buyer_id, agent_version_id) backs up the service-level ownership check;
// a violation maps to ErrAlreadyOwned.
func (r *PurchaseRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, p *purchase.Purchase) error {
	query := `
		INSERT INTO purchases (reference, buyer_id, agent_id, agent_version_id, amount, status, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := tx.QueryRow(
		ctx, query,
		p.Reference, p.BuyerID, p.AgentID, p.AgentVersionID, p.Amount, p.Status, p.PurchasedAt,
	).Scan(&p.ID)

	if isUniqueViolation(err) {
		return xerrors.ErrAlreadyOwned
	}
	if err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	return nil
}

// ExistsByBuyerAndVersionWithTx reports whether the buyer already holds a
// purchase for the agent version, regardless of status.
func (r *PurchaseRepository) ExistsByBuyerAndVersionWithTx(ctx context.Context, tx pgx.Tx, buyerID, agentVersionID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM purchases WHERE buyer_id = $1 AND agent_version_id = $2)`

	var exists bool
	if err := tx.QueryRow(ctx, query, buyerID, agentVersionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check purchase ownership: %w", err)
	}

	return exists, nil
}

// FindCompletedByBuyerAndAgent retrieves the buyer's most recent completed
// purchase within an agent lineage. agentID must be the lineage root, the
// id purchases are recorded under; callers resolve version ids first. The
// newest purchase pins the most relevant version for the review gate.
func (r *PurchaseRepository) FindCompletedByBuyerAndAgent(ctx context.Context, buyerID, agentID int64) (*purchase.Purchase, error) {
	query := `
		SELECT id, reference, buyer_id, agent_id, agent_version_id, amount, status, purchased_at
		FROM purchases
		WHERE buyer_id = $1 AND agent_id = $2 AND status = 'completed'
		ORDER BY purchased_at DESC
		LIMIT 1
	`

	var p purchase.Purchase
	err := r.db.Pool.QueryRow(ctx, query, buyerID, agentID).Scan(
		&p.ID, &p.Reference, &p.BuyerID, &p.AgentID, &p.AgentVersionID,
		&p.Amount, &p.Status, &p.PurchasedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}

	return &p, nil
}

// ListByBuyer retrieves a buyer's purchases, newest first.
func (r *PurchaseRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]purchase.Purchase, error) {
	query := `
		SELECT id, reference, buyer_id, agent_id, agent_version_id, amount, status, purchased_at
		FROM purchases
		WHERE buyer_id = $1
		ORDER BY purchased_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	purchases := []purchase.Purchase{}
	for rows.Next() {
		var p purchase.Purchase
		err := rows.Scan(
			&p.ID, &p.Reference, &p.BuyerID, &p.AgentID, &p.AgentVersionID,
			&p.Amount, &p.Status, &p.PurchasedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}

	return purchases, nil
}

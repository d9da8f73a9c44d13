// internal/repository/postgres/agent_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agentmarket-service/internal/domain/agent"
	xerrors "agentmarket-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const agentColumns = `id, seller_id, category_id, name, description, price,
	       status, rejection_reason, approved_at,
	       version, parent_agent_id, has_active_update,
	       view_count, purchase_count, created_at, updated_at`

type AgentRepository struct {
	db *DB
}

func NewAgentRepository(db *DB) *AgentRepository {
	return &AgentRepository{db: db}
}

func scanAgent(row pgx.Row, a *agent.Agent) error {
	return row.Scan(
		&a.ID, &a.SellerID, &a.CategoryID, &a.Name, &a.Description, &a.Price,
		&a.Status, &a.RejectionReason, &a.ApprovedAt,
		&a.Version, &a.ParentAgentID, &a.HasActiveUpdate,
		&a.ViewCount, &a.PurchaseCount, &a.CreatedAt, &a.UpdatedAt,
	)
}

// Create inserts a new agent row (a fresh draft or a draft version clone).
func (r *AgentRepository) Create(ctx context.Context, a *agent.Agent) error {
	query := `
		INSERT INTO agents (seller_id, category_id, name, description, price,
		                    status, version, parent_agent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		a.SellerID, a.CategoryID, a.Name, a.Description, a.Price,
		a.Status, a.Version, a.ParentAgentID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return nil
}

// CreateWithTx inserts a new agent row inside a transaction.
func (r *AgentRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, a *agent.Agent) error {
	query := `
		INSERT INTO agents (seller_id, category_id, name, description, price,
		                    status, version, parent_agent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		a.SellerID, a.CategoryID, a.Name, a.Description, a.Price,
		a.Status, a.Version, a.ParentAgentID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create agent version: %w", err)
	}

	return nil
}

// FindByID retrieves an agent by id.
func (r *AgentRepository) FindByID(ctx context.Context, id int64) (*agent.Agent, error) {
	query := fmt.Sprintf(`SELECT %s FROM agents WHERE id = $1`, agentColumns)

	var a agent.Agent
	err := scanAgent(r.db.Pool.QueryRow(ctx, query, id), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find agent: %w", err)
	}

	return &a, nil
}

// FindByIDForUpdateWithTx loads an agent row with a row lock, so a status
// transition reads and writes the same version of the row.
func (r *AgentRepository) FindByIDForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*agent.Agent, error) {
	query := fmt.Sprintf(`SELECT %s FROM agents WHERE id = $1 FOR UPDATE`, agentColumns)

	var a agent.Agent
	err := scanAgent(tx.QueryRow(ctx, query, id), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock agent: %w", err)
	}

	return &a, nil
}

// UpdateDetails updates the editable listing fields.
func (r *AgentRepository) UpdateDetails(ctx context.Context, a *agent.Agent) error {
	query := `
		UPDATE agents
		SET name = $1, description = $2, category_id = $3, price = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.Pool.Exec(ctx, query, a.Name, a.Description, a.CategoryID, a.Price, time.Now(), a.ID)
	if err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// UpdateStatusWithTx sets the agent status inside a transaction.
func (r *AgentRepository) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id int64, status agent.Status) error {
	query := `UPDATE agents SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := tx.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update agent status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// MarkApprovedWithTx records an approval: status, approval time, and a
// cleared rejection reason.
func (r *AgentRepository) MarkApprovedWithTx(ctx context.Context, tx pgx.Tx, id int64, approvedAt time.Time) error {
	query := `
		UPDATE agents
		SET status = $1, approved_at = $2, rejection_reason = NULL, updated_at = $3
		WHERE id = $4
	`

	result, err := tx.Exec(ctx, query, agent.StatusApproved, approvedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark agent approved: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// MarkRejectedWithTx records a rejection with its reason.
func (r *AgentRepository) MarkRejectedWithTx(ctx context.Context, tx pgx.Tx, id int64, reason string) error {
	query := `
		UPDATE agents
		SET status = $1, rejection_reason = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := tx.Exec(ctx, query, agent.StatusRejected, reason, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark agent rejected: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// SetHasActiveUpdateWithTx flips the pending-update flag on one row. Used
// when the row is already locked and known, as in NewVersion.
func (r *AgentRepository) SetHasActiveUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64, hasActiveUpdate bool) error {
	query := `UPDATE agents SET has_active_update = $1, updated_at = $2 WHERE id = $3`

	result, err := tx.Exec(ctx, query, hasActiveUpdate, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set has_active_update: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// FlagLineageUpdateWithTx flips the pending-update flag on the currently
// approved version of a lineage, whichever generation that is. The root id
// addresses the lineage because every version row points at the root.
// Matching zero rows is fine: the seller may have archived the listing while
// the replacement sat in the queue.
func (r *AgentRepository) FlagLineageUpdateWithTx(ctx context.Context, tx pgx.Tx, rootID int64, hasActiveUpdate bool) error {
	query := `
		UPDATE agents
		SET has_active_update = $1, updated_at = $2
		WHERE (id = $3 OR parent_agent_id = $3) AND status = 'approved'
	`

	if _, err := tx.Exec(ctx, query, hasActiveUpdate, time.Now(), rootID); err != nil {
		return fmt.Errorf("failed to flag lineage update: %w", err)
	}

	return nil
}

// SupersedeLineageWithTx retires whichever version of the lineage is still
// approved once its replacement goes live, keeping at most one publicly
// visible version per lineage. The freshly approved row is excluded so the
// statement can run after the approval write in the same transaction.
func (r *AgentRepository) SupersedeLineageWithTx(ctx context.Context, tx pgx.Tx, rootID, approvedID int64) error {
	query := `
		UPDATE agents
		SET status = 'archived', has_active_update = FALSE, updated_at = $1
		WHERE (id = $2 OR parent_agent_id = $2) AND status = 'approved' AND id <> $3
	`

	if _, err := tx.Exec(ctx, query, time.Now(), rootID, approvedID); err != nil {
		return fmt.Errorf("failed to supersede lineage: %w", err)
	}

	return nil
}

// IncrementPurchaseCountWithTx bumps the aggregate purchase counter in the
// same transaction as the purchase insert, so the counter cannot drift.
func (r *AgentRepository) IncrementPurchaseCountWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	query := `UPDATE agents SET purchase_count = purchase_count + 1, updated_at = $1 WHERE id = $2`

	result, err := tx.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to increment purchase count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// IncrementViewCount bumps the public view counter. Best effort; callers
// ignore the error.
func (r *AgentRepository) IncrementViewCount(ctx context.Context, id int64) error {
	query := `UPDATE agents SET view_count = view_count + 1 WHERE id = $1`

	_, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}

	return nil
}

// ListPublic retrieves publicly visible agents with filters and pagination.
func (r *AgentRepository) ListPublic(ctx context.Context, filters *agent.ListFilters) ([]agent.Agent, int64, error) {
	conditions := []string{"status = 'approved'", "has_active_update = FALSE"}
	args := []interface{}{}
	argPos := 1

	if filters.CategoryID > 0 {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argPos))
		args = append(args, filters.CategoryID)
		argPos++
	}

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM agents WHERE %s", whereClause)
	var total int64
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count agents: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM agents
		WHERE %s
		ORDER BY purchase_count DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, agentColumns, whereClause, argPos, argPos+1)

	args = append(args, filters.PageSize, offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	agents := []agent.Agent{}
	for rows.Next() {
		var a agent.Agent
		if err := scanAgent(rows, &a); err != nil {
			return nil, 0, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, a)
	}

	return agents, total, nil
}

// ListBySeller retrieves all of a seller's listings, newest first.
func (r *AgentRepository) ListBySeller(ctx context.Context, sellerID int64) ([]agent.Agent, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM agents
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`, agentColumns)

	rows, err := r.db.Pool.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller agents: %w", err)
	}
	defer rows.Close()

	agents := []agent.Agent{}
	for rows.Next() {
		var a agent.Agent
		if err := scanAgent(rows, &a); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, a)
	}

	return agents, nil
}

// ListUnderReview retrieves the moderation queue, oldest submission first.
func (r *AgentRepository) ListUnderReview(ctx context.Context) ([]agent.Agent, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM agents
		WHERE status = 'under_review'
		ORDER BY updated_at ASC
	`, agentColumns)

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list review queue: %w", err)
	}
	defer rows.Close()

	agents := []agent.Agent{}
	for rows.Next() {
		var a agent.Agent
		if err := scanAgent(rows, &a); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, a)
	}

	return agents, nil
}

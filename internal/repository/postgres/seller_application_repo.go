// internal/repository/postgres/seller_application_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agentmarket-service/internal/domain/seller"
	xerrors "agentmarket-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type SellerApplicationRepository struct {
	db *DB
}

func NewSellerApplicationRepository(db *DB) *SellerApplicationRepository {
	return &SellerApplicationRepository{db: db}
}

// Create inserts a pending application. A partial unique index allows at
// most one pending application per user; a violation maps to ErrConflict.
func (r *SellerApplicationRepository) Create(ctx context.Context, app *seller.Application) error {
	query := `
		INSERT INTO seller_applications (user_id, company_name, pitch, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query, app.UserID, app.CompanyName, app.Pitch, app.Status).
		Scan(&app.ID, &app.CreatedAt)
	if isUniqueViolation(err) {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create seller application: %w", err)
	}

	return nil
}

// FindByIDForUpdateWithTx loads an application with a row lock for review.
func (r *SellerApplicationRepository) FindByIDForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*seller.Application, error) {
	query := `
		SELECT id, user_id, company_name, pitch, status, reviewer_id, review_note, created_at, reviewed_at
		FROM seller_applications
		WHERE id = $1
		FOR UPDATE
	`

	var app seller.Application
	err := tx.QueryRow(ctx, query, id).Scan(
		&app.ID, &app.UserID, &app.CompanyName, &app.Pitch, &app.Status,
		&app.ReviewerID, &app.ReviewNote, &app.CreatedAt, &app.ReviewedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock seller application: %w", err)
	}

	return &app, nil
}

// MarkReviewedWithTx records the outcome and the reviewing admin.
func (r *SellerApplicationRepository) MarkReviewedWithTx(ctx context.Context, tx pgx.Tx, id int64, status seller.ApplicationStatus, reviewerID int64, note string) error {
	query := `
		UPDATE seller_applications
		SET status = $1, reviewer_id = $2, review_note = $3, reviewed_at = $4
		WHERE id = $5
	`

	result, err := tx.Exec(ctx, query, status, reviewerID, note, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark application reviewed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// FindByUser retrieves a user's applications, newest first.
func (r *SellerApplicationRepository) FindByUser(ctx context.Context, userID int64) ([]seller.Application, error) {
	query := `
		SELECT id, user_id, company_name, pitch, status, reviewer_id, review_note, created_at, reviewed_at
		FROM seller_applications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	return r.queryApplications(ctx, query, userID)
}

// ListPending retrieves the admin review queue, oldest first.
func (r *SellerApplicationRepository) ListPending(ctx context.Context) ([]seller.Application, error) {
	query := `
		SELECT id, user_id, company_name, pitch, status, reviewer_id, review_note, created_at, reviewed_at
		FROM seller_applications
		WHERE status = 'pending_review'
		ORDER BY created_at ASC
	`

	return r.queryApplications(ctx, query)
}

func (r *SellerApplicationRepository) queryApplications(ctx context.Context, query string, args ...interface{}) ([]seller.Application, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller applications: %w", err)
	}
	defer rows.Close()

	apps := []seller.Application{}
	for rows.Next() {
		var app seller.Application
		err := rows.Scan(
			&app.ID, &app.UserID, &app.CompanyName, &app.Pitch, &app.Status,
			&app.ReviewerID, &app.ReviewNote, &app.CreatedAt, &app.ReviewedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seller application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, nil
}

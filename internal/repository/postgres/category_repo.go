// internal/repository/postgres/category_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"agentmarket-service/internal/domain/category"
	xerrors "agentmarket-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type CategoryRepository struct {
	db *DB
}

func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	query := `SELECT id, slug, name FROM categories ORDER BY name ASC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []category.Category{}
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*category.Category, error) {
	query := `SELECT id, slug, name FROM categories WHERE id = $1`

	var c category.Category
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Slug, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	return &c, nil
}

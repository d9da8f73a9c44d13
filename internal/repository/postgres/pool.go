// Package postgres contains the PostgreSQL implementations of the
// repositories.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is a minimal abstraction over a Postgres connection pool, used by
// the repositories. It is implemented by *pgxpool.Pool and
// pgxmock.PgxPoolIface.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// DB wraps the pool to satisfy repository constructors and allow testing.
type DB struct {
	Pool PgxPool
}

func NewDB(pool PgxPool) *DB {
	return &DB{Pool: pool}
}

// Begin starts a transaction. Transactional repository methods take the
// returned pgx.Tx through their ...WithTx variants.
func (db *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	return db.Pool.Begin(ctx)
}

// Close shuts down the underlying pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// isUniqueViolation reports whether the error is a unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}

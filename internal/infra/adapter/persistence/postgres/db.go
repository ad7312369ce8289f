package postgres

import (
	"context"
	"database/sql"
)

// DB is the subset of database/sql operations the repositories use. Both
// *sql.DB and *circuitbreaker.DBCircuitBreaker satisfy it, so the caller
// decides whether repository queries run behind the database circuit breaker.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

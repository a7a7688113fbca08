// Package repository is the data access layer. The engine reads its inputs
// here once per run; nothing writes back mid-run.
package repository

import (
	"context"
	"database/sql"
)

// DB is the query surface the repositories need.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Scanner abstracts sql.Row and sql.Rows for shared scan helpers.
type Scanner interface {
	Scan(dest ...interface{}) error
}

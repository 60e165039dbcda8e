package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DatabaseIface defines the database interface for testing
type DatabaseIface interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Pool is the connection handle the supervisor manages. Satisfied by
// *pgxpool.Pool and by pgxmock pools in tests.
type Pool interface {
	DatabaseIface
	Ping(ctx context.Context) error
	Close()
}

// errRow is a pgx.Row that fails with a fixed error on Scan. Returned
// when a query is issued while the store connection is down.
type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error {
	return r.err
}

// timedRow releases the query deadline once the row has been scanned
type timedRow struct {
	row    pgx.Row
	cancel context.CancelFunc
}

func (r timedRow) Scan(dest ...any) error {
	defer r.cancel()
	return r.row.Scan(dest...)
}

// timedRows releases the query deadline once the rows are closed
type timedRows struct {
	pgx.Rows
	cancel context.CancelFunc
}

func (r timedRows) Close() {
	r.Rows.Close()
	r.cancel()
}

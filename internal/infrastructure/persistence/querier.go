package persistence

import (
	"context"
	"database/sql"
)

// querier is the subset of database/sql operations shared by *sql.DB and
// *sql.Tx. Repositories resolve their executor per call: if the context
// carries a transaction (injected by TransactionManager), the statement
// joins it, otherwise it runs on the pool.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// resolveQuerier returns the transaction from ctx when present, else db.
func resolveQuerier(ctx context.Context, tm *TransactionManager, db *sql.DB) querier {
	if tx := tm.ExtractTx(ctx); tx != nil {
		return tx
	}
	return db
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventboard/internal/domain"
)

type txContextKey struct{}

// DBTX is the subset of *sql.DB and *sql.Tx the repositories use.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// querier returns the transaction carried by ctx, or db when there is none.
// Repositories call this so the same method works inside and outside a
// transaction.
func querier(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := ctx.Value(txContextKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

type transactor struct {
	DB *sql.DB
}

// NewTransactor returns a domain.Transactor backed by database/sql
// transactions. Nested calls join the transaction already in the context.
func NewTransactor(db *sql.DB) domain.Transactor {
	return &transactor{DB: db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return classifyTxError(err)
	}
	if err := tx.Commit(); err != nil {
		return classifyTxError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// Postgres error codes the driver raises when concurrent transactions collide.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// classifyTxError tags driver-level serialization and deadlock failures with
// domain.ErrTxSerialization so services can retry them.
func classifyTxError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == pgSerializationFailure || pqErr.Code == pgDeadlockDetected {
			return fmt.Errorf("%w: %v", domain.ErrTxSerialization, err)
		}
	}
	return err
}

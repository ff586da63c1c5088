package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
)

// Runner is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// RunnerFromContext returns the transaction bound to ctx by UnitOfWork.Do,
// or fallback when ctx carries none.
func RunnerFromContext(ctx context.Context, fallback Runner) Runner {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return fallback
}

// InTransaction reports whether ctx carries a transaction.
func InTransaction(ctx context.Context) bool {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return ok && tx != nil
}

// Transactor runs fn as one atomic unit.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// txConn is the dedicated connection a unit of work runs on. *sql.Conn
// satisfies it.
type txConn interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

// UnitOfWork scopes one database transaction to one inbound request.
type UnitOfWork struct {
	db      *sql.DB
	logger  *log.Logger
	opts    *sql.TxOptions
	acquire func(ctx context.Context) (txConn, error)
}

// NewUnitOfWork creates a UnitOfWork over the shared pool.
func NewUnitOfWork(db *sql.DB, logger *log.Logger) *UnitOfWork {
	return &UnitOfWork{
		db:     db,
		logger: logger,
		acquire: func(ctx context.Context) (txConn, error) {
			return db.Conn(ctx)
		},
	}
}

// Do runs fn inside a transaction on a dedicated connection. The context passed
// to fn carries the transaction, so every store call made with it joins the
// same unit. fn returning nil commits; an error or a panic rolls back and the
// original error (or panic) is passed through unchanged.
//
// The connection goes back to the pool exactly once, after the transaction is
// resolved. A failure to release it is joined onto the returned error.
//
// A ctx that already carries a transaction runs fn in that transaction.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if InTransaction(ctx) {
		return fn(ctx)
	}

	conn, err := u.acquire(ctx)
	if err != nil {
		return queryErr("acquire connection", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			u.logger.Printf("ERROR: unit of work: releasing connection failed: %v", cerr)
			err = errors.Join(err, fmt.Errorf("store: release connection: %w", cerr))
		}
	}()

	tx, err := conn.BeginTx(ctx, u.opts)
	if err != nil {
		return queryErr("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			u.rollback(tx, fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		u.rollback(tx, err)
		return err
	}

	// A cancelled ctx has already rolled the transaction back in the driver;
	// Commit then reports it and the caller sees a failure, never a silent loss.
	if cerr := tx.Commit(); cerr != nil {
		return queryErr("commit", cerr)
	}
	return nil
}

func (u *UnitOfWork) rollback(tx *sql.Tx, cause error) {
	if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
		u.logger.Printf("ERROR: unit of work: rollback failed: %v (original error: %v)", rerr, cause)
		return
	}
	u.logger.Printf("WARN: unit of work: rolled back: %v", cause)
}

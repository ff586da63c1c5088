package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Predefined errors for store operations
var (
	ErrCategoryNotFound    = errors.New("store: category not found")
	ErrCategorySlugExists  = errors.New("store: category slug already exists")
	ErrProductNotFound     = errors.New("store: product not found")
	ErrProductSlugExists   = errors.New("store: product slug already exists")
	ErrReviewNotFound      = errors.New("store: review not found")
	ErrOptionNotFound      = errors.New("store: product option not found")
	ErrOptionGroupNotFound = errors.New("store: product option group not found")
)

// QueryError is returned when the database itself fails. It unwraps to the
// driver error.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("store: %s failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func queryErr(op string, err error) error {
	return &QueryError{Op: op, Err: err}
}

// isUniqueViolation reports whether err is a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

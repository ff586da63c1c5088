package store

import (
	"context"
	"database/sql"
	"log"
	"strings"
)

// PostgresStore implements the catalog storer interfaces using PostgreSQL.
// Every method runs on the transaction bound to its context when there is
// one, and on the shared pool otherwise.
type PostgresStore struct {
	db     *sql.DB
	logger *log.Logger
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB, logger *log.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

func (s *PostgresStore) runner(ctx context.Context) Runner {
	return RunnerFromContext(ctx, s.db)
}

// Ping checks that the pool can reach the database.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	s.logger.Println("INFO: Closing database connection pool...")
	if err := s.db.Close(); err != nil {
		s.logger.Printf("ERROR: Failed to close database connection pool: %v", err)
		return err
	}
	s.logger.Println("INFO: Database connection pool closed successfully.")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// sortOrder whitelists ASC and falls back to DESC.
func sortOrder(order string) string {
	if strings.EqualFold(order, "ASC") {
		return "ASC"
	}
	return "DESC"
}

// escapeLike escapes LIKE wildcards so the value matches literally.
func escapeLike(v string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(v)
}

package store

import (
	"bytes"
	"database/sql"
	"log"
	"testing"
	"time"

	"catalog-service/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// Helper function to create a mock DB and PostgresStore for testing
func newMockDBAndStore(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	store := NewPostgresStore(db, log.New(&bytes.Buffer{}, "", 0))
	require.NotNil(t, store, "Store should not be nil")

	return db, mock, store
}

// Helper function to get a pointer (useful for optional fields in domain structs)
func PtrTo[T any](v T) *T {
	return &v
}

var productRowColumns = []string{
	"id", "name", "slug", "short_description", "full_description",
	"seller_id", "brand_id", "status", "created_at", "updated_at",
}

func productRow(rows *sqlmock.Rows, p domain.Product) *sqlmock.Rows {
	return rows.AddRow(p.ID, p.Name, p.Slug, p.ShortDescription, p.FullDescription,
		p.SellerID, p.BrandID, string(p.Status), p.CreatedAt, p.UpdatedAt)
}

func sampleProduct() domain.Product {
	now := time.Now().Truncate(time.Millisecond)
	return domain.Product{
		ID:               "6f1c1e0a-3f1b-4c1e-9a57-0c9b0d2f1a01",
		Name:             "Wireless Mouse",
		Slug:             "wireless-mouse-black",
		ShortDescription: PtrTo("Quiet clicks"),
		SellerID:         PtrTo("seller-1"),
		BrandID:          PtrTo("brand-1"),
		Status:           domain.ProductStatusSelling,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

package repository

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

var listingRowColumns = []string{
	"id", "owner_id", "title", "platform", "username", "niche",
	"followers_count", "engagement_rate", "monthly_views", "price", "description",
	"verified", "monetized", "country", "age_range", "images", "status", "featured",
	"is_credential_submitted", "is_credential_changed", "created_at", "updated_at",
}

var ownerRowColumns = []string{"owner_id", "name", "email", "image"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func listingValues(id, ownerID, status string, images string, changed bool) []driver.Value {
	return []driver.Value{
		id, ownerID, "Travel page", "instagram", "alice", "travel",
		float64(12000), float64(3.5), float64(50000), "250.00", "Nice audience",
		true, false, "ID", "18-24", []byte(images), status, false,
		false, changed, fixedTime, fixedTime,
	}
}

func listingWithOwnerColumns() []string {
	return append(append([]string{}, listingRowColumns...), ownerRowColumns...)
}

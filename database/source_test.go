package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"dinefind/logger"
	"dinefind/models"
)

func newTestDB(t *testing.T) *Source {
	t.Helper()

	ctx := context.Background()
	db, err := Connect(ctx, DriverSQLite, ":memory:", logger.NewNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	return NewSource(db, 100, logger.NewNoopLogger())
}

func TestConnectRejectsBadInput(t *testing.T) {
	_, err := Connect(context.Background(), DriverPostgres, "", logger.NewNoopLogger())
	require.ErrorContains(t, err, "uri not set")

	_, err = Connect(context.Background(), "mysql", "root@/db", logger.NewNoopLogger())
	require.ErrorContains(t, err, "unsupported")
}

func TestSourceRoundTripKeepsOrder(t *testing.T) {
	ctx := context.Background()
	src := newTestDB(t)

	records := []models.Restaurant{
		{DisplayName: "Zaika, Alkapuri", Lat: "22.31", Lon: "73.17", Address: models.Address{Road: "RC Dutt Road", City: "Vadodara"}},
		{DisplayName: "Aroma Cafe", Lat: "22.30", Lon: "73.18"},
		{DisplayName: "Bhavna Farsan", Lat: "bad", Lon: "73.20", Address: models.Address{Suburb: "Sayajigunj"}},
	}
	require.NoError(t, Store(ctx, src.db, DriverSQLite, records))

	got, err := src.Restaurants(ctx)
	require.NoError(t, err)
	require.Equal(t, records, got)
	require.Equal(t, "sql", src.Name())
}

func TestSourceLimit(t *testing.T) {
	ctx := context.Background()
	src := newTestDB(t)

	records := make([]models.Restaurant, 5)
	for i := range records {
		records[i] = models.Restaurant{DisplayName: string(rune('A' + i))}
	}
	require.NoError(t, Store(ctx, src.db, DriverSQLite, records))

	src.limit = 2
	got, err := src.Restaurants(ctx)
	require.NoError(t, err)
	require.Equal(t, records[:2], got)
}

func TestStoreReplacesContents(t *testing.T) {
	ctx := context.Background()
	src := newTestDB(t)

	require.NoError(t, Store(ctx, src.db, DriverSQLite, []models.Restaurant{{DisplayName: "old"}}))
	require.NoError(t, Store(ctx, src.db, DriverSQLite, []models.Restaurant{{DisplayName: "new"}}))

	got, err := src.Restaurants(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.Restaurant{{DisplayName: "new"}}, got)
}

func TestSourceMissingTable(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(ctx, DriverSQLite, ":memory:", logger.NewNoopLogger())
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSource(db, 10, logger.NewNoopLogger()).Restaurants(ctx)
	require.ErrorContains(t, err, "restaurants query")
}

func TestPlaceholders(t *testing.T) {
	require.Equal(t, "$1, $2, $3", placeholders(DriverPostgres, 3))
	require.Equal(t, "?, ?", placeholders(DriverSQLite, 2))
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dinefind/logger"
	"dinefind/models"
)

// Schema creates the restaurants table read by Source. Rows are returned in
// position order, which plays the role of the search API's result order.
const Schema = `
CREATE TABLE IF NOT EXISTS restaurants (
	position     INTEGER PRIMARY KEY,
	display_name TEXT NOT NULL,
	lat          TEXT NOT NULL DEFAULT '',
	lon          TEXT NOT NULL DEFAULT '',
	road         TEXT,
	suburb       TEXT,
	city         TEXT
)`

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create restaurants table: %w", err)
	}
	return nil
}

// Source serves the restaurant set from a SQL table. It is read-only.
type Source struct {
	db     *sql.DB
	limit  int
	logger logger.Logger
}

func NewSource(db *sql.DB, limit int, log logger.Logger) *Source {
	return &Source{db: db, limit: limit, logger: log}
}

func (s *Source) Name() string {
	return "sql"
}

// Restaurants reads up to limit rows ordered by position. Rows that fail to
// scan are skipped.
func (s *Source) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	query := fmt.Sprintf(`
		SELECT display_name, lat, lon, COALESCE(road, ''), COALESCE(suburb, ''), COALESCE(city, '')
		FROM restaurants
		ORDER BY position ASC
		LIMIT %d`, s.limit)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("restaurants query: %w", err)
	}
	defer rows.Close()

	results := []models.Restaurant{}
	for rows.Next() {
		var r models.Restaurant
		if err := rows.Scan(&r.DisplayName, &r.Lat, &r.Lon, &r.Address.Road, &r.Address.Suburb, &r.Address.City); err != nil {
			s.logger.Warn("skipping unreadable restaurant row", zap.Error(err))
			continue
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("restaurants query: %w", err)
	}

	return results, nil
}

// Store replaces the table contents with records, keeping their order.
func Store(ctx context.Context, db *sql.DB, driver string, records []models.Restaurant) error {
	insert := fmt.Sprintf(`
		INSERT INTO restaurants (position, display_name, lat, lon, road, suburb, city)
		VALUES (%s)`, placeholders(driver, 7))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM restaurants"); err != nil {
		return fmt.Errorf("clear restaurants: %w", err)
	}

	for i, r := range records {
		_, err := tx.ExecContext(ctx, insert, i, r.DisplayName, r.Lat, r.Lon, nullable(r.Address.Road), nullable(r.Address.Suburb), nullable(r.Address.City))
		if err != nil {
			return fmt.Errorf("insert restaurant %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// placeholders returns n bind parameters in the driver's syntax.
func placeholders(driver string, n int) string {
	params := make([]string, n)
	for i := range params {
		if driver == DriverPostgres {
			params[i] = fmt.Sprintf("$%d", i+1)
		} else {
			params[i] = "?"
		}
	}
	return strings.Join(params, ", ")
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

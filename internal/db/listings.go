package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

// UpsertListing stores a listing keyed by dealer and stock number. The full
// listing is kept as JSONB so feed schema drift never needs a migration.
func (db *DB) UpsertListing(ctx context.Context, listing *models.MotorcycleListing) error {
	payload, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}

	query := `
		INSERT INTO listings (dealer_id, stock_number, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (dealer_id, stock_number)
		DO UPDATE SET payload = $3, updated_at = now()
	`

	if _, err := db.ExecContext(ctx, query, listing.DealerID, listing.StockNumber, payload); err != nil {
		return fmt.Errorf("failed to upsert listing: %w", err)
	}
	return nil
}

// GetListing loads one listing by stock number.
func (db *DB) GetListing(ctx context.Context, stockNumber string) (*models.MotorcycleListing, error) {
	query := `SELECT payload FROM listings WHERE stock_number = $1`

	var payload []byte
	err := db.QueryRowContext(ctx, query, stockNumber).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("listing not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	var listing models.MotorcycleListing
	if err := json.Unmarshal(payload, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse listing payload: %w", err)
	}
	return &listing, nil
}

// ListListings returns the most recently updated listings, capped by limit.
func (db *DB) ListListings(ctx context.Context, limit int) ([]*models.MotorcycleListing, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `SELECT payload FROM listings ORDER BY updated_at DESC LIMIT $1`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.MotorcycleListing
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		var listing models.MotorcycleListing
		if err := json.Unmarshal(payload, &listing); err != nil {
			return nil, fmt.Errorf("failed to parse listing payload: %w", err)
		}
		listings = append(listings, &listing)
	}
	return listings, rows.Err()
}

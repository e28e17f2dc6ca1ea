package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// schemaStatements create the places table when it does not exist yet. The
// id column autoincrements as the sqlite rowid alias; postgres needs an
// explicit sequence, hence the per-driver table statement. Optional columns
// missing from older deployments are handled by the repository's column
// probe, not here.
func schemaStatements(driver string) []string {
	idCol := "id INTEGER PRIMARY KEY"
	if driver == "postgres" {
		idCol = "id BIGSERIAL PRIMARY KEY"
	}
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS places (
		%s,
		name TEXT NOT NULL,
		tambon TEXT NOT NULL DEFAULT '',
		category TEXT,
		description TEXT,
		highlight TEXT,
		latitude REAL,
		longitude REAL,
		image_url TEXT,
		image_urls TEXT
	)`, idCol),
		`CREATE INDEX IF NOT EXISTS idx_places_name ON places (name)`,
		`CREATE INDEX IF NOT EXISTS idx_places_tambon ON places (tambon)`,
	}
}

// EnsureSchema creates the places table and its indexes if missing. driver
// is "sqlite" or "postgres".
func EnsureSchema(ctx context.Context, db DB, driver string) error {
	for _, stmt := range schemaStatements(driver) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// InsertPlace writes one place row. Used by the seed command; the serving
// path never writes.
func InsertPlace(ctx context.Context, db DB, p Place) error {
	var imageURLs interface{}
	if len(p.ImageURLs) > 0 {
		raw, err := json.Marshal(p.ImageURLs)
		if err != nil {
			return fmt.Errorf("encode image urls: %w", err)
		}
		imageURLs = string(raw)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO places (name, tambon, category, description, highlight, latitude, longitude, image_url, image_urls)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.Name, p.Tambon, nullIfEmpty(p.Category),
		nullIfEmpty(p.Description), nullIfEmpty(p.Highlight),
		p.Latitude, p.Longitude, nullIfEmpty(p.ImageURL), imageURLs,
	)
	if err != nil {
		return fmt.Errorf("insert place: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

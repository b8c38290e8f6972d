// Package catalog serves the species, breed, and appointment-category
// lookups backing the intake form. Lookups read from the local catalog
// tables first and fall back to the scheduling backend on a miss.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/homevet/intake-platform/internal/vetdata"
)

// Repository provides catalog persistence on the practice database.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListSpecies returns the cached species catalog, oldest-first insertion
// order preserved by position.
func (r *Repository) ListSpecies(ctx context.Context, practiceID string) ([]vetdata.CatalogItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name FROM species
		WHERE practice_id = $1 ORDER BY position, name`, practiceID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list species: %w", err)
	}
	defer rows.Close()

	var out []vetdata.CatalogItem
	for rows.Next() {
		var item vetdata.CatalogItem
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, fmt.Errorf("catalog: scan species: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ListBreeds returns cached breeds for one species.
func (r *Repository) ListBreeds(ctx context.Context, practiceID, speciesID string) ([]vetdata.Breed, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, species_id FROM breeds
		WHERE practice_id = $1 AND species_id = $2 ORDER BY name`, practiceID, speciesID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list breeds: %w", err)
	}
	defer rows.Close()

	var out []vetdata.Breed
	for rows.Next() {
		var b vetdata.Breed
		if err := rows.Scan(&b.ID, &b.Name, &b.Species); err != nil {
			return nil, fmt.Errorf("catalog: scan breed: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ReplaceSpecies swaps the cached species set for a practice in one
// transaction, keeping backend order as position.
func (r *Repository) ReplaceSpecies(ctx context.Context, practiceID string, items []vetdata.CatalogItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin replace species: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM species WHERE practice_id = $1`, practiceID); err != nil {
		return fmt.Errorf("catalog: clear species: %w", err)
	}
	now := time.Now().UTC()
	for i, item := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO species (id, practice_id, name, position, refreshed_at)
			VALUES ($1, $2, $3, $4, $5)`,
			item.ID, practiceID, item.Name, i, now); err != nil {
			return fmt.Errorf("catalog: insert species %s: %w", item.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit replace species: %w", err)
	}
	return nil
}

// ReplaceBreeds swaps the cached breed set for one species.
func (r *Repository) ReplaceBreeds(ctx context.Context, practiceID, speciesID string, breeds []vetdata.Breed) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin replace breeds: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM breeds WHERE practice_id = $1 AND species_id = $2`, practiceID, speciesID); err != nil {
		return fmt.Errorf("catalog: clear breeds: %w", err)
	}
	now := time.Now().UTC()
	for _, b := range breeds {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO breeds (id, practice_id, species_id, name, refreshed_at)
			VALUES ($1, $2, $3, $4, $5)`,
			b.ID, practiceID, speciesID, b.Name, now); err != nil {
			return fmt.Errorf("catalog: insert breed %s: %w", b.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit replace breeds: %w", err)
	}
	return nil
}

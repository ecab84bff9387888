package storage

import (
	"fmt"
	"time"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// RegisterSymbols upserts the tracked symbol descriptors so snapshot rows can
// be joined back to names and sectors.
func (d *PostgresDB) RegisterSymbols(symbols []models.MSymbol) error {
	if len(symbols) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewDatabaseError("begin", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (symbol, name, sector, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			updated_at = EXCLUDED.updated_at
	`, d.table("symbols"))

	stmt, err := tx.Prepare(query)
	if err != nil {
		return helpers.NewDatabaseError("prepare symbols", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, s := range symbols {
		if _, err := stmt.Exec(s.Ticker, s.Name, s.Sector, now); err != nil {
			return helpers.NewDatabaseError("register "+s.Ticker, err)
		}
	}

	return tx.Commit()
}

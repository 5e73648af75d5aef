package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lazypower/halflife/internal/intake"
)

// LoadDrinks returns every persisted drink in insertion order.
func (db *DB) LoadDrinks() ([]intake.Drink, error) {
	rows, err := db.Query(`
		SELECT id, name, volume_ml, caffeine_mg, consumed_at
		FROM drinks ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query drinks: %w", err)
	}
	defer rows.Close()

	var drinks []intake.Drink
	for rows.Next() {
		var (
			d          intake.Drink
			id         string
			consumedAt int64
		)
		if err := rows.Scan(&id, &d.Name, &d.VolumeMl, &d.CaffeineMg, &consumedAt); err != nil {
			return nil, fmt.Errorf("scan drink: %w", err)
		}
		d.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("drink id %q: %w", id, err)
		}
		d.ConsumedAt = time.UnixMilli(consumedAt).UTC()
		drinks = append(drinks, d)
	}
	return drinks, rows.Err()
}

// SaveDrinks replaces the persisted drinks with the given sequence in one transaction.
func (db *DB) SaveDrinks(drinks []intake.Drink) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin save drinks: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM drinks`); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete drinks: %w", err)
	}

	for i, d := range drinks {
		if _, err := tx.Exec(`
			INSERT INTO drinks (id, position, name, volume_ml, caffeine_mg, consumed_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, d.ID.String(), i, d.Name, d.VolumeMl, d.CaffeineMg, d.ConsumedAt.UnixMilli()); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert drink %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save drinks: %w", err)
	}
	return nil
}

// CountDrinks returns the number of persisted drinks.
func (db *DB) CountDrinks() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM drinks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count drinks: %w", err)
	}
	return n, nil
}

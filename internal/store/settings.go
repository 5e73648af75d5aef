package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lazypower/halflife/internal/engine"
)

// LoadSettings returns the saved model settings. ok is false when none have been saved.
func (db *DB) LoadSettings() (engine.Settings, bool, error) {
	var s engine.Settings
	err := db.QueryRow(`
		SELECT half_life_hours, volume_of_distribution, body_weight_kg
		FROM settings WHERE id = 1
	`).Scan(&s.HalfLifeHours, &s.VolumeOfDistribution, &s.BodyWeightKg)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Settings{}, false, nil
	}
	if err != nil {
		return engine.Settings{}, false, fmt.Errorf("get settings: %w", err)
	}
	return s, true, nil
}

// SaveSettings upserts the single settings row.
func (db *DB) SaveSettings(s engine.Settings) error {
	_, err := db.Exec(`
		INSERT INTO settings (id, half_life_hours, volume_of_distribution, body_weight_kg, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			half_life_hours = excluded.half_life_hours,
			volume_of_distribution = excluded.volume_of_distribution,
			body_weight_kg = excluded.body_weight_kg,
			updated_at = excluded.updated_at
	`, s.HalfLifeHours, s.VolumeOfDistribution, s.BodyWeightKg, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

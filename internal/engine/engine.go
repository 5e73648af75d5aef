package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lazypower/halflife/internal/intake"
)

// SettingsBackend persists model settings alongside the drinks.
type SettingsBackend interface {
	// LoadSettings reports ok=false when nothing has been saved yet.
	LoadSettings() (s Settings, ok bool, err error)
	SaveSettings(s Settings) error
}

// Engine ties the intake store to the decay model. Every read recomputes
// from the current drinks and settings; nothing is cached.
type Engine struct {
	Drinks *intake.Store

	backend SettingsBackend
	log     *slog.Logger

	mu       sync.RWMutex
	settings Settings
}

// Snapshot is everything a view needs to render one moment.
type Snapshot struct {
	At       time.Time      `json:"at"`
	Drinks   []intake.Drink `json:"-"`
	Settings Settings       `json:"settings"`
	Series   Series         `json:"series"`
	Level    float64        `json:"level"`
}

// New creates an Engine. Invalid defaults fall back to DefaultSettings.
// backend may be nil, in which case settings live for the process only.
func New(drinks *intake.Store, backend SettingsBackend, defaults Settings, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if err := defaults.Validate(); err != nil {
		log.Warn("invalid default settings, using built-in defaults", "error", err)
		defaults = DefaultSettings()
	}
	return &Engine{
		Drinks:   drinks,
		backend:  backend,
		log:      log,
		settings: defaults,
	}
}

// Load reads persisted drinks and settings. Unreadable or invalid settings
// are logged and the current ones kept.
func (e *Engine) Load() {
	e.Drinks.Load()

	if e.backend == nil {
		return
	}
	s, ok, err := e.backend.LoadSettings()
	switch {
	case err != nil:
		e.log.Warn("load settings failed, keeping defaults", "error", err)
	case !ok:
		// nothing saved yet
	case s.Validate() != nil:
		e.log.Warn("persisted settings invalid, keeping defaults", "error", s.Validate())
	default:
		e.mu.Lock()
		e.settings = s
		e.mu.Unlock()
	}
}

// LogDrink validates req and appends the resulting drink.
func (e *Engine) LogDrink(req DrinkRequest, now time.Time) (intake.Drink, error) {
	d, err := req.Resolve(now)
	if err != nil {
		return intake.Drink{}, err
	}
	stored, err := e.Drinks.Append(d)
	if err != nil {
		return intake.Drink{}, fmt.Errorf("engine.LogDrink: %w", err)
	}
	e.log.Debug("drink logged", "id", stored.ID, "name", stored.Name, "caffeine_mg", stored.CaffeineMg)
	return stored, nil
}

// RemoveDrink deletes a drink by ID.
func (e *Engine) RemoveDrink(id uuid.UUID) error {
	if err := e.Drinks.Remove(id); err != nil {
		return fmt.Errorf("engine.RemoveDrink: %w", err)
	}
	return nil
}

// RemoveDrinkAt deletes the drink at a 0-based position.
func (e *Engine) RemoveDrinkAt(index int) error {
	if err := e.Drinks.RemoveAt(index); err != nil {
		return fmt.Errorf("engine.RemoveDrinkAt: %w", err)
	}
	return nil
}

// ClearDrinks removes every drink.
func (e *Engine) ClearDrinks() error {
	if err := e.Drinks.Clear(); err != nil {
		return fmt.Errorf("engine.ClearDrinks: %w", err)
	}
	return nil
}

// Settings returns the current model settings.
func (e *Engine) Settings() Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// UpdateSettings applies p, persists the result and makes it current.
// Invalid values are rejected with ErrInvalidSettings and change nothing.
func (e *Engine) UpdateSettings(p SettingsPatch) (Settings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := p.Apply(e.settings)
	if err != nil {
		return Settings{}, err
	}
	if e.backend != nil {
		if err := e.backend.SaveSettings(next); err != nil {
			return Settings{}, fmt.Errorf("engine.UpdateSettings: %w", err)
		}
	}
	e.settings = next
	return next, nil
}

// Series computes the hourly series for anchor's day.
func (e *Engine) Series(anchor time.Time) Series {
	return ComputeSeries(e.Drinks.All(), e.Settings(), anchor)
}

// Level computes the total concentration at now.
func (e *Engine) Level(now time.Time) float64 {
	return CurrentLevel(e.Drinks.All(), e.Settings(), now)
}

// Snapshot computes the series for now's day and the level at now from a
// single consistent read of drinks and settings.
func (e *Engine) Snapshot(now time.Time) Snapshot {
	drinks := e.Drinks.All()
	s := e.Settings()
	return Snapshot{
		At:       now,
		Drinks:   drinks,
		Settings: s,
		Series:   ComputeSeries(drinks, s, now),
		Level:    CurrentLevel(drinks, s, now),
	}
}

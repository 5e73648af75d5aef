package cli

import (
	"fmt"
	"time"

	"github.com/lazypower/halflife/internal/engine"
	"github.com/lazypower/halflife/internal/intake"
	"github.com/lazypower/halflife/internal/store"
)

// now is the CLI clock. Tests replace it.
var now = time.Now

// openDB opens the configured database, falling back to ~/.halflife/halflife.db.
func (a *app) openDB() (*store.DB, error) {
	dbPath := a.cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// openEngine opens the database and loads drinks and settings from it.
// The caller closes the returned DB.
func (a *app) openEngine() (*engine.Engine, *store.DB, error) {
	db, err := a.openDB()
	if err != nil {
		return nil, nil, err
	}
	eng := engine.New(intake.NewStore(db, a.log), db, a.cfg.Model, a.log)
	eng.Load()
	return eng, db, nil
}

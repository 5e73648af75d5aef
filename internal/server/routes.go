package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lazypower/halflife/internal/engine"
	"github.com/lazypower/halflife/internal/intake"
)

const maxBodyBytes = 1 << 20

type drinkJSON struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	VolumeMl   float64   `json:"volume_ml"`
	CaffeineMg float64   `json:"caffeine_mg"`
	ConsumedAt time.Time `json:"consumed_at"`
}

func toDrinkJSON(d intake.Drink) drinkJSON {
	return drinkJSON{
		ID:         d.ID,
		Name:       d.Name,
		VolumeMl:   d.VolumeMl,
		CaffeineMg: d.CaffeineMg,
		ConsumedAt: d.ConsumedAt,
	}
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"serving_ml": intake.StandardServingMl,
		"items":      intake.Catalog(),
	})
}

func (s *Server) handleListDrinks(w http.ResponseWriter, r *http.Request) {
	drinks := s.engine.Drinks.All()
	out := make([]drinkJSON, len(drinks))
	for i, d := range drinks {
		out[i] = toDrinkJSON(d)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(out),
		"drinks": out,
	})
}

func (s *Server) handleLogDrink(w http.ResponseWriter, r *http.Request) {
	var req engine.DrinkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	d, err := s.engine.LogDrink(req, s.now())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toDrinkJSON(d))
}

func (s *Server) handleRemoveDrink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid drink id")
		return
	}
	if err := s.engine.RemoveDrink(id); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearDrinks(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.ClearDrinks(); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Settings())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch engine.SettingsPatch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&patch); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	settings, err := s.engine.UpdateSettings(patch)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	at, err := s.queryTime(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"at":    at,
		"level": s.engine.Level(at),
		"unit":  "mg/L",
	})
}

// handleChart returns the hourly series for one day. The day is taken from
// ?date=YYYY-MM-DD (server local time), else from ?at= or now. level is
// always the concentration at ?at= or now.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	at, err := s.queryTime(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	anchor := at
	if v := r.URL.Query().Get("date"); v != "" {
		day, err := time.ParseInLocation(time.DateOnly, v, at.Location())
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		anchor = day
	}

	snap := s.engine.Snapshot(at)
	series := snap.Series
	if !engine.DayStart(anchor).Equal(engine.DayStart(at)) {
		series = s.engine.Series(anchor)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"labels":   engine.HourLabels(),
		"series":   series,
		"level":    snap.Level,
		"anchor":   engine.DayStart(anchor),
		"settings": snap.Settings,
	})
}

// queryTime reads ?at= as RFC 3339, defaulting to the server clock.
func (s *Server) queryTime(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("at")
	if v == "" {
		return s.now(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, errors.New("at must be an RFC 3339 timestamp")
	}
	return t, nil
}

func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrValidation), errors.Is(err, engine.ErrInvalidSettings):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, intake.ErrNotFound), errors.Is(err, intake.ErrIndexOutOfRange):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, intake.ErrLoadFailed):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

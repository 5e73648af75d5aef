package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lazypower/halflife/internal/engine"
	"github.com/lazypower/halflife/internal/store"
)

// Options tune a Server. The zero value is usable.
type Options struct {
	Log *slog.Logger
	// CORSOrigins lists origins allowed cross-origin access. Empty disables CORS.
	CORSOrigins []string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Server is the halflife HTTP API server.
type Server struct {
	engine  *engine.Engine
	db      *store.DB
	log     *slog.Logger
	now     func() time.Time
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server over eng. db is only used for health reporting
// and may be nil when the engine is not database backed.
func New(eng *engine.Engine, db *store.DB, version string, opts Options) *Server {
	s := &Server{
		engine:  eng,
		db:      db,
		log:     opts.Log,
		now:     opts.Now,
		version: version,
		started: time.Now(),
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.routes(opts.CORSOrigins)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(corsOrigins []string) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewSlogLogger(s.log))
	r.Use(middleware.Recoverer)
	if len(corsOrigins) > 0 {
		r.Use(NewCORSHandler(corsOrigins))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/catalog", s.handleCatalog)

		r.Get("/drinks", s.handleListDrinks)
		r.Post("/drinks", s.handleLogDrink)
		r.Delete("/drinks", s.handleClearDrinks)
		r.Delete("/drinks/{id}", s.handleRemoveDrink)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)

		r.Get("/level", s.handleLevel)
		r.Get("/chart", s.handleChart)
	})

	r.Get("/*", spaHandler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"drinks":  s.engine.Drinks.Len(),
	}
	status := http.StatusOK
	if s.db != nil {
		h, err := s.db.Check(r.Context())
		body["db"] = err == nil
		body["db_path"] = h.Path
		body["schema_version"] = h.SchemaVersion
		if err != nil {
			s.log.ErrorContext(r.Context(), "database health check failed", "error", err)
			body["status"] = "degraded"
			body["db_error"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	s.writeJSON(w, status, body)
}

// writeJSON encodes v before touching the response, so an unencodable
// value becomes a 500 instead of a success status with an empty body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.log.Error("encode response", "status", status, "error", err)
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"error":"internal error"}` + "\n")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

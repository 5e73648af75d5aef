package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/halflife/internal/client"
	"github.com/lazypower/halflife/internal/engine"
	"github.com/lazypower/halflife/internal/intake"
	"github.com/lazypower/halflife/internal/logging"
	"github.com/lazypower/halflife/internal/server"
)

var noon = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()
	log := logging.Discard()
	eng := engine.New(intake.NewStore(nil, log), nil, engine.DefaultSettings(), log)
	srv := server.New(eng, nil, "test-version", server.Options{
		Log: log,
		Now: func() time.Time { return noon },
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts, eng
}

func TestHealth(t *testing.T) {
	ts, _ := testServer(t)
	c := client.New(ts.URL + "/")

	h, err := c.Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "test-version", h.Version)
	assert.True(t, c.Healthy(context.Background()))
}

func TestHealthyUnreachable(t *testing.T) {
	ts, _ := testServer(t)
	url := ts.URL
	ts.Close()

	assert.False(t, client.New(url).Healthy(context.Background()))
}

func TestLevel(t *testing.T) {
	ts, eng := testServer(t)
	at := noon.Add(-4 * time.Hour)
	_, err := eng.LogDrink(engine.DrinkRequest{Drink: "coffee", VolumeMl: 240, ConsumedAt: &at}, noon)
	require.NoError(t, err)

	l, err := client.New(ts.URL).Level(context.Background())

	require.NoError(t, err)
	assert.InDelta(t, engine.Value(95, 4, engine.DefaultSettings()), l.Level, 1e-9)
	assert.Equal(t, "mg/L", l.Unit)
	assert.True(t, l.At.Equal(noon))
}

func TestAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"database unavailable"}`))
	}))
	t.Cleanup(ts.Close)

	_, err := client.New(ts.URL).Level(context.Background())

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "database unavailable", apiErr.Message)
	assert.Equal(t, "/api/level", apiErr.Path)
}

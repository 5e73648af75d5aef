package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestResolveCatalogDrinks(t *testing.T) {
	now := at(8, 0)
	tests := []struct {
		req      DrinkRequest
		wantName string
		wantMg   float64
	}{
		{DrinkRequest{Drink: "coffee", VolumeMl: 240}, "coffee", 95},
		{DrinkRequest{Drink: "Coffee ", VolumeMl: 480}, "coffee", 190},
		{DrinkRequest{Drink: "tea", VolumeMl: 240}, "tea", 47},
		{DrinkRequest{Drink: "tea", VolumeMl: 120}, "tea", 23.5},
		// name is ignored for catalog drinks
		{DrinkRequest{Drink: "tea", Name: "earl grey", VolumeMl: 240}, "tea", 47},
	}

	for _, tt := range tests {
		d, err := tt.req.Resolve(now)
		require.NoError(t, err, "%+v", tt.req)
		assert.Equal(t, tt.wantName, d.Name)
		assert.InDelta(t, tt.wantMg, d.CaffeineMg, 1e-12)
		assert.Equal(t, tt.req.VolumeMl, d.VolumeMl)
		assert.Equal(t, now, d.ConsumedAt)
	}
}

func TestResolveCustomDrink(t *testing.T) {
	d, err := DrinkRequest{Drink: "custom", Name: " cola ", VolumeMl: 355, MgPer240: ptr(22.5)}.Resolve(at(8, 0))

	require.NoError(t, err)
	assert.Equal(t, "cola", d.Name)
	assert.InDelta(t, 22.5*355/240, d.CaffeineMg, 1e-12)
}

func TestResolveNameWithoutKeyIsCustom(t *testing.T) {
	d, err := DrinkRequest{Name: "mate", VolumeMl: 240, MgPer240: ptr(80.0)}.Resolve(at(8, 0))

	require.NoError(t, err)
	assert.Equal(t, "mate", d.Name)
	assert.InDelta(t, 80.0, d.CaffeineMg, 1e-12)
}

func TestResolveExplicitCaffeineOverrides(t *testing.T) {
	d, err := DrinkRequest{Drink: "custom", Name: "pill", VolumeMl: 10, CaffeineMg: ptr(200.0)}.Resolve(at(8, 0))

	require.NoError(t, err)
	assert.Equal(t, 200.0, d.CaffeineMg)
}

func TestResolveConsumedAt(t *testing.T) {
	when := at(6, 15)

	d, err := DrinkRequest{Drink: "coffee", VolumeMl: 240, ConsumedAt: &when}.Resolve(at(8, 0))

	require.NoError(t, err)
	assert.Equal(t, when, d.ConsumedAt)

	d, err = DrinkRequest{Drink: "coffee", VolumeMl: 240, ConsumedAt: &time.Time{}}.Resolve(at(8, 0))
	require.NoError(t, err)
	assert.Equal(t, at(8, 0), d.ConsumedAt)
}

func TestResolveRejects(t *testing.T) {
	tests := []struct {
		name string
		req  DrinkRequest
	}{
		{"missing drink", DrinkRequest{VolumeMl: 240}},
		{"unknown drink", DrinkRequest{Drink: "mate", VolumeMl: 240}},
		{"zero volume", DrinkRequest{Drink: "coffee"}},
		{"negative volume", DrinkRequest{Drink: "coffee", VolumeMl: -10}},
		{"nan volume", DrinkRequest{Drink: "coffee", VolumeMl: math.NaN()}},
		{"custom without name", DrinkRequest{Drink: "custom", VolumeMl: 240, MgPer240: ptr(10.0)}},
		{"custom blank name", DrinkRequest{Drink: "custom", Name: "   ", VolumeMl: 240}},
		{"custom negative mg", DrinkRequest{Drink: "custom", Name: "x", VolumeMl: 240, MgPer240: ptr(-1.0)}},
		{"custom long name", DrinkRequest{Drink: "custom", Name: string(make([]byte, 81)), VolumeMl: 240}},
		{"negative caffeine", DrinkRequest{Drink: "coffee", VolumeMl: 240, CaffeineMg: ptr(-5.0)}},
		{"infinite caffeine", DrinkRequest{Drink: "coffee", VolumeMl: 240, CaffeineMg: ptr(math.Inf(1))}},
		{"custom without mg", DrinkRequest{Drink: "custom", Name: "x", VolumeMl: 240}},
		{"custom dose overflows", DrinkRequest{Drink: "custom", Name: "x", VolumeMl: 1e200, MgPer240: ptr(1e200)}},
		{"catalog dose overflows", DrinkRequest{Drink: "coffee", VolumeMl: math.MaxFloat64}},
		{"dose above cap", DrinkRequest{Drink: "custom", Name: "x", VolumeMl: 240, MgPer240: ptr(2 * MaxCaffeineMg)}},
		{"override above cap", DrinkRequest{Drink: "coffee", VolumeMl: 240, CaffeineMg: ptr(MaxCaffeineMg + 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Resolve(at(8, 0))
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestResolveCustomZeroMgIsAllowed(t *testing.T) {
	d, err := DrinkRequest{Drink: "custom", Name: "decaf", VolumeMl: 240, MgPer240: ptr(0.0)}.Resolve(at(8, 0))

	require.NoError(t, err)
	assert.Zero(t, d.CaffeineMg)
}

package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	require.NoError(t, s.Validate())
	assert.Equal(t, 5.0, s.HalfLifeHours)
	assert.Equal(t, 0.6, s.VolumeOfDistribution)
	assert.Equal(t, 70.0, s.BodyWeightKg)
}

func TestSettingsValidate(t *testing.T) {
	bad := []Settings{
		{HalfLifeHours: 0, VolumeOfDistribution: 0.6, BodyWeightKg: 70},
		{HalfLifeHours: -5, VolumeOfDistribution: 0.6, BodyWeightKg: 70},
		{HalfLifeHours: 5, VolumeOfDistribution: 0, BodyWeightKg: 70},
		{HalfLifeHours: 5, VolumeOfDistribution: 0.6, BodyWeightKg: -1},
		{HalfLifeHours: math.NaN(), VolumeOfDistribution: 0.6, BodyWeightKg: 70},
		{HalfLifeHours: 5, VolumeOfDistribution: math.Inf(1), BodyWeightKg: 70},
	}
	for _, s := range bad {
		assert.ErrorIs(t, s.Validate(), ErrInvalidSettings, "%+v", s)
	}
}

func TestSettingsPatchKeepsOmittedFields(t *testing.T) {
	got, err := SettingsPatch{BodyWeightKg: ptr(82.5)}.Apply(DefaultSettings())

	require.NoError(t, err)
	assert.Equal(t, Settings{HalfLifeHours: 5, VolumeOfDistribution: 0.6, BodyWeightKg: 82.5}, got)
}

func TestSettingsPatchAllFields(t *testing.T) {
	p := SettingsPatch{HalfLifeHours: ptr(6.0), VolumeOfDistribution: ptr(0.7), BodyWeightKg: ptr(60.0)}

	got, err := p.Apply(DefaultSettings())

	require.NoError(t, err)
	assert.Equal(t, Settings{HalfLifeHours: 6, VolumeOfDistribution: 0.7, BodyWeightKg: 60}, got)
	assert.False(t, p.Empty())
	assert.True(t, SettingsPatch{}.Empty())
}

func TestSettingsPatchRejectsInvalid(t *testing.T) {
	_, err := SettingsPatch{HalfLifeHours: ptr(0.0)}.Apply(DefaultSettings())
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.ErrorContains(t, err, "half_life_hours")
}

func TestSettingsValidateDistributionVolume(t *testing.T) {
	bad := []Settings{
		// each value is positive but the product underflows to zero
		{HalfLifeHours: 5, VolumeOfDistribution: 1e-200, BodyWeightKg: 1e-200},
		{HalfLifeHours: 5, VolumeOfDistribution: 1e-4, BodyWeightKg: 1},
		{HalfLifeHours: 5, VolumeOfDistribution: 1e200, BodyWeightKg: 1e200},
	}
	for _, s := range bad {
		err := s.Validate()
		assert.ErrorIs(t, err, ErrInvalidSettings, "%+v", s)
		assert.ErrorContains(t, err, "volume_of_distribution * body_weight_kg")
	}

	ok := Settings{HalfLifeHours: 5, VolumeOfDistribution: 0.001, BodyWeightKg: 1}
	require.NoError(t, ok.Validate())
	assert.False(t, math.IsInf(Value(MaxCaffeineMg, 0, ok), 0))
}

func TestSettingsPatchRejectsUnderflowingProduct(t *testing.T) {
	_, err := SettingsPatch{
		VolumeOfDistribution: ptr(1e-200),
		BodyWeightKg:         ptr(1e-200),
	}.Apply(DefaultSettings())

	assert.ErrorIs(t, err, ErrInvalidSettings)
}

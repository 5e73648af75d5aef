package engine

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSettings is returned when a settings value is not a positive finite number.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the pharmacokinetic parameters of the decay model.
type Settings struct {
	HalfLifeHours        float64 `json:"half_life_hours" toml:"half_life_hours"`
	VolumeOfDistribution float64 `json:"volume_of_distribution" toml:"volume_of_distribution"` // L/kg
	BodyWeightKg         float64 `json:"body_weight_kg" toml:"body_weight_kg"`
}

// DefaultSettings returns a 5 h half-life, 0.6 L/kg and 70 kg.
func DefaultSettings() Settings {
	return Settings{
		HalfLifeHours:        5,
		VolumeOfDistribution: 0.6,
		BodyWeightKg:         70,
	}
}

// MinDistributionLitres is the smallest accepted Vd * body weight. The model
// divides by it, so it must stay well clear of zero.
const MinDistributionLitres = 1e-3

// Validate rejects zero, negative, NaN and infinite values, and a
// distribution volume (Vd * body weight) below MinDistributionLitres.
func (s Settings) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"half_life_hours", s.HalfLifeHours},
		{"volume_of_distribution", s.VolumeOfDistribution},
		{"body_weight_kg", s.BodyWeightKg},
	}
	for _, c := range checks {
		if !positiveFinite(c.v) {
			return fmt.Errorf("%w: %s must be a positive number, got %v", ErrInvalidSettings, c.name, c.v)
		}
	}
	if litres := s.VolumeOfDistribution * s.BodyWeightKg; !(litres >= MinDistributionLitres) || math.IsInf(litres, 0) {
		return fmt.Errorf("%w: volume_of_distribution * body_weight_kg must be between %g L and a finite value, got %v",
			ErrInvalidSettings, MinDistributionLitres, litres)
	}
	return nil
}

// SettingsPatch is a partial update. Nil fields keep their prior value.
type SettingsPatch struct {
	HalfLifeHours        *float64 `json:"half_life_hours,omitempty"`
	VolumeOfDistribution *float64 `json:"volume_of_distribution,omitempty"`
	BodyWeightKg         *float64 `json:"body_weight_kg,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.HalfLifeHours == nil && p.VolumeOfDistribution == nil && p.BodyWeightKg == nil
}

// Apply returns s with the patch's fields applied, validated.
func (p SettingsPatch) Apply(s Settings) (Settings, error) {
	if p.HalfLifeHours != nil {
		s.HalfLifeHours = *p.HalfLifeHours
	}
	if p.VolumeOfDistribution != nil {
		s.VolumeOfDistribution = *p.VolumeOfDistribution
	}
	if p.BodyWeightKg != nil {
		s.BodyWeightKg = *p.BodyWeightKg
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

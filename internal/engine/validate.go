package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lazypower/halflife/internal/intake"
)

// ErrValidation is returned when a drink request fails input checks.
var ErrValidation = errors.New("validation error")

// CustomDrink is the drink key for a user-described drink.
const CustomDrink = "custom"

const maxNameChars = 80

// MaxCaffeineMg caps a single drink's dose. Anything above is a typo, and
// keeping doses bounded keeps every concentration finite.
const MaxCaffeineMg = 1e6

// DrinkRequest is a request to log a drink, as supplied by a form or the CLI.
type DrinkRequest struct {
	// Drink is a catalog key ("coffee", "tea") or "custom".
	Drink string `json:"drink"`
	// Name labels a custom drink. Ignored for catalog drinks.
	Name     string  `json:"name,omitempty"`
	VolumeMl float64 `json:"volume_ml"`
	// MgPer240 is the custom drink's caffeine per 240 ml. Required for a
	// custom drink unless CaffeineMg is given.
	MgPer240 *float64 `json:"mg_per_240ml,omitempty"`
	// CaffeineMg, when set, is taken as the total dose and overrides MgPer240.
	CaffeineMg *float64 `json:"caffeine_mg,omitempty"`
	// ConsumedAt defaults to the time of logging.
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}

// Resolve validates r and turns it into a drink consumed at r.ConsumedAt or now.
func (r DrinkRequest) Resolve(now time.Time) (intake.Drink, error) {
	key := strings.ToLower(strings.TrimSpace(r.Drink))
	if key == "" && strings.TrimSpace(r.Name) != "" {
		key = CustomDrink
	}

	if !positiveFinite(r.VolumeMl) {
		return intake.Drink{}, fmt.Errorf("%w: volume_ml must be greater than zero", ErrValidation)
	}

	d := intake.Drink{VolumeMl: r.VolumeMl, ConsumedAt: now}
	if r.ConsumedAt != nil && !r.ConsumedAt.IsZero() {
		d.ConsumedAt = *r.ConsumedAt
	}

	switch key {
	case "":
		return intake.Drink{}, fmt.Errorf("%w: drink is required", ErrValidation)
	case CustomDrink:
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return intake.Drink{}, fmt.Errorf("%w: name is required for a custom drink", ErrValidation)
		}
		if len(name) > maxNameChars {
			return intake.Drink{}, fmt.Errorf("%w: name longer than %d characters", ErrValidation, maxNameChars)
		}
		d.Name = name
		switch {
		case r.MgPer240 != nil:
			if !nonNegativeFinite(*r.MgPer240) {
				return intake.Drink{}, fmt.Errorf("%w: mg_per_240ml must not be negative", ErrValidation)
			}
			d.CaffeineMg = intake.CaffeineFor(*r.MgPer240, r.VolumeMl)
		case r.CaffeineMg == nil:
			return intake.Drink{}, fmt.Errorf("%w: mg_per_240ml is required for a custom drink", ErrValidation)
		}
	default:
		item, ok := intake.Lookup(key)
		if !ok {
			return intake.Drink{}, fmt.Errorf("%w: unknown drink %q", ErrValidation, r.Drink)
		}
		d.Name = item.Name
		d.CaffeineMg = intake.CaffeineFor(item.MgPer240, r.VolumeMl)
	}

	if r.CaffeineMg != nil {
		if !nonNegativeFinite(*r.CaffeineMg) {
			return intake.Drink{}, fmt.Errorf("%w: caffeine_mg must not be negative", ErrValidation)
		}
		d.CaffeineMg = *r.CaffeineMg
	}
	if !nonNegativeFinite(d.CaffeineMg) || d.CaffeineMg > MaxCaffeineMg {
		return intake.Drink{}, fmt.Errorf("%w: caffeine_mg must be between 0 and %g, got %g", ErrValidation, MaxCaffeineMg, d.CaffeineMg)
	}
	return d, nil
}

func nonNegativeFinite(v float64) bool {
	return v == 0 || positiveFinite(v)
}

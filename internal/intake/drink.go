// Package intake holds the ordered record of logged drinks.
package intake

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// StandardServingMl is the serving size catalog concentrations are quoted against.
const StandardServingMl = 240.0

var (
	// ErrNotFound is returned when no drink has the requested ID.
	ErrNotFound = errors.New("drink not found")

	// ErrIndexOutOfRange is returned by RemoveAt for a position outside the list.
	ErrIndexOutOfRange = errors.New("drink index out of range")

	// ErrLoadFailed is returned by mutations after Load could not read the
	// persisted drinks. Writing would replace rows that may still be intact;
	// Clear discards them explicitly and re-enables writes.
	ErrLoadFailed = errors.New("persisted drinks could not be loaded; clear them to start over")
)

// Drink is one logged intake event.
type Drink struct {
	ID         uuid.UUID
	Name       string
	VolumeMl   float64
	CaffeineMg float64
	ConsumedAt time.Time
}

// CatalogItem is a fixed drink with a known caffeine concentration.
type CatalogItem struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	MgPer240 float64 `json:"mg_per_240ml"`
}

var catalog = map[string]CatalogItem{
	"coffee": {Key: "coffee", Name: "coffee", MgPer240: 95},
	"tea":    {Key: "tea", Name: "tea", MgPer240: 47},
}

// Lookup returns the catalog item for key.
func Lookup(key string) (CatalogItem, bool) {
	item, ok := catalog[key]
	return item, ok
}

// Catalog returns all catalog items ordered by key.
func Catalog() []CatalogItem {
	items := make([]CatalogItem, 0, len(catalog))
	for _, item := range catalog {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return items
}

// CaffeineFor scales a per-240ml concentration to the given volume.
func CaffeineFor(mgPer240, volumeMl float64) float64 {
	return mgPer240 * volumeMl / StandardServingMl
}

// NormalizeTime reduces t to UTC at millisecond precision, the resolution
// drinks are persisted with.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

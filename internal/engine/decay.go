package engine

// Decay model: single-compartment, first-order elimination.
//
//   C0       = caffeineMg / (Vd * bodyWeight)       mg/L
//   value(t) = C0 * 0.5 ^ (t / halfLife)            t in hours, clamped to >= 0
//
// No absorption phase. Everything here is pure; callers pass settings that
// have already passed Settings.Validate.

import (
	"math"
	"strconv"
	"time"

	"github.com/lazypower/halflife/internal/intake"
)

// HoursPerDay is the number of buckets in a Series.
const HoursPerDay = 24

// Series is one day of hourly concentration samples, indexed by hour of day.
type Series [HoursPerDay]float64

// InitialConcentration returns C0 in mg/L for a dose of caffeineMg.
func InitialConcentration(caffeineMg float64, s Settings) float64 {
	return caffeineMg / (s.VolumeOfDistribution * s.BodyWeightKg)
}

// Value returns the concentration left elapsedHours after a dose.
// Negative elapsed time is treated as zero.
func Value(caffeineMg, elapsedHours float64, s Settings) float64 {
	if elapsedHours < 0 {
		elapsedHours = 0
	}
	return InitialConcentration(caffeineMg, s) * math.Pow(0.5, elapsedHours/s.HalfLifeHours)
}

// CurrentLevel sums every drink's remaining concentration at now. Drinks
// consumed after now contribute nothing.
func CurrentLevel(drinks []intake.Drink, s Settings, now time.Time) float64 {
	total := 0.0
	for _, d := range drinks {
		elapsed := now.Sub(d.ConsumedAt).Hours()
		if elapsed < 0 {
			continue
		}
		total += Value(d.CaffeineMg, elapsed, s)
	}
	return total
}

// DayStart returns local midnight of anchor's day, in anchor's location.
func DayStart(anchor time.Time) time.Time {
	y, m, d := anchor.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, anchor.Location())
}

// ComputeSeries samples the day containing anchor hour by hour.
//
// Bucket i starts at wall-clock i:00 in anchor's location and ends at the
// next bucket's start, so labels stay right on DST days. A drink counts
// toward bucket i when it was consumed before the bucket ends, with
// value(bucketStart - consumedAt): full strength in the hour it was drunk,
// real elapsed time afterwards. Drinks from earlier days carry their residue.
//
// On a spring-forward day the skipped hour normalizes to the next one, so
// its bucket repeats the following sample. On a fall-back day the repeated
// hour is sampled once.
func ComputeSeries(drinks []intake.Drink, s Settings, anchor time.Time) Series {
	var out Series
	y, m, day := anchor.Date()
	loc := anchor.Location()

	for i := range out {
		start := time.Date(y, m, day, i, 0, 0, 0, loc)
		end := time.Date(y, m, day, i+1, 0, 0, 0, loc)
		for _, d := range drinks {
			if !d.ConsumedAt.Before(end) {
				continue
			}
			out[i] += Value(d.CaffeineMg, start.Sub(d.ConsumedAt).Hours(), s)
		}
	}
	return out
}

// HourLabels returns the chart labels "0:00" through "23:00".
func HourLabels() []string {
	labels := make([]string, HoursPerDay)
	for i := range labels {
		labels[i] = strconv.Itoa(i) + ":00"
	}
	return labels
}

// Round2 rounds v to two decimal places for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

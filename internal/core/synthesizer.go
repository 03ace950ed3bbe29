package core

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"footfall_service/internal/domain/model"
	"footfall_service/internal/domain/repository"
)

// Synthesizer generates daily footfall series that reproduce the demand
// patterns observed at enrollment centers: a Monday peak tapering to a
// Sunday low, holiday closures with a next-day backlog spike, seasonal
// enrollment and pension surges, and category-dependent noise.
type Synthesizer struct {
	catalog repository.Catalog
	seed    int64
}

func NewSynthesizer(catalog repository.Catalog, seed int64) *Synthesizer {
	return &Synthesizer{catalog: catalog, seed: seed}
}

// Weekday multipliers, Monday=0 through Sunday=6.
var weekdayMultipliers = [7]float64{1.25, 1.15, 1.10, 1.05, 1.00, 0.70, 0.50}

// Month multipliers, January=1 through December=12. June/July carry the
// school-enrollment peak, November the pension life-certificate peak.
var monthMultipliers = [13]float64{0, 0.95, 0.90, 1.00, 1.15, 1.10, 1.35, 1.40, 1.05, 1.00, 1.20, 1.45, 1.10}

const (
	holidayMultiplier     = 0.20 // centers nearly close on holidays
	dayAfterHolidayBoost  = 1.40 // backlog spike the next working day
	ruralPensionBoost     = 1.60 // rural centers surge further in November
	firstWeekMultiplier   = 1.10
	lastWeekMultiplier    = 0.95
	annualTrend           = 0.05 // slow year-over-year growth
	additiveNoiseFraction = 0.08
	noiseClampSigma       = 3.0
)

// Category noise levels: rural series are the most erratic.
var categoryNoiseSigma = map[model.CenterCategory]float64{
	model.CategoryUrban:     0.15,
	model.CategoryRural:     0.25,
	model.CategorySemiUrban: 0.18,
}

// Generate produces one observation per catalog center per day over
// [start, end] inclusive, ordered by (center, date). The same seed and
// range always produce the same series.
func (s *Synthesizer) Generate(start, end time.Time) ([]model.Observation, error) {
	start = dayFloor(start)
	end = dayFloor(end)
	if start.After(end) {
		return nil, fmt.Errorf("synthesize %s to %s: %w",
			start.Format("2006-01-02"), end.Format("2006-01-02"), model.ErrInvalidRange)
	}

	centers := s.catalog.ListCenters()
	if len(centers) == 0 {
		return nil, fmt.Errorf("catalog has no centers: %w", model.ErrEmptyDataset)
	}

	rng := rand.New(rand.NewSource(s.seed))
	days := int(end.Sub(start).Hours()/24) + 1
	observations := make([]model.Observation, 0, len(centers)*days)

	for _, center := range centers {
		for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
			observations = append(observations, model.Observation{
				LocationCode: center.LocationCode,
				Date:         date,
				Footfall:     s.dailyFootfall(rng, center, date, start),
			})
		}
	}

	log.Printf("synthesized %d observations for %d centers over %d days",
		len(observations), len(centers), days)
	return observations, nil
}

func (s *Synthesizer) dailyFootfall(rng *rand.Rand, center model.Center, date, trendAnchor time.Time) int {
	dayMult := weekdayMultipliers[mondayIndexed(date.Weekday())]
	if s.catalog.IsHoliday(date) {
		dayMult *= holidayMultiplier
	} else if s.catalog.IsDayAfterHoliday(date) {
		dayMult *= dayAfterHolidayBoost
	}

	monthMult := monthMultipliers[int(date.Month())]
	if center.Category == model.CategoryRural && date.Month() == pensionMonth {
		monthMult *= ruralPensionBoost
	}

	weekMult := 1.0
	switch (date.Day()-1)/7 + 1 {
	case 1:
		weekMult = firstWeekMultiplier
	case 4:
		weekMult = lastWeekMultiplier
	}

	sigma := categoryNoiseSigma[center.Category]
	variance := 1.0 + clampedNormal(rng, sigma)

	trend := 1.0 + date.Sub(trendAnchor).Hours()/24/365*annualTrend

	footfall := center.BaseFootfall * dayMult * monthMult * weekMult * variance * trend
	footfall += clampedNormal(rng, center.BaseFootfall*additiveNoiseFraction)

	if footfall < 0 {
		return 0
	}
	return int(math.Round(footfall))
}

// clampedNormal samples N(0, sigma) truncated at three sigmas so a rare
// draw cannot produce an absurd single-day count.
func clampedNormal(rng *rand.Rand, sigma float64) float64 {
	v := rng.NormFloat64() * sigma
	limit := noiseClampSigma * sigma
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

func dayFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

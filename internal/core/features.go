package core

import (
	"fmt"
	"log"
	"math"
	"time"

	"footfall_service/internal/domain/model"
	"footfall_service/internal/domain/repository"
)

// Rolling/lag windows in days.
var lagWindows = []int{7, 14, 30}

// FeatureValues are the typed feature values for one (center, date).
// The explanation engine evaluates its rules over this structure, and
// Row flattens it into the canonical numeric vector.
type FeatureValues struct {
	Calendar CalendarFeatures

	Category     model.CenterCategory
	CategoryCode int
	DistrictCode int
	StateCode    int

	Lag7  float64
	Lag14 float64
	Lag30 float64

	RollMean7  float64
	RollMean14 float64
	RollMean30 float64
	RollStd7   float64
	RollStd14  float64
	RollStd30  float64
	RollMax30  float64
	RollMin30  float64
}

// Row flattens the values into the canonical schema order, computing
// the interaction features from the base fields.
func (v *FeatureValues) Row(code string, date time.Time) model.FeatureRow {
	values := make([]float64, featureCount)
	c := v.Calendar

	values[fDayOfWeek] = float64(c.DayOfWeek)
	values[fIsWeekend] = boolToFloat(c.IsWeekend)
	values[fIsMonday] = boolToFloat(c.IsMonday)
	values[fMonth] = float64(c.Month)
	values[fQuarter] = float64(c.Quarter)
	values[fWeekOfMonth] = float64(c.WeekOfMonth)
	values[fDayOfMonth] = float64(c.DayOfMonth)
	values[fIsFirstWeek] = boolToFloat(c.IsFirstWeek)
	values[fDayOfYear] = float64(c.DayOfYear)
	values[fIsHoliday] = boolToFloat(c.IsHoliday)
	values[fIsDayAfterHoliday] = boolToFloat(c.IsDayAfterHoliday)
	values[fIsEnrollmentSeason] = boolToFloat(c.IsEnrollmentSeason)
	values[fIsPensionMonth] = boolToFloat(c.IsPensionMonth)
	values[fIsFestivalSeason] = boolToFloat(c.IsFestivalSeason)

	values[fCategoryEncoded] = float64(v.CategoryCode)
	values[fIsUrban] = boolToFloat(v.Category == model.CategoryUrban)
	values[fIsRural] = boolToFloat(v.Category == model.CategoryRural)
	values[fDistrictEncoded] = float64(v.DistrictCode)
	values[fStateEncoded] = float64(v.StateCode)

	values[fLag7] = v.Lag7
	values[fLag14] = v.Lag14
	values[fLag30] = v.Lag30
	values[fRollMean7] = v.RollMean7
	values[fRollMean14] = v.RollMean14
	values[fRollMean30] = v.RollMean30
	values[fRollStd7] = v.RollStd7
	values[fRollStd14] = v.RollStd14
	values[fRollStd30] = v.RollStd30
	values[fRollMax30] = v.RollMax30
	values[fRollMin30] = v.RollMin30

	values[fRuralPension] = values[fIsRural] * values[fIsPensionMonth]
	values[fUrbanEnrollment] = values[fIsUrban] * values[fIsEnrollmentSeason]
	values[fMondayFirstWeek] = values[fIsMonday] * values[fIsFirstWeek]
	values[fWeekendHoliday] = values[fIsWeekend] * values[fIsHoliday]
	values[fLagRatio7To30] = v.Lag7 / (v.RollMean30 + 1)

	return model.FeatureRow{
		LocationCode: code,
		Date:         date,
		Names:        featureNames,
		Values:       values,
	}
}

// FeatureBuilder turns raw observation series into feature rows.
type FeatureBuilder struct {
	catalog repository.Catalog
	encoder *Encoder
}

// NewFeatureBuilder creates a builder over a catalog and an encoder.
// Training passes use a fresh encoder; inference restores the encoder
// from the model artifact.
func NewFeatureBuilder(catalog repository.Catalog, encoder *Encoder) *FeatureBuilder {
	return &FeatureBuilder{catalog: catalog, encoder: encoder}
}

// Encoder returns the encoder, with any codes fitted so far.
func (b *FeatureBuilder) Encoder() *Encoder {
	return b.encoder
}

// BuildFeatures builds the training feature table from an observation
// sequence ordered by (center, date). Rows whose lag features cannot be
// computed are dropped and counted; one bad row must not abort a
// training run. Output row order follows input order.
func (b *FeatureBuilder) BuildFeatures(observations []model.Observation) ([]model.FeatureRow, []float64, error) {
	histories := make(map[string]map[string]float64)
	for _, obs := range observations {
		if histories[obs.LocationCode] == nil {
			histories[obs.LocationCode] = make(map[string]float64)
		}
		histories[obs.LocationCode][dayKey(obs.Date)] = float64(obs.Footfall)
	}

	centers := make(map[string]model.Center)
	rows := make([]model.FeatureRow, 0, len(observations))
	targets := make([]float64, 0, len(observations))
	droppedHistory := 0
	droppedCatalog := 0

	for _, obs := range observations {
		center, ok := centers[obs.LocationCode]
		if !ok {
			var err error
			center, err = b.catalog.GetCenter(obs.LocationCode)
			if err != nil {
				droppedCatalog++
				continue
			}
			// Fit district/state codes on first encounter so the
			// encoding is complete even if early rows are dropped.
			b.encoder.FitCode(colDistrict, center.District)
			b.encoder.FitCode(colState, center.State)
			centers[obs.LocationCode] = center
		}

		values, err := b.values(center, obs.Date, histories[obs.LocationCode], true)
		if err != nil {
			droppedHistory++
			continue
		}
		rows = append(rows, values.Row(obs.LocationCode, obs.Date))
		targets = append(targets, float64(obs.Footfall))
	}

	if droppedHistory > 0 {
		log.Printf("feature build: dropped %d rows with insufficient lag history", droppedHistory)
	}
	if droppedCatalog > 0 {
		log.Printf("feature build: dropped %d rows for centers missing from catalog", droppedCatalog)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("feature build produced no rows: %w", model.ErrInsufficientHistory)
	}
	return rows, targets, nil
}

// BuildSingleRow builds the inference feature values for one center and
// target date from its recent history. The history must only contain
// observations dated before the target date. Returns
// ErrInsufficientHistory when a lag cannot be computed; the caller
// decides whether to degrade or fail.
func (b *FeatureBuilder) BuildSingleRow(center model.Center, date time.Time, history []model.Observation) (*FeatureValues, error) {
	return b.values(center, date, historyMap(date, history), false)
}

// BuildSingleRowDegraded builds feature values even when history is
// too short, substituting the center's long-run mean for any lag or
// rolling feature that cannot be computed. Never fails; the caller
// must flag the resulting forecast as low confidence.
func (b *FeatureBuilder) BuildSingleRowDegraded(center model.Center, date time.Time, history []model.Observation) *FeatureValues {
	hist := historyMap(date, history)

	fallback := center.BaseFootfall
	if len(hist) > 0 {
		sum := 0.0
		for _, v := range hist {
			sum += v
		}
		fallback = sum / float64(len(hist))
	}

	v := b.baseValues(center, date, false)
	v.Lag7 = lagOr(hist, date, 7, fallback)
	v.Lag14 = lagOr(hist, date, 14, fallback)
	v.Lag30 = lagOr(hist, date, 30, fallback)

	for _, w := range lagWindows {
		window := trailingWindow(hist, date, w)
		mean, std := fallback, 0.0
		if len(window) > 0 {
			mean, std = meanStd(window)
		}
		switch w {
		case 7:
			v.RollMean7, v.RollStd7 = mean, std
		case 14:
			v.RollMean14, v.RollStd14 = mean, std
		case 30:
			v.RollMean30, v.RollStd30 = mean, std
			v.RollMax30, v.RollMin30 = maxMinOr(window, fallback)
		}
	}
	return v
}

// values computes the full feature set for one (center, date). Only
// observations dated strictly before the target date are ever read:
// lags index exact prior days and rolling windows end the day before
// the target.
func (b *FeatureBuilder) values(center model.Center, date time.Time, hist map[string]float64, fit bool) (*FeatureValues, error) {
	v := b.baseValues(center, date, fit)

	for _, k := range lagWindows {
		lag, ok := hist[dayKey(date.AddDate(0, 0, -k))]
		if !ok {
			return nil, fmt.Errorf("lag %d for %s on %s: %w",
				k, center.LocationCode, dayKey(date), model.ErrInsufficientHistory)
		}
		switch k {
		case 7:
			v.Lag7 = lag
		case 14:
			v.Lag14 = lag
		case 30:
			v.Lag30 = lag
		}
	}

	for _, w := range lagWindows {
		window := trailingWindow(hist, date, w)
		if len(window) == 0 {
			return nil, fmt.Errorf("rolling window %d for %s on %s: %w",
				w, center.LocationCode, dayKey(date), model.ErrInsufficientHistory)
		}
		mean, std := meanStd(window)
		switch w {
		case 7:
			v.RollMean7, v.RollStd7 = mean, std
		case 14:
			v.RollMean14, v.RollStd14 = mean, std
		case 30:
			v.RollMean30, v.RollStd30 = mean, std
			v.RollMax30, v.RollMin30 = maxMinOr(window, mean)
		}
	}

	return v, nil
}

func (b *FeatureBuilder) baseValues(center model.Center, date time.Time, fit bool) *FeatureValues {
	districtCode := b.encoder.Code(colDistrict, center.District)
	stateCode := b.encoder.Code(colState, center.State)
	if fit {
		districtCode = b.encoder.FitCode(colDistrict, center.District)
		stateCode = b.encoder.FitCode(colState, center.State)
	}
	return &FeatureValues{
		Calendar:     CalendarFor(date, b.catalog),
		Category:     center.Category,
		CategoryCode: b.encoder.Code(colCategory, string(center.Category)),
		DistrictCode: districtCode,
		StateCode:    stateCode,
	}
}

// historyMap indexes observations by day, ignoring anything dated on or
// after the target date so a caller can never leak future data in.
func historyMap(target time.Time, history []model.Observation) map[string]float64 {
	hist := make(map[string]float64, len(history))
	for _, obs := range history {
		if obs.Date.Before(target) {
			hist[dayKey(obs.Date)] = float64(obs.Footfall)
		}
	}
	return hist
}

// trailingWindow collects the values in [date-w, date-1].
func trailingWindow(hist map[string]float64, date time.Time, w int) []float64 {
	out := make([]float64, 0, w)
	for offset := 1; offset <= w; offset++ {
		if v, ok := hist[dayKey(date.AddDate(0, 0, -offset))]; ok {
			out = append(out, v)
		}
	}
	return out
}

func lagOr(hist map[string]float64, date time.Time, k int, fallback float64) float64 {
	if v, ok := hist[dayKey(date.AddDate(0, 0, -k))]; ok {
		return v
	}
	return fallback
}

// meanStd returns the mean and sample standard deviation.
func meanStd(values []float64) (float64, float64) {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	if len(values) < 2 {
		return mean, 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return mean, math.Sqrt(sumSq / float64(len(values)-1))
}

func maxMinOr(values []float64, fallback float64) (float64, float64) {
	if len(values) == 0 {
		return fallback, fallback
	}
	max, min := values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return max, min
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

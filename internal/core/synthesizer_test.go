package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footfall_service/internal/domain/model"
)

func TestSynthesizerInvalidRange(t *testing.T) {
	s := NewSynthesizer(testCatalog(), 1)
	_, err := s.Generate(day("2025-06-10"), day("2025-06-01"))
	assert.ErrorIs(t, err, model.ErrInvalidRange)
}

func TestSynthesizerDeterministic(t *testing.T) {
	a, err := NewSynthesizer(testCatalog(), 42).Generate(day("2025-06-01"), day("2025-06-30"))
	require.NoError(t, err)
	b, err := NewSynthesizer(testCatalog(), 42).Generate(day("2025-06-01"), day("2025-06-30"))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewSynthesizer(testCatalog(), 7).Generate(day("2025-06-01"), day("2025-06-30"))
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "a different seed should produce a different series")
}

func TestSynthesizerCoverageAndOrder(t *testing.T) {
	catalog := testCatalog()
	observations, err := NewSynthesizer(catalog, 1).Generate(day("2025-06-01"), day("2025-06-30"))
	require.NoError(t, err)

	centers := catalog.ListCenters()
	require.Len(t, observations, len(centers)*30)

	// Ordered by center then date, one row per day, never negative.
	i := 0
	for _, center := range centers {
		for d := day("2025-06-01"); !d.After(day("2025-06-30")); d = d.AddDate(0, 0, 1) {
			obs := observations[i]
			assert.Equal(t, center.LocationCode, obs.LocationCode)
			assert.True(t, obs.Date.Equal(d))
			assert.GreaterOrEqual(t, obs.Footfall, 0)
			i++
		}
	}
}

// averageOn sums the footfall across all centers on the given dates.
func averageOn(observations []model.Observation, dates ...time.Time) float64 {
	keys := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		keys[d.Format("2006-01-02")] = struct{}{}
	}
	sum, n := 0.0, 0
	for _, obs := range observations {
		if _, ok := keys[obs.Date.Format("2006-01-02")]; ok {
			sum += float64(obs.Footfall)
			n++
		}
	}
	return sum / float64(n)
}

func TestSynthesizerHolidayDipAndSpike(t *testing.T) {
	// 2025-08-15 is a holiday in the test catalog; 08-08 and 08-23 are
	// the same weekdays one week away, unaffected by holiday effects.
	observations, err := NewSynthesizer(testCatalog(), 3).Generate(day("2025-08-01"), day("2025-08-31"))
	require.NoError(t, err)

	holiday := averageOn(observations, day("2025-08-15"))
	normalFriday := averageOn(observations, day("2025-08-08"))
	assert.Less(t, holiday, normalFriday*0.6, "holiday footfall should collapse")

	dayAfter := averageOn(observations, day("2025-08-16"))
	normalSaturday := averageOn(observations, day("2025-08-23"))
	assert.Greater(t, dayAfter, normalSaturday, "post-holiday backlog should spike")
}

func TestSynthesizerMondayBeatsSunday(t *testing.T) {
	observations, err := NewSynthesizer(testCatalog(), 5).Generate(day("2025-03-01"), day("2025-05-31"))
	require.NoError(t, err)

	var mondays, sundays []time.Time
	for d := day("2025-03-01"); !d.After(day("2025-05-31")); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Monday:
			mondays = append(mondays, d)
		case time.Sunday:
			sundays = append(sundays, d)
		}
	}
	assert.Greater(t, averageOn(observations, mondays...), averageOn(observations, sundays...))
}

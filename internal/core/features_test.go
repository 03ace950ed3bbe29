package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footfall_service/internal/domain/model"
)

func TestBuildSingleRowComputesLagsAndRollings(t *testing.T) {
	catalog := testCatalog()
	center, err := catalog.GetCenter("110001")
	require.NoError(t, err)

	builder := NewFeatureBuilder(catalog, NewEncoder())
	target := day("2025-09-01")
	history := constantHistory("110001", target, 40, 200)

	values, err := builder.BuildSingleRow(center, target, history)
	require.NoError(t, err)

	assert.Equal(t, 200.0, values.Lag7)
	assert.Equal(t, 200.0, values.Lag14)
	assert.Equal(t, 200.0, values.Lag30)
	assert.Equal(t, 200.0, values.RollMean7)
	assert.Equal(t, 200.0, values.RollMean30)
	assert.Equal(t, 0.0, values.RollStd7)
	assert.Equal(t, 200.0, values.RollMax30)
	assert.Equal(t, 200.0, values.RollMin30)

	row := values.Row("110001", target)
	assert.Equal(t, FeatureNames(), row.Names)
	assert.Len(t, row.Values, len(FeatureNames()))
}

func TestBuildSingleRowNeverReadsTargetOrFuture(t *testing.T) {
	catalog := testCatalog()
	center, _ := catalog.GetCenter("110001")
	builder := NewFeatureBuilder(catalog, NewEncoder())
	target := day("2025-09-01")

	history := constantHistory("110001", target, 40, 200)
	clean, err := builder.BuildSingleRow(center, target, history)
	require.NoError(t, err)

	// Append wild observations on and after the target date. They must
	// not change a single feature value.
	poisoned := append(append([]model.Observation(nil), history...),
		model.Observation{LocationCode: "110001", Date: target, Footfall: 99999},
		model.Observation{LocationCode: "110001", Date: target.AddDate(0, 0, 3), Footfall: 99999},
	)
	dirty, err := builder.BuildSingleRow(center, target, poisoned)
	require.NoError(t, err)

	assert.Equal(t, clean.Row("110001", target).Values, dirty.Row("110001", target).Values)
}

func TestBuildSingleRowShortHistory(t *testing.T) {
	catalog := testCatalog()
	center, _ := catalog.GetCenter("110001")
	builder := NewFeatureBuilder(catalog, NewEncoder())
	target := day("2025-09-01")

	_, err := builder.BuildSingleRow(center, target, constantHistory("110001", target, 10, 200))
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)
}

func TestBuildSingleRowDegradedFallsBackToMean(t *testing.T) {
	catalog := testCatalog()
	center, _ := catalog.GetCenter("110001")
	builder := NewFeatureBuilder(catalog, NewEncoder())
	target := day("2025-09-01")

	values := builder.BuildSingleRowDegraded(center, target, constantHistory("110001", target, 10, 200))
	assert.Equal(t, 200.0, values.Lag7)  // observed
	assert.Equal(t, 200.0, values.Lag30) // substituted with history mean
	assert.Equal(t, 200.0, values.RollMean30)

	// With no history at all, the catalog baseline fills in.
	empty := builder.BuildSingleRowDegraded(center, target, nil)
	assert.Equal(t, center.BaseFootfall, empty.Lag7)
	assert.Equal(t, center.BaseFootfall, empty.RollMean30)
}

func TestBuildFeaturesDropsWarmupRows(t *testing.T) {
	builder := NewFeatureBuilder(testCatalog(), NewEncoder())
	observations := rampSeries("110001", day("2025-06-01"), 60, 100)

	rows, targets, err := builder.BuildFeatures(observations)
	require.NoError(t, err)

	// The first 30 days cannot supply a 30-day lag.
	assert.Len(t, rows, 30)
	assert.Len(t, targets, 30)
	assert.Equal(t, day("2025-07-01"), rows[0].Date)
	assert.Equal(t, 130.0, targets[0])
}

func TestBuildFeaturesDeterministic(t *testing.T) {
	observations := rampSeries("110001", day("2025-06-01"), 60, 100)

	a, _, err := NewFeatureBuilder(testCatalog(), NewEncoder()).BuildFeatures(observations)
	require.NoError(t, err)
	b, _, err := NewFeatureBuilder(testCatalog(), NewEncoder()).BuildFeatures(observations)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Values, b[i].Values)
	}
}

func TestBuildFeaturesAllShortErrors(t *testing.T) {
	builder := NewFeatureBuilder(testCatalog(), NewEncoder())
	_, _, err := builder.BuildFeatures(rampSeries("110001", day("2025-06-01"), 10, 100))
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)
}

func TestEncoderRoundTrip(t *testing.T) {
	enc := NewEncoder()
	assert.Equal(t, 0, enc.FitCode("district", "New Delhi"))
	assert.Equal(t, 1, enc.FitCode("district", "Mumbai"))
	assert.Equal(t, 0, enc.FitCode("district", "New Delhi")) // stable

	restored := NewEncoderFromMap(enc.Map())
	assert.Equal(t, 1, restored.Code("district", "Mumbai"))
	assert.Equal(t, UnseenCode, restored.Code("district", "Never Seen"))

	// Fixed category table survives the round trip.
	assert.Equal(t, 2, restored.Code("center_category", "Urban"))
	assert.Equal(t, 0, restored.Code("center_category", "Rural"))
}

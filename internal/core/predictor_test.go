package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footfall_service/internal/domain/model"
	"footfall_service/internal/domain/repository"
)

// flatModel always predicts its base score: one tree, one zero leaf.
func flatModel(base float64, thresholds model.TrafficThresholds) *model.TrainedModel {
	return &model.TrainedModel{
		FeatureNames: FeatureNames(),
		Encodings:    NewEncoder().Map(),
		BaseScore:    base,
		Trees:        []model.Tree{{Nodes: []model.TreeNode{{Leaf: true, Value: 0}}}},
		Thresholds:   thresholds,
	}
}

func newTestPredictor(t *testing.T, history []model.Observation) *PredictionService {
	t.Helper()
	store := repository.NewMemoryObservationStore()
	if len(history) > 0 {
		require.NoError(t, store.SaveObservations(context.Background(), history))
	}
	return NewPredictionService(testCatalog(), store)
}

func TestPredictSingleDayNoModel(t *testing.T) {
	s := newTestPredictor(t, nil)
	_, err := s.PredictSingleDay(context.Background(), "110001", day("2026-06-01"))
	assert.ErrorIs(t, err, model.ErrNoModel)
}

func TestPredictSingleDayUnknownCenter(t *testing.T) {
	s := newTestPredictor(t, nil)
	s.SetModel(flatModel(100, model.TrafficThresholds{Low: 80, High: 150}))
	_, err := s.PredictSingleDay(context.Background(), "000000", day("2026-06-01"))
	assert.ErrorIs(t, err, model.ErrCenterNotFound)
}

func TestPredictSingleDayHighTraffic(t *testing.T) {
	target := day("2026-06-01") // Monday, enrollment season
	s := newTestPredictor(t, constantHistory("110001", target, 45, 200))
	s.SetModel(flatModel(180, model.TrafficThresholds{Low: 80, High: 150}))

	forecast, err := s.PredictSingleDay(context.Background(), "110001", target)
	require.NoError(t, err)

	assert.Equal(t, "110001", forecast.LocationCode)
	assert.Equal(t, 180, forecast.Footfall)
	assert.Equal(t, model.TrafficHigh, forecast.Level)
	assert.False(t, forecast.LowConfidence)

	assert.Contains(t, forecast.Statements, "Monday is the busiest weekday at enrollment centers.")
	assert.Contains(t, forecast.Statements, "School enrollment season (June to July): child enrollment demand peaks.")
	assert.Contains(t, forecast.Statements, "Overall: high expected traffic for this center.")
	assert.Contains(t, forecast.Statements, "Open all counters from the start of the day.")
}

func TestPredictSingleDayShortHistoryDegrades(t *testing.T) {
	target := day("2026-06-01")
	s := newTestPredictor(t, constantHistory("110001", target, 7, 200))
	s.SetModel(flatModel(100, model.TrafficThresholds{Low: 80, High: 150}))

	forecast, err := s.PredictSingleDay(context.Background(), "110001", target)
	require.NoError(t, err, "short history must degrade, not fail")
	assert.True(t, forecast.LowConfidence)
	assert.Equal(t, 100, forecast.Footfall)
	assert.Equal(t, model.TrafficMedium, forecast.Level)
}

func TestPredictDegradedFallbackUsesLongRunMean(t *testing.T) {
	target := day("2026-06-01")
	// Two months of history at 300 followed by a gap, then a few recent
	// days at 100. The lag features cannot be computed, and the fallback
	// must reflect the whole series, not just the recent sliver.
	var history []model.Observation
	for i := 120; i >= 61; i-- {
		history = append(history, model.Observation{
			LocationCode: "110001", Date: target.AddDate(0, 0, -i), Footfall: 300,
		})
	}
	history = append(history, constantHistory("110001", target, 5, 100)...)
	s := newTestPredictor(t, history)

	// One split on the 30-day lag: long-run fallback (~285) routes right.
	m := flatModel(100, model.TrafficThresholds{Low: 50, High: 1000})
	m.Trees = []model.Tree{{Nodes: []model.TreeNode{
		{Feature: fLag30, Threshold: 200, Left: 1, Right: 2},
		{Leaf: true, Value: 0},
		{Leaf: true, Value: 100},
	}}}
	s.SetModel(m)

	forecast, err := s.PredictSingleDay(context.Background(), "110001", target)
	require.NoError(t, err)
	assert.True(t, forecast.LowConfidence)
	assert.Equal(t, 200, forecast.Footfall)
}

func TestPredictSingleDayClampsNegative(t *testing.T) {
	target := day("2026-06-01")
	s := newTestPredictor(t, constantHistory("110001", target, 45, 200))
	s.SetModel(flatModel(-25, model.TrafficThresholds{Low: 80, High: 150}))

	forecast, err := s.PredictSingleDay(context.Background(), "110001", target)
	require.NoError(t, err)
	assert.Equal(t, 0, forecast.Footfall)
	assert.Equal(t, model.TrafficLow, forecast.Level)
}

func TestPredictRange(t *testing.T) {
	start := day("2026-06-01")
	s := newTestPredictor(t, constantHistory("110001", start, 45, 200))
	s.SetModel(flatModel(100, model.TrafficThresholds{Low: 80, High: 150}))

	forecasts, err := s.PredictRange(context.Background(), "110001", start, start.AddDate(0, 0, 6))
	require.NoError(t, err)
	require.Len(t, forecasts, 7)
	for i, f := range forecasts {
		assert.True(t, f.Date.Equal(start.AddDate(0, 0, i)))
	}
}

func TestPredictRangeInvalid(t *testing.T) {
	s := newTestPredictor(t, nil)
	s.SetModel(flatModel(100, model.TrafficThresholds{Low: 80, High: 150}))
	_, err := s.PredictRange(context.Background(), "110001", day("2026-06-10"), day("2026-06-01"))
	assert.ErrorIs(t, err, model.ErrInvalidRange)
}

func TestModelSwap(t *testing.T) {
	s := newTestPredictor(t, nil)
	assert.Nil(t, s.Model())

	first := flatModel(100, model.TrafficThresholds{Low: 80, High: 150})
	s.SetModel(first)
	assert.Same(t, first, s.Model())

	second := flatModel(200, model.TrafficThresholds{Low: 80, High: 150})
	s.SetModel(second)
	assert.Same(t, second, s.Model())
}

func TestTrendDirection(t *testing.T) {
	asOf := day("2025-09-01")
	rising := rampSeries("110001", asOf.AddDate(0, 0, -40), 40, 100)
	s := newTestPredictor(t, rising)

	trend, err := s.Trend(context.Background(), "110001", asOf, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, trend.Days)
	assert.InDelta(t, 1.0, trend.SlopePerDay, 1e-9)
	assert.InDelta(t, 1.0, trend.Strength, 1e-9)
	assert.Equal(t, 39, trend.NetChange)
}

func TestTrendErrors(t *testing.T) {
	s := newTestPredictor(t, nil)
	_, err := s.Trend(context.Background(), "000000", day("2025-09-01"), 30)
	assert.ErrorIs(t, err, model.ErrCenterNotFound)

	_, err = s.Trend(context.Background(), "110001", day("2025-09-01"), 30)
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)
}

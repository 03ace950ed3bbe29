package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync/atomic"
	"time"

	"footfall_service/internal/domain/model"
	"footfall_service/internal/domain/repository"
)

// historyDays is how much trailing history the predictor fetches per
// center. The longest lag is 30 days; 60 leaves room for gaps.
const historyDays = 60

// longRunHistoryDays bounds the fetch for the degraded-mode fallback
// mean, which reflects the center's long-run level rather than the lag
// window.
const longRunHistoryDays = 1095

// PredictionService scores forecasts against the current model. The
// model is swapped atomically after a retrain, so in-flight predictions
// always see one coherent model and never a half-updated one.
type PredictionService struct {
	catalog repository.Catalog
	source  repository.ObservationSource
	current atomic.Pointer[model.TrainedModel]
}

func NewPredictionService(catalog repository.Catalog, source repository.ObservationSource) *PredictionService {
	return &PredictionService{catalog: catalog, source: source}
}

// SetModel publishes a model for all subsequent predictions.
func (s *PredictionService) SetModel(m *model.TrainedModel) {
	s.current.Store(m)
	if m != nil {
		log.Printf("model published: %d trees, trained at %s",
			len(m.Trees), m.TrainedAt.Format(time.RFC3339))
	}
}

// Model returns the currently published model, or nil.
func (s *PredictionService) Model() *model.TrainedModel {
	return s.current.Load()
}

// PredictSingleDay forecasts one center for one date. When the center's
// history is too short for the lag features, the forecast degrades to
// mean-substituted features and is flagged low confidence instead of
// failing; an operator with a week of data still gets an answer.
func (s *PredictionService) PredictSingleDay(ctx context.Context, locationCode string, date time.Time) (*model.Forecast, error) {
	m := s.current.Load()
	if m == nil {
		return nil, fmt.Errorf("predict %s: %w", locationCode, model.ErrNoModel)
	}

	center, err := s.catalog.GetCenter(locationCode)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", locationCode, err)
	}

	date = dayFloor(date)
	history, err := s.source.History(ctx, locationCode, date, historyDays)
	if err != nil {
		return nil, fmt.Errorf("load history for %s: %w", locationCode, err)
	}

	builder := NewFeatureBuilder(s.catalog, NewEncoderFromMap(m.Encodings))

	lowConfidence := false
	values, err := builder.BuildSingleRow(center, date, history)
	if err != nil {
		if !errors.Is(err, model.ErrInsufficientHistory) {
			return nil, err
		}
		full, err := s.source.History(ctx, locationCode, date, longRunHistoryDays)
		if err != nil {
			return nil, fmt.Errorf("load full history for %s: %w", locationCode, err)
		}
		values = builder.BuildSingleRowDegraded(center, date, full)
		lowConfidence = true
		log.Printf("predict %s on %s: short history, degraded features", locationCode, dayKey(date))
	}

	predicted, err := PredictRow(m, values.Row(locationCode, date))
	if err != nil {
		return nil, err
	}
	if predicted < 0 {
		predicted = 0
	}
	footfall := int(math.Round(predicted))
	level := m.Thresholds.Level(predicted)

	return &model.Forecast{
		LocationCode:  locationCode,
		Date:          date,
		Footfall:      footfall,
		Level:         level,
		LowConfidence: lowConfidence,
		Statements:    Explain(values, level),
	}, nil
}

// PredictRange forecasts one center for every day in [start, end]
// inclusive, in date order.
func (s *PredictionService) PredictRange(ctx context.Context, locationCode string, start, end time.Time) ([]*model.Forecast, error) {
	start = dayFloor(start)
	end = dayFloor(end)
	if start.After(end) {
		return nil, fmt.Errorf("range %s to %s: %w",
			dayKey(start), dayKey(end), model.ErrInvalidRange)
	}

	var forecasts []*model.Forecast
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		forecast, err := s.PredictSingleDay(ctx, locationCode, date)
		if err != nil {
			return nil, err
		}
		forecasts = append(forecasts, forecast)
	}
	return forecasts, nil
}

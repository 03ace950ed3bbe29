package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"footfall_service/internal/domain/model"
)

// TrendSummary describes the direction of a center's recent footfall.
type TrendSummary struct {
	LocationCode string  `json:"location_code"`
	Days         int     `json:"days"`
	Mean         float64 `json:"mean_footfall"`
	SlopePerDay  float64 `json:"slope_per_day"`
	Strength     float64 `json:"strength"` // absolute correlation of the linear fit, 0..1
	NetChange    int     `json:"net_change"`
}

// Trend fits a least-squares line through a center's observed history
// ending before asOf and summarizes its direction. Strength near zero
// means the series is flat or noise-dominated.
func (s *PredictionService) Trend(ctx context.Context, locationCode string, asOf time.Time, days int) (*TrendSummary, error) {
	if _, err := s.catalog.GetCenter(locationCode); err != nil {
		return nil, fmt.Errorf("trend for %s: %w", locationCode, err)
	}
	history, err := s.source.History(ctx, locationCode, dayFloor(asOf), days)
	if err != nil {
		return nil, fmt.Errorf("load history for %s: %w", locationCode, err)
	}
	if len(history) < 2 {
		return nil, fmt.Errorf("trend for %s needs at least 2 observations, have %d: %w",
			locationCode, len(history), model.ErrInsufficientHistory)
	}

	summary := &TrendSummary{
		LocationCode: locationCode,
		Days:         len(history),
		NetChange:    history[len(history)-1].Footfall - history[0].Footfall,
	}

	n := float64(len(history))
	var sumX, sumY float64
	for i, obs := range history {
		sumX += float64(i)
		sumY += float64(obs.Footfall)
	}
	meanX := sumX / n
	meanY := sumY / n
	summary.Mean = meanY

	var covXY, varX, varY float64
	for i, obs := range history {
		dx := float64(i) - meanX
		dy := float64(obs.Footfall) - meanY
		covXY += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX > 0 {
		summary.SlopePerDay = covXY / varX
	}
	if varX > 0 && varY > 0 {
		summary.Strength = math.Abs(covXY / math.Sqrt(varX*varY))
	}
	return summary, nil
}

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"footfall_service/internal/domain/model"
)

// ObservationSource provides read access to the recorded footfall series.
type ObservationSource interface {
	// History returns the observations for one center with dates in
	// [before-days, before), ordered by date ascending. The target date
	// itself is never included.
	History(ctx context.Context, code string, before time.Time, days int) ([]model.Observation, error)

	// All returns every observation ordered by (location code, date).
	All(ctx context.Context) ([]model.Observation, error)
}

// ObservationRecorder persists batches of observations.
type ObservationRecorder interface {
	SaveObservations(ctx context.Context, observations []model.Observation) error
}

// MemoryObservationStore keeps the series in memory, keyed per center
// by calendar day. Used in synthetic-data mode and in tests.
type MemoryObservationStore struct {
	mu     sync.RWMutex
	series map[string]map[string]model.Observation // code -> day -> row
}

// NewMemoryObservationStore creates an empty in-memory store.
func NewMemoryObservationStore() *MemoryObservationStore {
	return &MemoryObservationStore{series: make(map[string]map[string]model.Observation)}
}

// SaveObservations upserts observations. A (center, date) pair holds at
// most one row: a re-import of corrected data must win over stale
// values, matching the Postgres recorder's ON CONFLICT update.
func (s *MemoryObservationStore) SaveObservations(ctx context.Context, observations []model.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, obs := range observations {
		days, ok := s.series[obs.LocationCode]
		if !ok {
			days = make(map[string]model.Observation)
			s.series[obs.LocationCode] = days
		}
		days[dateKey(obs.Date)] = obs
	}
	return nil
}

// History returns the per-center observations in [before-days, before).
func (s *MemoryObservationStore) History(ctx context.Context, code string, before time.Time, days int) ([]model.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	from := before.AddDate(0, 0, -days)
	var out []model.Observation
	for _, obs := range s.series[code] {
		if obs.Date.Before(before) && !obs.Date.Before(from) {
			out = append(out, obs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// All returns every observation ordered by (location code, date).
func (s *MemoryObservationStore) All(ctx context.Context) ([]model.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]string, 0, len(s.series))
	for code := range s.series {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var out []model.Observation
	for _, code := range codes {
		start := len(out)
		for _, obs := range s.series[code] {
			out = append(out, obs)
		}
		sort.Slice(out[start:], func(i, j int) bool {
			return out[start+i].Date.Before(out[start+j].Date)
		})
	}
	return out, nil
}

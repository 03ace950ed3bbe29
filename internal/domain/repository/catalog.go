package repository

import (
	"sort"
	"sync"
	"time"

	"footfall_service/internal/domain/model"
)

// Catalog exposes read-only reference data about centers and holidays.
// The pipeline treats these as pure lookups and never mutates them.
type Catalog interface {
	GetCenter(code string) (model.Center, error)
	ListCenters() []model.Center
	IsHoliday(date time.Time) bool
	IsDayAfterHoliday(date time.Time) bool
}

// MemoryCatalog is the in-memory Catalog implementation. Reference data
// is small and read at startup, so both the synthetic and the Postgres
// paths load into this structure.
type MemoryCatalog struct {
	mu       sync.RWMutex
	centers  map[string]model.Center
	order    []string
	holidays map[string]struct{}
}

// NewMemoryCatalog builds a catalog from centers and holiday dates.
func NewMemoryCatalog(centers []model.Center, holidays []time.Time) *MemoryCatalog {
	c := &MemoryCatalog{
		centers:  make(map[string]model.Center),
		holidays: make(map[string]struct{}),
	}
	c.ReplaceCenters(centers)
	c.ReplaceHolidays(holidays)
	return c
}

// GetCenter returns the center for a location code.
func (c *MemoryCatalog) GetCenter(code string) (model.Center, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	center, ok := c.centers[code]
	if !ok {
		return model.Center{}, model.ErrCenterNotFound
	}
	return center, nil
}

// ListCenters returns all centers in insertion order.
func (c *MemoryCatalog) ListCenters() []model.Center {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Center, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.centers[code])
	}
	return out
}

// IsHoliday reports whether the date is in the holiday set.
func (c *MemoryCatalog) IsHoliday(date time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.holidays[dateKey(date)]
	return ok
}

// IsDayAfterHoliday reports whether the previous day was a holiday.
func (c *MemoryCatalog) IsDayAfterHoliday(date time.Time) bool {
	return c.IsHoliday(date.AddDate(0, 0, -1))
}

// ReplaceCenters swaps the full center set, used by catalog import.
func (c *MemoryCatalog) ReplaceCenters(centers []model.Center) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.centers = make(map[string]model.Center, len(centers))
	c.order = c.order[:0]
	for _, center := range centers {
		if _, seen := c.centers[center.LocationCode]; !seen {
			c.order = append(c.order, center.LocationCode)
		}
		c.centers[center.LocationCode] = center
	}
}

// ReplaceHolidays swaps the full holiday set.
func (c *MemoryCatalog) ReplaceHolidays(holidays []time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holidays = make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		c.holidays[dateKey(h)] = struct{}{}
	}
}

// Holidays returns the holiday dates sorted ascending, for export.
func (c *MemoryCatalog) Holidays() []time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.holidays))
	for k := range c.holidays {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		d, err := time.Parse("2006-01-02", k)
		if err == nil {
			out = append(out, d)
		}
	}
	return out
}

// dateKey normalizes a timestamp to its calendar date.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

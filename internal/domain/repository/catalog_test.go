package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footfall_service/internal/domain/model"
)

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestMemoryCatalogLookups(t *testing.T) {
	catalog := NewMemoryCatalog(DefaultCenters(), DefaultHolidays())

	center, err := catalog.GetCenter("110001")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryUrban, center.Category)

	_, err = catalog.GetCenter("000000")
	assert.ErrorIs(t, err, model.ErrCenterNotFound)

	// Republic Day and the day after.
	assert.True(t, catalog.IsHoliday(date("2025-01-26")))
	assert.True(t, catalog.IsDayAfterHoliday(date("2025-01-27")))
	assert.False(t, catalog.IsHoliday(date("2025-01-27")))
}

func TestMemoryCatalogReplacePreservesOrder(t *testing.T) {
	catalog := NewMemoryCatalog(nil, nil)
	catalog.ReplaceCenters([]model.Center{
		{LocationCode: "b"},
		{LocationCode: "a"},
		{LocationCode: "b"}, // duplicate keeps first position, last value wins
	})

	listed := catalog.ListCenters()
	require.Len(t, listed, 2)
	assert.Equal(t, "b", listed[0].LocationCode)
	assert.Equal(t, "a", listed[1].LocationCode)
}

func TestMemoryCatalogHolidaysSorted(t *testing.T) {
	catalog := NewMemoryCatalog(nil, []time.Time{
		date("2025-10-02"), date("2025-01-26"), date("2025-08-15"),
	})
	holidays := catalog.Holidays()
	require.Len(t, holidays, 3)
	assert.Equal(t, "2025-01-26", holidays[0].Format("2006-01-02"))
	assert.Equal(t, "2025-10-02", holidays[2].Format("2006-01-02"))
}

func TestMemoryObservationStoreHistoryWindow(t *testing.T) {
	store := NewMemoryObservationStore()
	ctx := context.Background()

	var batch []model.Observation
	for i := 0; i < 20; i++ {
		batch = append(batch, model.Observation{
			LocationCode: "110001",
			Date:         date("2025-06-01").AddDate(0, 0, i),
			Footfall:     100 + i,
		})
	}
	require.NoError(t, store.SaveObservations(ctx, batch))

	// [before-7, before): seven days ending 2025-06-14.
	history, err := store.History(ctx, "110001", date("2025-06-15"), 7)
	require.NoError(t, err)
	require.Len(t, history, 7)
	assert.Equal(t, "2025-06-08", history[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2025-06-14", history[len(history)-1].Date.Format("2006-01-02"))

	unknown, err := store.History(ctx, "999999", date("2025-06-15"), 7)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestMemoryObservationStoreReimportOverwrites(t *testing.T) {
	store := NewMemoryObservationStore()
	ctx := context.Background()

	require.NoError(t, store.SaveObservations(ctx, []model.Observation{
		{LocationCode: "110001", Date: date("2025-06-01"), Footfall: 100},
		{LocationCode: "110001", Date: date("2025-06-02"), Footfall: 110},
	}))
	// Corrected re-import of the first day must replace it, not pile up.
	require.NoError(t, store.SaveObservations(ctx, []model.Observation{
		{LocationCode: "110001", Date: date("2025-06-01"), Footfall: 250},
	}))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 250, all[0].Footfall)
	assert.Equal(t, 110, all[1].Footfall)

	history, err := store.History(ctx, "110001", date("2025-06-03"), 7)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 250, history[0].Footfall)
}

func TestMemoryObservationStoreAllOrdered(t *testing.T) {
	store := NewMemoryObservationStore()
	ctx := context.Background()

	require.NoError(t, store.SaveObservations(ctx, []model.Observation{
		{LocationCode: "b", Date: date("2025-06-02"), Footfall: 2},
		{LocationCode: "a", Date: date("2025-06-02"), Footfall: 3},
	}))
	require.NoError(t, store.SaveObservations(ctx, []model.Observation{
		{LocationCode: "a", Date: date("2025-06-01"), Footfall: 1},
	}))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].LocationCode)
	assert.Equal(t, "2025-06-01", all[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2025-06-02", all[1].Date.Format("2006-01-02"))
	assert.Equal(t, "b", all[2].LocationCode)
}

func TestDefaultCatalogShape(t *testing.T) {
	centers := DefaultCenters()
	assert.NotEmpty(t, centers)
	seen := make(map[string]struct{})
	for _, c := range centers {
		assert.NotEmpty(t, c.LocationCode)
		assert.Greater(t, c.BaseFootfall, 0.0)
		_, dup := seen[c.LocationCode]
		assert.False(t, dup, "duplicate location code %s", c.LocationCode)
		seen[c.LocationCode] = struct{}{}
	}
	assert.NotEmpty(t, DefaultHolidays())
}

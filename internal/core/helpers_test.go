package core

import (
	"time"

	"footfall_service/internal/domain/model"
	"footfall_service/internal/domain/repository"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func testCatalog() *repository.MemoryCatalog {
	centers := []model.Center{
		{LocationCode: "110001", District: "New Delhi", State: "Delhi", Category: model.CategoryUrban, BaseFootfall: 250},
		{LocationCode: "110096", District: "East Delhi", State: "Delhi", Category: model.CategorySemiUrban, BaseFootfall: 120},
		{LocationCode: "845401", District: "East Champaran", State: "Bihar", Category: model.CategoryRural, BaseFootfall: 60},
	}
	holidays := []time.Time{
		day("2025-08-15"),
		day("2025-10-02"),
		day("2026-01-26"),
	}
	return repository.NewMemoryCatalog(centers, holidays)
}

// constantHistory returns daily observations ending the day before end.
func constantHistory(code string, end time.Time, days, footfall int) []model.Observation {
	out := make([]model.Observation, 0, days)
	for i := days; i >= 1; i-- {
		out = append(out, model.Observation{
			LocationCode: code,
			Date:         end.AddDate(0, 0, -i),
			Footfall:     footfall,
		})
	}
	return out
}

// rampSeries returns daily observations over [start, start+days) with
// footfall = base + i.
func rampSeries(code string, start time.Time, days, base int) []model.Observation {
	out := make([]model.Observation, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, model.Observation{
			LocationCode: code,
			Date:         start.AddDate(0, 0, i),
			Footfall:     base + i,
		})
	}
	return out
}

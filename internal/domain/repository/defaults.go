package repository

import (
	"time"

	"footfall_service/internal/domain/model"
)

// DefaultCenters is the bootstrap catalog used in synthetic-data mode
// when no Postgres catalog or import is available.
func DefaultCenters() []model.Center {
	return []model.Center{
		{LocationCode: "110001", District: "Central Delhi", State: "Delhi", Category: model.CategoryUrban, BaseFootfall: 180},
		{LocationCode: "400001", District: "Mumbai City", State: "Maharashtra", Category: model.CategoryUrban, BaseFootfall: 220},
		{LocationCode: "560001", District: "Bangalore Urban", State: "Karnataka", Category: model.CategoryUrban, BaseFootfall: 200},
		{LocationCode: "600001", District: "Chennai", State: "Tamil Nadu", Category: model.CategoryUrban, BaseFootfall: 190},
		{LocationCode: "700001", District: "Kolkata", State: "West Bengal", Category: model.CategoryUrban, BaseFootfall: 175},
		{LocationCode: "500001", District: "Hyderabad", State: "Telangana", Category: model.CategoryUrban, BaseFootfall: 185},
		{LocationCode: "411001", District: "Pune", State: "Maharashtra", Category: model.CategoryUrban, BaseFootfall: 165},
		{LocationCode: "380001", District: "Ahmedabad", State: "Gujarat", Category: model.CategoryUrban, BaseFootfall: 170},
		{LocationCode: "562157", District: "Bangalore Rural", State: "Karnataka", Category: model.CategoryRural, BaseFootfall: 85},
		{LocationCode: "431001", District: "Aurangabad", State: "Maharashtra", Category: model.CategorySemiUrban, BaseFootfall: 110},
		{LocationCode: "226001", District: "Lucknow", State: "Uttar Pradesh", Category: model.CategoryUrban, BaseFootfall: 160},
		{LocationCode: "302001", District: "Jaipur", State: "Rajasthan", Category: model.CategoryUrban, BaseFootfall: 155},
		{LocationCode: "682001", District: "Ernakulam", State: "Kerala", Category: model.CategoryUrban, BaseFootfall: 135},
		{LocationCode: "800001", District: "Patna", State: "Bihar", Category: model.CategoryUrban, BaseFootfall: 125},
		{LocationCode: "784001", District: "Sonitpur", State: "Assam", Category: model.CategorySemiUrban, BaseFootfall: 95},
		{LocationCode: "361001", District: "Jamnagar", State: "Gujarat", Category: model.CategorySemiUrban, BaseFootfall: 100},
	}
}

// DefaultHolidays is the bootstrap public-holiday calendar for 2025-2026.
func DefaultHolidays() []time.Time {
	dates := []string{
		"2025-01-26", "2025-03-14", "2025-03-31", "2025-04-10", "2025-04-14",
		"2025-05-01", "2025-08-15", "2025-08-27", "2025-10-02", "2025-10-24",
		"2025-11-01", "2025-12-25",
		"2026-01-26", "2026-03-03", "2026-03-25", "2026-03-30", "2026-04-14",
		"2026-05-01", "2026-08-15", "2026-08-16", "2026-10-02", "2026-10-13",
		"2026-11-01", "2026-11-14", "2026-12-25",
	}
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := time.Parse("2006-01-02", d)
		if err == nil {
			out = append(out, t)
		}
	}
	return out
}

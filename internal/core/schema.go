package core

// Canonical feature schema. Vector positions are fixed by these indices:
// training and inference both build rows through this single definition,
// so their column order can never drift apart.
const (
	fDayOfWeek = iota
	fIsWeekend
	fIsMonday
	fMonth
	fQuarter
	fWeekOfMonth
	fDayOfMonth
	fIsFirstWeek
	fDayOfYear
	fIsHoliday
	fIsDayAfterHoliday
	fIsEnrollmentSeason
	fIsPensionMonth
	fIsFestivalSeason
	fCategoryEncoded
	fIsUrban
	fIsRural
	fDistrictEncoded
	fStateEncoded
	fLag7
	fLag14
	fLag30
	fRollMean7
	fRollMean14
	fRollMean30
	fRollStd7
	fRollStd14
	fRollStd30
	fRollMax30
	fRollMin30
	fRuralPension
	fUrbanEnrollment
	fMondayFirstWeek
	fWeekendHoliday
	fLagRatio7To30

	featureCount
)

var featureNames = []string{
	"day_of_week",
	"is_weekend",
	"is_monday",
	"month",
	"quarter",
	"week_of_month",
	"day_of_month",
	"is_first_week",
	"day_of_year",
	"is_holiday",
	"is_day_after_holiday",
	"is_enrollment_season",
	"is_pension_month",
	"is_festival_season",
	"center_category_encoded",
	"is_urban",
	"is_rural",
	"district_encoded",
	"state_encoded",
	"footfall_lag_7",
	"footfall_lag_14",
	"footfall_lag_30",
	"footfall_rolling_mean_7",
	"footfall_rolling_mean_14",
	"footfall_rolling_mean_30",
	"footfall_rolling_std_7",
	"footfall_rolling_std_14",
	"footfall_rolling_std_30",
	"footfall_rolling_max_30",
	"footfall_rolling_min_30",
	"rural_pension_interaction",
	"urban_enrollment_interaction",
	"monday_first_week",
	"weekend_holiday",
	"lag_ratio_7_to_30",
}

// FeatureNames returns the canonical ordered feature-name list. Rows
// produced by the builder share this slice; callers must not mutate it.
func FeatureNames() []string {
	return featureNames
}

// NonFeatureColumns are raw series columns excluded from the model
// input. Both initial training and interactive retraining consult this
// one list.
var NonFeatureColumns = []string{
	"date", "location_code", "district", "state", "center_category", "footfall",
}

package core

import "footfall_service/internal/domain/model"

// Rule-based forecast explanations. Rules are evaluated in a fixed
// order over the same feature values the model scored, so the output
// is deterministic for a given input and never drifts from what the
// model actually saw.

type explainRule struct {
	name      string
	applies   func(v *FeatureValues) bool
	statement string
	action    string // advisory emitted only for high-traffic forecasts
}

// Ordered registry: calendar effects first, then seasonal programs,
// then geography.
var explainRules = []explainRule{
	{
		name:      "holiday",
		applies:   func(v *FeatureValues) bool { return v.Calendar.IsHoliday },
		statement: "Public holiday: expect the center to be closed or nearly empty.",
	},
	{
		name:      "day_after_holiday",
		applies:   func(v *FeatureValues) bool { return v.Calendar.IsDayAfterHoliday && !v.Calendar.IsHoliday },
		statement: "Day after a holiday: backlog from the closure typically causes a surge.",
		action:    "Schedule extra operators to absorb the post-holiday backlog.",
	},
	{
		name:      "monday",
		applies:   func(v *FeatureValues) bool { return v.Calendar.IsMonday },
		statement: "Monday is the busiest weekday at enrollment centers.",
		action:    "Open all counters from the start of the day.",
	},
	{
		name:      "weekend",
		applies:   func(v *FeatureValues) bool { return v.Calendar.IsWeekend },
		statement: "Weekend day: footfall is typically well below the weekday level.",
	},
	{
		name:      "first_week",
		applies:   func(v *FeatureValues) bool { return v.Calendar.IsFirstWeek && !v.Calendar.IsWeekend },
		statement: "First week of the month tends to run busier with monthly update visits.",
	},
	{
		name:      "enrollment_season",
		applies:   func(v *FeatureValues) bool { return v.Calendar.IsEnrollmentSeason },
		statement: "School enrollment season (June to July): child enrollment demand peaks.",
		action:    "Stock additional child-enrollment kits and consumables.",
	},
	{
		name:      "pension_month",
		applies:   func(v *FeatureValues) bool { return v.Calendar.IsPensionMonth },
		statement: "November pension life-certificate window drives additional visits.",
		action:    "Set up a dedicated queue for pensioners.",
	},
	{
		name:      "festival_season",
		applies:   func(v *FeatureValues) bool { return v.Calendar.IsFestivalSeason },
		statement: "October festival season: scheme registrations lift demand.",
	},
	{
		name: "rural_pension",
		applies: func(v *FeatureValues) bool {
			return v.Category == model.CategoryRural && v.Calendar.IsPensionMonth
		},
		statement: "Rural center in November: pension-driven demand is amplified here.",
		action:    "Plan for the strongest surge of the year at this center.",
	},
	{
		name: "rural_variance",
		applies: func(v *FeatureValues) bool {
			return v.Category == model.CategoryRural && !v.Calendar.IsPensionMonth
		},
		statement: "Rural centers show high day-to-day variability; treat the estimate as indicative.",
	},
}

// Explain returns the ordered human-readable statements for a scored
// feature vector. The traffic level contributes a closing summary line,
// and high-traffic forecasts additionally carry the matched rules'
// staffing advisories. Pure function of its inputs.
func Explain(v *FeatureValues, level model.TrafficLevel) []string {
	var statements []string
	var actions []string

	for _, rule := range explainRules {
		if !rule.applies(v) {
			continue
		}
		statements = append(statements, rule.statement)
		if rule.action != "" {
			actions = append(actions, rule.action)
		}
	}

	switch level {
	case model.TrafficHigh:
		statements = append(statements, "Overall: high expected traffic for this center.")
		statements = append(statements, actions...)
	case model.TrafficLow:
		statements = append(statements, "Overall: low expected traffic for this center.")
	default:
		statements = append(statements, "Overall: typical expected traffic for this center.")
	}
	return statements
}

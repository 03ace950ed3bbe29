package core

import (
	"time"

	"footfall_service/internal/domain/repository"
)

// Known demand seasons, by month.
const (
	enrollmentStart = time.June     // school enrollment window
	enrollmentEnd   = time.July
	pensionMonth    = time.November // pension life-certificate window
	festivalMonth   = time.October
)

// CalendarFeatures are the pure date-derived features for one day.
// Everything here is a function of the date and the holiday calendar,
// with no dependency on the footfall history.
type CalendarFeatures struct {
	DayOfWeek          int // Monday=0 .. Sunday=6
	IsWeekend          bool
	IsMonday           bool
	Month              int
	Quarter            int
	WeekOfMonth        int
	DayOfMonth         int
	IsFirstWeek        bool
	DayOfYear          int
	IsHoliday          bool
	IsDayAfterHoliday  bool
	IsEnrollmentSeason bool
	IsPensionMonth     bool
	IsFestivalSeason   bool
}

// CalendarFor computes the calendar features for a date.
func CalendarFor(date time.Time, catalog repository.Catalog) CalendarFeatures {
	dow := mondayIndexed(date.Weekday())
	month := date.Month()
	weekOfMonth := (date.Day()-1)/7 + 1

	return CalendarFeatures{
		DayOfWeek:          dow,
		IsWeekend:          dow >= 5,
		IsMonday:           dow == 0,
		Month:              int(month),
		Quarter:            (int(month)-1)/3 + 1,
		WeekOfMonth:        weekOfMonth,
		DayOfMonth:         date.Day(),
		IsFirstWeek:        weekOfMonth == 1,
		DayOfYear:          date.YearDay(),
		IsHoliday:          catalog.IsHoliday(date),
		IsDayAfterHoliday:  catalog.IsDayAfterHoliday(date),
		IsEnrollmentSeason: month >= enrollmentStart && month <= enrollmentEnd,
		IsPensionMonth:     month == pensionMonth,
		IsFestivalSeason:   month == festivalMonth,
	}
}

// mondayIndexed converts Go's Sunday-first weekday to Monday=0..Sunday=6.
func mondayIndexed(w time.Weekday) int {
	return (int(w) + 6) % 7
}

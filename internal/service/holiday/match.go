package holiday

import (
	"time"

	"coaching/attendance/internal/entity"
)

// Matches reports whether rule covers day. Activity and tenant/branch scope
// are not checked here; see entity.HolidayRule.AppliesTo.
//
// Recurring rules anchored on Feb 29 only ever match Feb 29, so they are
// skipped in non-leap years.
func Matches(rule entity.HolidayRule, day time.Time) bool {
	day = entity.CivilDate(day)

	switch rule.Type {
	case entity.HolidayWeeklyOff:
		for _, d := range rule.DaysOfWeek {
			if time.Weekday(d) == day.Weekday() {
				return true
			}
		}
		return false

	case entity.HolidayDateRange:
		if rule.StartDate == nil || rule.EndDate == nil {
			return false
		}
		start, end := entity.CivilDate(*rule.StartDate), entity.CivilDate(*rule.EndDate)
		if !day.Before(start) && !day.After(end) {
			return true
		}
		return rule.IsRecurring && inYearlyWindow(start, end, day)

	default:
		if rule.StartDate == nil {
			return false
		}
		start := entity.CivilDate(*rule.StartDate)
		if day.Equal(start) {
			return true
		}
		return rule.IsRecurring && day.Month() == start.Month() && day.Day() == start.Day()
	}
}

// inYearlyWindow compares month/day positions, wrapping around Dec 31 when
// the window's end falls in the year after its start.
func inYearlyWindow(start, end, day time.Time) bool {
	if !end.Before(start.AddDate(1, 0, 0)) {
		return true
	}

	s, e, d := monthDay(start), monthDay(end), monthDay(day)
	if s <= e {
		return s <= d && d <= e
	}
	return d >= s || d <= e
}

func monthDay(t time.Time) int {
	return int(t.Month())*100 + t.Day()
}

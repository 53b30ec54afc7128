package report

import (
	"fmt"
	"time"
)

const isoDateLayout = "2006-01-02"

var DayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var DayNamesShort = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekStart returns midnight on the Monday of the week containing t, in t's
// location. Calendar arithmetic only, so month, year and DST boundaries are
// handled by the time package.
func WeekStart(t time.Time) time.Time {
	year, month, day := t.Date()
	date := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	offset := int(date.Weekday()) - 1
	if date.Weekday() == time.Sunday {
		offset = 6
	}
	return date.AddDate(0, 0, -offset)
}

// WeekDates returns the seven dates of the week, Monday through Sunday.
func WeekDates(weekStart time.Time) []time.Time {
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = weekStart.AddDate(0, 0, i)
	}
	return dates
}

// FormatISO renders t as YYYY-MM-DD using its local calendar fields.
func FormatISO(t time.Time) string {
	return t.Format(isoDateLayout)
}

// ParseISO parses a YYYY-MM-DD date in the local time zone.
func ParseISO(value string) (time.Time, error) {
	return time.ParseInLocation(isoDateLayout, value, time.Local)
}

// FormatDisplay renders t as a short month name and day, e.g. "Jan 26".
func FormatDisplay(t time.Time) string {
	return t.Format("Jan 2")
}

// WeekRange renders the week as e.g. "Jan 26-31, 2026" or, when the week
// crosses a month boundary, "Jan 26 - Feb 1, 2026".
func WeekRange(weekStart time.Time) string {
	weekEnd := weekStart.AddDate(0, 0, 6)
	if weekStart.Month() == weekEnd.Month() {
		return fmt.Sprintf("%s %d-%d, %d", weekStart.Format("Jan"), weekStart.Day(), weekEnd.Day(), weekEnd.Year())
	}
	return fmt.Sprintf("%s %d - %s %d, %d", weekStart.Format("Jan"), weekStart.Day(), weekEnd.Format("Jan"), weekEnd.Day(), weekEnd.Year())
}

// SubmitOpensAt returns the instant submission opens for the week: the
// Sunday of that week at 18:00 local time.
func SubmitOpensAt(weekStart time.Time) time.Time {
	sunday := weekStart.AddDate(0, 0, 6)
	return time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 18, 0, 0, 0, sunday.Location())
}

// CanSubmit reports whether a report for the given week may be submitted at
// now. The gate is a single fixed instant per week and never closes once
// open. When closed, reason names the opening moment.
func CanSubmit(weekStart, now time.Time) (bool, string) {
	opens := SubmitOpensAt(weekStart)
	if now.Before(opens) {
		return false, "Submission opens " + opens.Format("Monday, Jan 2 at 3:04 PM")
	}
	return true, ""
}

package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/shiftlog/internal/constants"
	"github.com/julianstephens/shiftlog/internal/models"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// FormatDate returns the date string (YYYY-MM-DD) for an instant.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) at midnight in the
// specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StandardStartOn returns the configured standard clock-in instant on the
// calendar day containing t.
func StandardStartOn(t time.Time, s models.Settings) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), s.StartHour, s.StartMinute, 0, 0, t.Location())
}

// StandardEndOn returns the configured standard clock-out instant on the
// calendar day containing t. An end time numerically before the start time
// rolls into the next day.
func StandardEndOn(t time.Time, s models.Settings) time.Time {
	end := time.Date(t.Year(), t.Month(), t.Day(), s.EndHour, s.EndMinute, 0, 0, t.Location())
	if end.Before(StandardStartOn(t, s)) {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// StartOfDay truncates an instant to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart returns midnight of the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday belongs to the preceding Monday-start week
	}
	return day.AddDate(0, 0, -offset)
}

// MonthStart returns midnight of the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthEnd returns midnight of the last day of the month containing t.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// YearStart returns midnight of January 1st of the year containing t.
func YearStart(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}

// YearEnd returns midnight of December 31st of the year containing t.
func YearEnd(t time.Time) time.Time {
	return time.Date(t.Year(), 12, 31, 0, 0, 0, 0, t.Location())
}

// ClampToToday returns end, or today's midnight when end would pass it.
// Current-period views never report days that have not happened yet.
func ClampToToday(end, now time.Time) time.Time {
	today := StartOfDay(now)
	if end.After(today) {
		return today
	}
	return end
}

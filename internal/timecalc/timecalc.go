// Package timecalc holds the pure duration arithmetic: converting a raw
// clocked span plus the current settings into worked and overtime minutes.
// Everything operates on whole minutes; no floating point anywhere.
package timecalc

import "github.com/julianstephens/shiftlog/internal/models"

// HoursMinutes is the integer pair all durations cross the engine boundary
// as. Formatting is left to callers.
type HoursMinutes struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// Split breaks a whole-minute count into an HoursMinutes pair.
func Split(minutes int) HoursMinutes {
	if minutes < 0 {
		minutes = 0
	}
	return HoursMinutes{Hours: minutes / 60, Minutes: minutes % 60}
}

// TotalMinutes is the inverse of Split.
func (hm HoursMinutes) TotalMinutes() int {
	return hm.Hours*60 + hm.Minutes
}

// StandardBreakMinutes returns the lunch break implied by the configured
// standard day: the wall-clock span between standard start and end times
// minus the standard work hours. An end time numerically before the start
// time is treated as crossing midnight. Inconsistent settings (standard
// hours exceeding the span) clamp to zero rather than going negative.
func StandardBreakMinutes(s models.Settings) int {
	startMinutes := s.StartHour*60 + s.StartMinute
	endMinutes := s.EndHour*60 + s.EndMinute
	if endMinutes < startMinutes {
		endMinutes += 24 * 60
	}

	span := endMinutes - startMinutes
	brk := span - s.StandardWorkHours*60
	if brk < 0 {
		return 0
	}
	return brk
}

// ActualWorkMinutes converts a raw clocked span into worked minutes. The
// implied break is deducted only when the break-deduction setting is on and
// the raw span actually exceeds the break; short sessions are never driven
// negative.
func ActualWorkMinutes(rawMinutes int, s models.Settings) int {
	if !s.ExcludeBreakTime {
		return rawMinutes
	}
	brk := StandardBreakMinutes(s)
	if rawMinutes > brk {
		return rawMinutes - brk
	}
	return rawMinutes
}

// ExpectedWorkMinutes returns the overtime threshold for a day. When breaks
// are deducted the bar is the configured standard hours; when they are not,
// the bar rises by the implied break so the threshold stays anchored to the
// configured start-end wall-clock span.
func ExpectedWorkMinutes(s models.Settings) int {
	expected := s.StandardWorkHours * 60
	if !s.ExcludeBreakTime {
		expected += StandardBreakMinutes(s)
	}
	return expected
}

// OvertimeMinutes returns the portion of actual beyond expected, never
// negative.
func OvertimeMinutes(actual, expected int) int {
	if actual > expected {
		return actual - expected
	}
	return 0
}

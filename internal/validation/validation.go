package validation

import (
	"fmt"
	"time"

	"github.com/julianstephens/shiftlog/internal/constants"
	"github.com/julianstephens/shiftlog/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictHoursOutOfRange   ConflictType = "hours_out_of_range"
	ConflictInvalidClockTime  ConflictType = "invalid_clock_time"
	ConflictInvalidTimezone   ConflictType = "invalid_timezone"
	ConflictHoursExceedWindow ConflictType = "hours_exceed_window"
	ConflictInvalidEditRange  ConflictType = "invalid_edit_range"
	ConflictEditSpansTwoDays  ConflictType = "edit_spans_two_days"
	ConflictEditEndsInFuture  ConflictType = "edit_ends_in_future"
)

// Severity distinguishes conflicts that block a save from ones that only
// warrant a warning.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Conflict represents a detected problem in settings or an edited record
type Conflict struct {
	Type        ConflictType
	Severity    Severity
	Description string
}

// Result contains all detected conflicts
type Result struct {
	Conflicts []Conflict
}

// HasErrors returns true if any conflict blocks the operation
func (r *Result) HasErrors() bool {
	for _, c := range r.Conflicts {
		if c.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Warnings returns the non-blocking conflicts
func (r *Result) Warnings() []Conflict {
	var out []Conflict
	for _, c := range r.Conflicts {
		if c.Severity == SeverityWarning {
			out = append(out, c)
		}
	}
	return out
}

// FormatReport returns a human-readable report of all conflicts
func (r *Result) FormatReport() string {
	if len(r.Conflicts) == 0 {
		return "No problems detected."
	}

	report := "Problems detected:\n"
	for _, c := range r.Conflicts {
		report += fmt.Sprintf("- %s\n", c.Description)
	}
	return report
}

// Validator validates settings and record edits
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateSettings checks a settings value before it is saved. Out-of-range
// fields are errors; standard hours that cannot fit between the configured
// start and end produce a warning, since the span may legitimately cross
// midnight for night shifts.
func (v *Validator) ValidateSettings(s models.Settings) Result {
	result := Result{Conflicts: []Conflict{}}

	if s.StandardWorkHours < constants.MinStandardWorkHours || s.StandardWorkHours > constants.MaxStandardWorkHours {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:     ConflictHoursOutOfRange,
			Severity: SeverityError,
			Description: fmt.Sprintf("Standard work hours must be between %d and %d, got %d",
				constants.MinStandardWorkHours, constants.MaxStandardWorkHours, s.StandardWorkHours),
		})
	}

	clockFields := []struct {
		name  string
		value int
		max   int
	}{
		{"start hour", s.StartHour, 23},
		{"start minute", s.StartMinute, 59},
		{"end hour", s.EndHour, 23},
		{"end minute", s.EndMinute, 59},
	}
	for _, f := range clockFields {
		if f.value < 0 || f.value > f.max {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidClockTime,
				Severity:    SeverityError,
				Description: fmt.Sprintf("Invalid %s: %d (must be 0-%d)", f.name, f.value, f.max),
			})
		}
	}

	if s.Timezone != "" && s.Timezone != "Local" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidTimezone,
				Severity:    SeverityError,
				Description: fmt.Sprintf("Unknown timezone: %s", s.Timezone),
			})
		}
	}

	if result.HasErrors() {
		return result
	}

	span := spanMinutes(s)
	if s.StandardWorkHours*60 > span {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:     ConflictHoursExceedWindow,
			Severity: SeverityWarning,
			Description: fmt.Sprintf("%d standard hours do not fit the %02d:%02d-%02d:%02d window; the implied break is treated as zero",
				s.StandardWorkHours, s.StartHour, s.StartMinute, s.EndHour, s.EndMinute),
		})
	}

	return result
}

// ValidateEdit checks a manually edited record interval. The interval must
// run forward, stay within one calendar day, and not reach past now.
func (v *Validator) ValidateEdit(start, end, now time.Time) Result {
	result := Result{Conflicts: []Conflict{}}

	if !end.After(start) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:     ConflictInvalidEditRange,
			Severity: SeverityError,
			Description: fmt.Sprintf("End time %s must be after start time %s",
				end.Format(constants.TimeFormat), start.Format(constants.TimeFormat)),
		})
		return result
	}

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictEditSpansTwoDays,
			Severity:    SeverityError,
			Description: fmt.Sprintf("Edited interval must stay within %s", start.Format(constants.DateFormat)),
		})
	}

	if end.After(now) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictEditEndsInFuture,
			Severity:    SeverityError,
			Description: fmt.Sprintf("End time %s is in the future", end.Format(constants.TimeFormat)),
		})
	}

	return result
}

// spanMinutes is the standard window length. An end clock time before the
// start crosses midnight into the next day.
func spanMinutes(s models.Settings) int {
	start := s.StartHour*60 + s.StartMinute
	end := s.EndHour*60 + s.EndMinute
	if end < start {
		end += 24 * 60
	}
	return end - start
}

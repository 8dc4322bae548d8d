package timecalc

import (
	"testing"

	"github.com/julianstephens/shiftlog/internal/models"
)

func standardSettings() models.Settings {
	return models.Settings{
		StandardWorkHours: 8,
		StartHour:         9,
		StartMinute:       0,
		EndHour:           18,
		EndMinute:         0,
		ExcludeBreakTime:  true,
	}
}

func TestStandardBreakMinutes(t *testing.T) {
	tests := []struct {
		name     string
		settings models.Settings
		want     int
	}{
		{
			name:     "nine hour span with eight standard hours",
			settings: standardSettings(),
			want:     60,
		},
		{
			name: "no implied break",
			settings: models.Settings{
				StandardWorkHours: 8,
				StartHour:         9, EndHour: 17,
				ExcludeBreakTime: true,
			},
			want: 0,
		},
		{
			name: "ninety minute break",
			settings: models.Settings{
				StandardWorkHours: 8,
				StartHour:         8, StartMinute: 30,
				EndHour: 18, EndMinute: 0,
				ExcludeBreakTime: true,
			},
			want: 90,
		},
		{
			name: "end before start crosses midnight",
			settings: models.Settings{
				StandardWorkHours: 8,
				StartHour:         22, StartMinute: 0,
				EndHour: 7, EndMinute: 0,
				ExcludeBreakTime: true,
			},
			want: 60, // 22:00 -> 07:00 is a 9h span
		},
		{
			name: "standard hours exceed span clamps to zero",
			settings: models.Settings{
				StandardWorkHours: 10,
				StartHour:         9, EndHour: 18,
				ExcludeBreakTime: true,
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StandardBreakMinutes(tt.settings); got != tt.want {
				t.Errorf("StandardBreakMinutes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestActualWorkMinutes(t *testing.T) {
	s := standardSettings()

	tests := []struct {
		name       string
		rawMinutes int
		exclude    bool
		want       int
	}{
		{name: "full day deducts break", rawMinutes: 540, exclude: true, want: 480},
		{name: "overtime day deducts break", rawMinutes: 660, exclude: true, want: 600},
		{name: "short session keeps raw minutes", rawMinutes: 45, exclude: true, want: 45},
		{name: "raw equal to break keeps raw minutes", rawMinutes: 60, exclude: true, want: 60},
		{name: "deduction disabled keeps raw minutes", rawMinutes: 540, exclude: false, want: 540},
		{name: "zero raw", rawMinutes: 0, exclude: true, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.ExcludeBreakTime = tt.exclude
			got := ActualWorkMinutes(tt.rawMinutes, s)
			if got != tt.want {
				t.Errorf("ActualWorkMinutes(%d) = %d, want %d", tt.rawMinutes, got, tt.want)
			}
			if got > tt.rawMinutes {
				t.Errorf("ActualWorkMinutes(%d) = %d exceeds raw input", tt.rawMinutes, got)
			}
		})
	}
}

func TestExpectedWorkMinutes(t *testing.T) {
	s := standardSettings()

	if got := ExpectedWorkMinutes(s); got != 480 {
		t.Errorf("ExpectedWorkMinutes() with break excluded = %d, want 480", got)
	}

	s.ExcludeBreakTime = false
	if got := ExpectedWorkMinutes(s); got != 540 {
		t.Errorf("ExpectedWorkMinutes() with break included = %d, want 540", got)
	}

	// The expected bar never drops below the configured standard hours.
	for _, exclude := range []bool{true, false} {
		s.ExcludeBreakTime = exclude
		if got := ExpectedWorkMinutes(s); got < s.StandardWorkHours*60 {
			t.Errorf("ExpectedWorkMinutes() = %d, below standard %d", got, s.StandardWorkHours*60)
		}
	}
}

func TestOvertimeMinutes(t *testing.T) {
	tests := []struct {
		name             string
		actual, expected int
		want             int
	}{
		{name: "under expected", actual: 400, expected: 480, want: 0},
		{name: "exactly expected", actual: 480, expected: 480, want: 0},
		{name: "two hours over", actual: 600, expected: 480, want: 120},
		{name: "zero actual", actual: 0, expected: 480, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OvertimeMinutes(tt.actual, tt.expected)
			if got != tt.want {
				t.Errorf("OvertimeMinutes(%d, %d) = %d, want %d", tt.actual, tt.expected, got, tt.want)
			}
			if got < 0 {
				t.Errorf("OvertimeMinutes(%d, %d) = %d, negative", tt.actual, tt.expected, got)
			}
		})
	}
}

// A standard 09:00-18:00 day worked exactly yields eight hours and no
// overtime; working until 20:00 yields ten hours and two hours overtime.
func TestFullDayScenarios(t *testing.T) {
	s := standardSettings()

	t.Run("clock out at standard end", func(t *testing.T) {
		raw := 540 // 09:00 -> 18:00
		actual := ActualWorkMinutes(raw, s)
		if actual != 480 {
			t.Errorf("actual = %d, want 480", actual)
		}
		if ot := OvertimeMinutes(actual, ExpectedWorkMinutes(s)); ot != 0 {
			t.Errorf("overtime = %d, want 0", ot)
		}
	})

	t.Run("clock out two hours late", func(t *testing.T) {
		raw := 660 // 09:00 -> 20:00
		actual := ActualWorkMinutes(raw, s)
		if actual != 600 {
			t.Errorf("actual = %d, want 600", actual)
		}
		if ot := OvertimeMinutes(actual, ExpectedWorkMinutes(s)); ot != 120 {
			t.Errorf("overtime = %d, want 120", ot)
		}
	})

	// Toggling break deduction moves both the worked minutes and the
	// expected bar by the same break, so overtime is unchanged.
	t.Run("toggling break deduction preserves overtime", func(t *testing.T) {
		raw := 660
		s.ExcludeBreakTime = false
		actual := ActualWorkMinutes(raw, s)
		if actual != 660 {
			t.Errorf("actual = %d, want 660", actual)
		}
		expected := ExpectedWorkMinutes(s)
		if expected != 540 {
			t.Errorf("expected = %d, want 540", expected)
		}
		if ot := OvertimeMinutes(actual, expected); ot != 120 {
			t.Errorf("overtime = %d, want 120", ot)
		}
	})
}

func TestSplit(t *testing.T) {
	tests := []struct {
		minutes int
		want    HoursMinutes
	}{
		{minutes: 0, want: HoursMinutes{0, 0}},
		{minutes: 59, want: HoursMinutes{0, 59}},
		{minutes: 60, want: HoursMinutes{1, 0}},
		{minutes: 605, want: HoursMinutes{10, 5}},
		{minutes: -30, want: HoursMinutes{0, 0}},
	}

	for _, tt := range tests {
		if got := Split(tt.minutes); got != tt.want {
			t.Errorf("Split(%d) = %+v, want %+v", tt.minutes, got, tt.want)
		}
	}

	if got := (HoursMinutes{Hours: 10, Minutes: 5}).TotalMinutes(); got != 605 {
		t.Errorf("TotalMinutes() = %d, want 605", got)
	}
}

package utils

import (
	"testing"
	"time"

	"github.com/julianstephens/shiftlog/internal/models"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: "", wantErr: false},
		{name: "Local returns local", timezone: "Local", wantErr: false},
		{name: "valid timezone UTC", timezone: "UTC", wantErr: false},
		{name: "valid timezone Asia/Shanghai", timezone: "Asia/Shanghai", wantErr: false},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		day  string
		want string
	}{
		{name: "monday maps to itself", day: "2023-09-11", want: "2023-09-11"},
		{name: "wednesday maps to monday", day: "2023-09-13", want: "2023-09-11"},
		{name: "sunday maps to preceding monday", day: "2023-09-17", want: "2023-09-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := ParseDateInLocation(tt.day, time.UTC)
			if err != nil {
				t.Fatalf("ParseDateInLocation() error = %v", err)
			}
			if got := FormatDate(WeekStart(day)); got != tt.want {
				t.Errorf("WeekStart(%s) = %s, want %s", tt.day, got, tt.want)
			}
		})
	}
}

func TestMonthAndYearBounds(t *testing.T) {
	day, err := ParseDateInLocation("2023-09-15", time.UTC)
	if err != nil {
		t.Fatalf("ParseDateInLocation() error = %v", err)
	}

	if got := FormatDate(MonthStart(day)); got != "2023-09-01" {
		t.Errorf("MonthStart() = %s, want 2023-09-01", got)
	}
	if got := FormatDate(MonthEnd(day)); got != "2023-09-30" {
		t.Errorf("MonthEnd() = %s, want 2023-09-30", got)
	}
	if got := FormatDate(YearStart(day)); got != "2023-01-01" {
		t.Errorf("YearStart() = %s, want 2023-01-01", got)
	}
	if got := FormatDate(YearEnd(day)); got != "2023-12-31" {
		t.Errorf("YearEnd() = %s, want 2023-12-31", got)
	}
}

func TestStandardEndOnCrossesMidnight(t *testing.T) {
	s := models.Settings{StartHour: 22, EndHour: 7}
	day := time.Date(2023, 9, 15, 23, 0, 0, 0, time.UTC)

	end := StandardEndOn(day, s)
	if FormatDate(end) != "2023-09-16" {
		t.Errorf("StandardEndOn() = %s, want next-day end", FormatDate(end))
	}
	if !end.After(StandardStartOn(day, s)) {
		t.Error("StandardEndOn() not after StandardStartOn()")
	}
}

func TestClampToToday(t *testing.T) {
	now := time.Date(2023, 9, 15, 12, 0, 0, 0, time.UTC)

	future := time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC)
	if got := ClampToToday(future, now); FormatDate(got) != "2023-09-15" {
		t.Errorf("ClampToToday(future) = %s, want 2023-09-15", FormatDate(got))
	}

	past := time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC)
	if got := ClampToToday(past, now); FormatDate(got) != "2023-09-10" {
		t.Errorf("ClampToToday(past) = %s, want 2023-09-10", FormatDate(got))
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2023, 9, 15, 0, 5, 0, 0, time.UTC)
	b := time.Date(2023, 9, 15, 23, 55, 0, 0, time.UTC)
	c := time.Date(2023, 9, 16, 0, 0, 0, 0, time.UTC)

	if !SameDay(a, b) {
		t.Error("SameDay() = false for same calendar day")
	}
	if SameDay(b, c) {
		t.Error("SameDay() = true across midnight")
	}
}

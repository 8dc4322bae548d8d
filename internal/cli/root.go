package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/shiftlog/internal/backup"
	"github.com/julianstephens/shiftlog/internal/constants"
	"github.com/julianstephens/shiftlog/internal/logger"
	"github.com/julianstephens/shiftlog/internal/storage"
	"github.com/julianstephens/shiftlog/internal/tracker"
	"github.com/julianstephens/shiftlog/internal/validation"
)

type Context struct {
	Store     storage.Provider
	Tracker   *tracker.Tracker
	Validator *validation.Validator
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// FormatMinutes renders a minute count as "8h 30m".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// FormatClock renders an instant as HH:MM.
func FormatClock(t time.Time) string {
	return t.Format(constants.TimeFormat)
}

// ParseClockTime parses "HH:MM" onto the calendar day containing day.
func ParseClockTime(s string, day time.Time) (time.Time, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid time format %q, use HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid minute in %q", s)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), nil
}

// ParseDay resolves a date argument: "today", "yesterday", or YYYY-MM-DD.
func ParseDay(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	}
	day, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD, 'today' or 'yesterday'", s)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location()), nil
}

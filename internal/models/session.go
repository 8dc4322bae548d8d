package models

import (
	"time"

	"github.com/julianstephens/shiftlog/internal/constants"
)

// WorkSession represents the single current clock-in-to-clock-out interval.
// RealStartTime is the instant the user actually pressed clock-in and is kept
// for display only; ComputedStartTime is the instant duration math runs from
// (never earlier than the configured standard start time).
type WorkSession struct {
	Status            constants.WorkStatus `json:"status"`
	RealStartTime     *time.Time           `json:"real_start_time,omitempty"`
	ComputedStartTime *time.Time           `json:"computed_start_time,omitempty"`
	EndTime           *time.Time           `json:"end_time,omitempty"`
}

// IsOpen reports whether the session has been started but not yet closed.
func (s WorkSession) IsOpen() bool {
	return s.Status == constants.StatusWorking && s.ComputedStartTime != nil
}

// IsComplete reports whether the session holds both endpoints of a finished
// interval.
func (s WorkSession) IsComplete() bool {
	return s.Status == constants.StatusCompleted && s.ComputedStartTime != nil && s.EndTime != nil
}

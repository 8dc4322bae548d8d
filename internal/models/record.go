package models

// WorkRecord is one completed session as stored for a calendar day.
// Timestamps are epoch milliseconds. Raw time is stored split into hours and
// minutes so older data written before whole-minute storage keeps loading.
type WorkRecord struct {
	ID            string `json:"id"`                        // storage identifier
	SessionID     int64  `json:"session_id"`                // save-time epoch millis; dedup/delete key
	RealStartTime int64  `json:"real_start_time,omitempty"` // actual clock-in instant, for display
	StartTime     int64  `json:"start_time"`                // instant duration math ran from
	EndTime       int64  `json:"end_time"`

	RawHours   int `json:"raw_hours"`   // wall-clock span, pre break-deduction
	RawMinutes int `json:"raw_minutes"` // minute remainder of the raw span

	BreakMinutes      int  `json:"break_minutes"`       // implied lunch break at save time
	ExcludedBreakTime bool `json:"excluded_break_time"` // break-deduction flag snapshot at save time

	WorkMinutes     int `json:"work_minutes"`     // derived under the policy in effect at save time
	OvertimeMinutes int `json:"overtime_minutes"` // derived under the policy in effect at save time

	AutoCompleted  bool `json:"auto_completed,omitempty"`  // closed by the day-rollover watchdog
	EditedManually bool `json:"edited_manually,omitempty"` // replaced through a manual time edit

	// HasRawTime distinguishes records that predate raw-time storage. Legacy
	// records keep their stored derived minutes verbatim and are never
	// recomputed.
	HasRawTime bool `json:"has_raw_time"`
}

// RawTotalMinutes returns the raw wall-clock span in whole minutes.
func (r WorkRecord) RawTotalMinutes() int {
	return r.RawHours*60 + r.RawMinutes
}

// DayRecordSet maps a calendar-date string (YYYY-MM-DD) to that day's
// records, ordered newest first.
type DayRecordSet map[string][]WorkRecord

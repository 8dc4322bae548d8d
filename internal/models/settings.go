package models

// Settings represents application-wide settings
type Settings struct {
	StandardWorkHours int    `json:"standard_work_hours"` // expected work duration per day, in hours (1-12)
	StartHour         int    `json:"start_hour"`          // standard clock-in hour (0-23)
	StartMinute       int    `json:"start_minute"`        // standard clock-in minute (0-59)
	EndHour           int    `json:"end_hour"`            // standard clock-out hour (0-23)
	EndMinute         int    `json:"end_minute"`          // standard clock-out minute (0-59)
	ExcludeBreakTime  bool   `json:"exclude_break_time"`  // whether the implied lunch break is deducted from raw time
	Timezone          string `json:"timezone"`            // IANA timezone name, or "Local" for system timezone
}

package constants

const (
	// Setting keys as stored in the settings table / document
	SettingStandardWorkHours = "standard_work_hours"
	SettingStartHour         = "start_hour"
	SettingStartMinute       = "start_minute"
	SettingEndHour           = "end_hour"
	SettingEndMinute         = "end_minute"
	SettingExcludeBreakTime  = "exclude_break_time"
	SettingTimezone          = "timezone"

	// Default Settings Values
	DefaultStandardWorkHours = 8
	DefaultStartHour         = 9
	DefaultStartMinute       = 0
	DefaultEndHour           = 18
	DefaultEndMinute         = 0
	DefaultExcludeBreakTime  = true
	DefaultTimezone          = "Local" // Use system local timezone by default

	// Validation bounds for standard work hours
	MinStandardWorkHours = 1
	MaxStandardWorkHours = 12
)

package constants

import "time"

// WorkStatus represents the state of the current work session
type WorkStatus int

const (
	StatusIdle WorkStatus = iota
	StatusWorking
	StatusCompleted
)

const (
	AppName            = "shiftlog"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/shiftlog/shiftlog.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "shiftlog-"

	// DuplicateRecordTolerance is the window within which two records with
	// matching start and end times are treated as the same session.
	DuplicateRecordTolerance = time.Second

	// EditMatchTolerance is the window used to locate the record a manual
	// time edit replaces.
	EditMatchTolerance = 5 * time.Second
)

// String returns the human-readable name of a work status.
func (s WorkStatus) String() string {
	switch s {
	case StatusWorking:
		return "working"
	case StatusCompleted:
		return "completed"
	default:
		return "idle"
	}
}

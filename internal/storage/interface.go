package storage

import (
	"time"

	"github.com/julianstephens/shiftlog/internal/models"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Current session state. GetSession never fails on corrupt stored
	// values; unreadable fields fall back to an idle, empty session.
	GetSession() (models.WorkSession, error)
	SaveSession(models.WorkSession) error
	ClearSession() error

	// Day record lists, keyed by date string (YYYY-MM-DD). Each day's list
	// is replaced atomically. Saving an empty list removes the day key.
	GetDayRecords(date string) ([]models.WorkRecord, error)
	SaveDayRecords(date string, records []models.WorkRecord) error
	GetAllRecords() (models.DayRecordSet, error)
	// GetRecordsInRange returns the day lists for dates in [start, end],
	// both inclusive, as date strings.
	GetRecordsInRange(start, end string) (models.DayRecordSet, error)

	// Last-visit timestamp for the day-rollover watchdog. The zero time
	// means no visit has been recorded yet.
	GetLastVisit() (time.Time, error)
	SetLastVisit(time.Time) error

	// Utils
	GetConfigPath() string
}

package storage

import (
	"net/url"
	"strings"

	"github.com/julianstephens/shiftlog/internal/constants"
	"github.com/julianstephens/shiftlog/internal/models"
)

// DefaultSettings returns the settings a fresh store is initialized with:
// an eight-hour day inside a 09:00-18:00 window with the implied hour of
// break deducted.
func DefaultSettings() models.Settings {
	return models.Settings{
		StandardWorkHours: constants.DefaultStandardWorkHours,
		StartHour:         constants.DefaultStartHour,
		StartMinute:       constants.DefaultStartMinute,
		EndHour:           constants.DefaultEndHour,
		EndMinute:         constants.DefaultEndMinute,
		ExcludeBreakTime:  constants.DefaultExcludeBreakTime,
		Timezone:          constants.DefaultTimezone,
	}
}

// IsPostgresURL reports whether a config string selects the postgres store.
func IsPostgresURL(config string) bool {
	return strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://")
}

// HasEmbeddedCredentials reports whether a postgres connection string
// carries a password inline. Those are rejected; credentials belong in the
// environment, .pgpass, or the OS keyring.
func HasEmbeddedCredentials(connStr string) bool {
	u, err := url.Parse(connStr)
	if err != nil {
		// Unparseable strings are treated as unsafe.
		return true
	}
	if u.User == nil {
		return false
	}
	_, hasPassword := u.User.Password()
	return hasPassword
}

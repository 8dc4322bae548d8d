package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/shiftlog/internal/constants"
	"github.com/julianstephens/shiftlog/internal/logger"
	"github.com/julianstephens/shiftlog/internal/models"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// PostgresStore mirrors the SQLite store over a lib/pq connection. The
// schema is identical apart from placeholder syntax and boolean columns.
type PostgresStore struct {
	connStr string
	db      *sql.DB
}

func NewPostgresStore(connStr string) *PostgresStore {
	return &PostgresStore{
		connStr: connStr,
	}
}

// ValidateConnString checks that a connection string parses and carries no
// inline password.
func ValidateConnString(connStr string) (bool, error) {
	if connStr == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	if HasEmbeddedCredentials(connStr) {
		return false, ErrEmbeddedCredentials
	}
	return true, nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS app_state (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS work_records (
    id TEXT PRIMARY KEY,
    day TEXT NOT NULL,
    session_id BIGINT NOT NULL,
    real_start_time BIGINT NOT NULL,
    start_time BIGINT NOT NULL,
    end_time BIGINT NOT NULL,
    raw_hours INTEGER NOT NULL DEFAULT 0,
    raw_minutes INTEGER NOT NULL DEFAULT 0,
    break_minutes INTEGER NOT NULL DEFAULT 0,
    excluded_break_time BOOLEAN NOT NULL DEFAULT FALSE,
    work_minutes INTEGER NOT NULL DEFAULT 0,
    overtime_minutes INTEGER NOT NULL DEFAULT 0,
    auto_completed BOOLEAN NOT NULL DEFAULT FALSE,
    edited_manually BOOLEAN NOT NULL DEFAULT FALSE,
    has_raw_time BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_work_records_day ON work_records(day);
`

func (s *PostgresStore) Init() error {
	if _, err := ValidateConnString(s.connStr); err != nil {
		return err
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := s.db.Exec(postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := s.GetSettings(); err != nil {
		if err := s.SaveSettings(DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *PostgresStore) Load() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) GetSettings() (models.Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	settings := models.Settings{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		switch key {
		case constants.SettingStandardWorkHours:
			if _, err := fmt.Sscanf(value, "%d", &settings.StandardWorkHours); err != nil {
				return models.Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
		case constants.SettingStartHour:
			if _, err := fmt.Sscanf(value, "%d", &settings.StartHour); err != nil {
				return models.Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
		case constants.SettingStartMinute:
			if _, err := fmt.Sscanf(value, "%d", &settings.StartMinute); err != nil {
				return models.Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
		case constants.SettingEndHour:
			if _, err := fmt.Sscanf(value, "%d", &settings.EndHour); err != nil {
				return models.Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
		case constants.SettingEndMinute:
			if _, err := fmt.Sscanf(value, "%d", &settings.EndMinute); err != nil {
				return models.Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
		case constants.SettingExcludeBreakTime:
			settings.ExcludeBreakTime = value == "true"
		case constants.SettingTimezone:
			settings.Timezone = value
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}

	if count == 0 {
		return models.Settings{}, fmt.Errorf("settings not found")
	}

	return settings, nil
}

func (s *PostgresStore) SaveSettings(settings models.Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	pairs := []struct {
		key   string
		value string
	}{
		{constants.SettingStandardWorkHours, strconv.Itoa(settings.StandardWorkHours)},
		{constants.SettingStartHour, strconv.Itoa(settings.StartHour)},
		{constants.SettingStartMinute, strconv.Itoa(settings.StartMinute)},
		{constants.SettingEndHour, strconv.Itoa(settings.EndHour)},
		{constants.SettingEndMinute, strconv.Itoa(settings.EndMinute)},
		{constants.SettingExcludeBreakTime, strconv.FormatBool(settings.ExcludeBreakTime)},
		{constants.SettingTimezone, settings.Timezone},
	}
	for _, p := range pairs {
		if _, err := stmt.Exec(p.key, p.value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) getState(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM app_state WHERE key = $1", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *PostgresStore) setState(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(`INSERT INTO app_state (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

func (s *PostgresStore) stateTime(key string) (*time.Time, error) {
	value, ok, err := s.getState(key)
	if err != nil {
		return nil, err
	}
	if !ok || value == "" {
		return nil, nil
	}
	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logger.Error("Corrupt stored timestamp, ignoring", "key", key, "value", value)
		return nil, nil
	}
	t := time.UnixMilli(millis)
	return &t, nil
}

func (s *PostgresStore) GetSession() (models.WorkSession, error) {
	session := models.WorkSession{Status: constants.StatusIdle}

	if value, ok, err := s.getState(stateWorkStatus); err != nil {
		return session, err
	} else if ok {
		status, convErr := strconv.Atoi(value)
		if convErr != nil || status < int(constants.StatusIdle) || status > int(constants.StatusCompleted) {
			logger.Error("Corrupt stored work status, falling back to idle", "value", value)
		} else {
			session.Status = constants.WorkStatus(status)
		}
	}

	var err error
	if session.RealStartTime, err = s.stateTime(stateRealStart); err != nil {
		return session, err
	}
	if session.ComputedStartTime, err = s.stateTime(stateComputedStart); err != nil {
		return session, err
	}
	if session.EndTime, err = s.stateTime(stateEndTime); err != nil {
		return session, err
	}

	return session, nil
}

func (s *PostgresStore) SaveSession(session models.WorkSession) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.setState(tx, stateWorkStatus, strconv.Itoa(int(session.Status))); err != nil {
		return err
	}
	times := []struct {
		key string
		t   *time.Time
	}{
		{stateRealStart, session.RealStartTime},
		{stateComputedStart, session.ComputedStartTime},
		{stateEndTime, session.EndTime},
	}
	for _, st := range times {
		value := ""
		if st.t != nil {
			value = strconv.FormatInt(st.t.UnixMilli(), 10)
		}
		if err := s.setState(tx, st.key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) ClearSession() error {
	return s.SaveSession(models.WorkSession{Status: constants.StatusIdle})
}

func (s *PostgresStore) GetDayRecords(date string) ([]models.WorkRecord, error) {
	rows, err := s.db.Query(
		"SELECT "+recordColumns+" FROM work_records WHERE day = $1 ORDER BY start_time DESC", date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []models.WorkRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *PostgresStore) SaveDayRecords(date string, records []models.WorkRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM work_records WHERE day = $1", date); err != nil {
		return err
	}

	if len(records) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO work_records (day, ` + recordColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.Exec(date,
				rec.ID, rec.SessionID, rec.RealStartTime, rec.StartTime, rec.EndTime,
				rec.RawHours, rec.RawMinutes, rec.BreakMinutes, rec.ExcludedBreakTime,
				rec.WorkMinutes, rec.OvertimeMinutes, rec.AutoCompleted, rec.EditedManually,
				rec.HasRawTime,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) GetAllRecords() (models.DayRecordSet, error) {
	return s.queryRecordSet(
		"SELECT day, " + recordColumns + " FROM work_records ORDER BY day, start_time DESC")
}

func (s *PostgresStore) GetRecordsInRange(start, end string) (models.DayRecordSet, error) {
	return s.queryRecordSet(
		"SELECT day, "+recordColumns+" FROM work_records WHERE day BETWEEN $1 AND $2 ORDER BY day, start_time DESC",
		start, end)
}

func (s *PostgresStore) queryRecordSet(query string, args ...interface{}) (models.DayRecordSet, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(models.DayRecordSet)
	for rows.Next() {
		var day string
		var rec models.WorkRecord
		if err := rows.Scan(
			&day,
			&rec.ID, &rec.SessionID, &rec.RealStartTime, &rec.StartTime, &rec.EndTime,
			&rec.RawHours, &rec.RawMinutes, &rec.BreakMinutes, &rec.ExcludedBreakTime,
			&rec.WorkMinutes, &rec.OvertimeMinutes, &rec.AutoCompleted, &rec.EditedManually,
			&rec.HasRawTime,
		); err != nil {
			return nil, err
		}
		out[day] = append(out[day], rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetLastVisit() (time.Time, error) {
	t, err := s.stateTime(stateLastVisit)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, nil
	}
	return *t, nil
}

func (s *PostgresStore) SetLastVisit(t time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.setState(tx, stateLastVisit, strconv.FormatInt(t.UnixMilli(), 10)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) GetConfigPath() string {
	return s.connStr
}

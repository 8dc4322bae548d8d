package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/shiftlog/internal/constants"
	"github.com/julianstephens/shiftlog/internal/logger"
	"github.com/julianstephens/shiftlog/internal/models"
	"github.com/julianstephens/shiftlog/internal/storage/migrations"
)

// app_state keys, mirroring the per-field session persistence the engine
// expects.
const (
	stateWorkStatus    = "work_status"
	stateRealStart     = "real_start_time"
	stateComputedStart = "computed_start_time"
	stateEndTime       = "end_time"
	stateLastVisit     = "last_visit"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := migrations.Run(s.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize default settings if not present
	if _, err := s.GetSettings(); err != nil {
		if err := s.SaveSettings(DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'shiftlog init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	// Apply any migrations added since the database was initialized.
	if err := migrations.Run(s.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// PendingMigrations reports how many migration files have not been applied.
func (s *SQLiteStore) PendingMigrations() (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("storage not loaded")
	}
	return migrations.PendingCount(s.db)
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) GetSettings() (models.Settings, error) {
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

func (s *SQLiteStore) SaveSettings(settings models.Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
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

func (s *SQLiteStore) getState(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM app_state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) setState(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec("INSERT OR REPLACE INTO app_state (key, value) VALUES (?, ?)", key, value)
	return err
}

// stateTime reads an epoch-millis state value. Corrupt values are logged
// and treated as absent rather than failing the caller.
func (s *SQLiteStore) stateTime(key string) (*time.Time, error) {
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

func (s *SQLiteStore) GetSession() (models.WorkSession, error) {
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

func (s *SQLiteStore) SaveSession(session models.WorkSession) error {
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

func (s *SQLiteStore) ClearSession() error {
	return s.SaveSession(models.WorkSession{Status: constants.StatusIdle})
}

const recordColumns = `id, session_id, real_start_time, start_time, end_time,
	raw_hours, raw_minutes, break_minutes, excluded_break_time,
	work_minutes, overtime_minutes, auto_completed, edited_manually, has_raw_time`

func scanRecord(rows *sql.Rows) (models.WorkRecord, error) {
	var rec models.WorkRecord
	err := rows.Scan(
		&rec.ID, &rec.SessionID, &rec.RealStartTime, &rec.StartTime, &rec.EndTime,
		&rec.RawHours, &rec.RawMinutes, &rec.BreakMinutes, &rec.ExcludedBreakTime,
		&rec.WorkMinutes, &rec.OvertimeMinutes, &rec.AutoCompleted, &rec.EditedManually,
		&rec.HasRawTime,
	)
	return rec, err
}

func (s *SQLiteStore) GetDayRecords(date string) ([]models.WorkRecord, error) {
	rows, err := s.db.Query(
		"SELECT "+recordColumns+" FROM work_records WHERE day = ? ORDER BY start_time DESC", date)
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

func (s *SQLiteStore) SaveDayRecords(date string, records []models.WorkRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM work_records WHERE day = ?", date); err != nil {
		return err
	}

	if len(records) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO work_records (day, ` + recordColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
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

func (s *SQLiteStore) GetAllRecords() (models.DayRecordSet, error) {
	return s.queryRecordSet(
		"SELECT day, " + recordColumns + " FROM work_records ORDER BY day, start_time DESC")
}

func (s *SQLiteStore) GetRecordsInRange(start, end string) (models.DayRecordSet, error) {
	return s.queryRecordSet(
		"SELECT day, "+recordColumns+" FROM work_records WHERE day BETWEEN ? AND ? ORDER BY day, start_time DESC",
		start, end)
}

func (s *SQLiteStore) queryRecordSet(query string, args ...interface{}) (models.DayRecordSet, error) {
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

func (s *SQLiteStore) GetLastVisit() (time.Time, error) {
	t, err := s.stateTime(stateLastVisit)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, nil
	}
	return *t, nil
}

func (s *SQLiteStore) SetLastVisit(t time.Time) error {
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

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

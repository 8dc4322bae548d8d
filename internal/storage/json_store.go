package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/shiftlog/internal/logger"
	"github.com/julianstephens/shiftlog/internal/models"
)

// document is the single JSON document the store persists. Day record
// values stay raw until normalized so legacy single-record days and records
// written before raw-time storage still load.
type document struct {
	Version   int                        `json:"version"`
	Settings  models.Settings            `json:"settings"`
	Session   models.WorkSession         `json:"session"`
	Records   map[string]json.RawMessage `json:"records"`
	LastVisit int64                      `json:"last_visit,omitempty"` // epoch millis
}

type JSONStore struct {
	path    string
	doc     *document
	records models.DayRecordSet
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.doc = &document{
		Version:  1,
		Settings: DefaultSettings(),
		Records:  make(map[string]json.RawMessage),
	}
	s.records = make(models.DayRecordSet)

	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'shiftlog init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.doc = &document{}
	if err := json.Unmarshal(data, s.doc); err != nil {
		// Availability over strictness: an unreadable document is logged
		// and replaced with defaults rather than blocking every command.
		logger.Error("Stored document unreadable, continuing with defaults", "error", err)
		s.doc = &document{Version: 1, Settings: DefaultSettings()}
	}

	if s.doc.Records == nil {
		s.doc.Records = make(map[string]json.RawMessage)
	}
	if s.doc.Settings == (models.Settings{}) {
		s.doc.Settings = DefaultSettings()
	}

	s.records = make(models.DayRecordSet, len(s.doc.Records))
	for date, raw := range s.doc.Records {
		recs, err := normalizeDayValue(raw)
		if err != nil {
			logger.Error("Skipping unreadable day records", "date", date, "error", err)
			continue
		}
		if len(recs) > 0 {
			s.records[date] = recs
		}
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	s.doc.Records = make(map[string]json.RawMessage, len(s.records))
	for date, recs := range s.records {
		raw, err := json.Marshal(recs)
		if err != nil {
			return fmt.Errorf("failed to serialize records for %s: %w", date, err)
		}
		s.doc.Records[date] = raw
	}

	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	if s.doc == nil {
		return models.Settings{}, fmt.Errorf("storage not loaded")
	}
	return s.doc.Settings, nil
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.doc.Settings = settings
	return s.save()
}

func (s *JSONStore) GetSession() (models.WorkSession, error) {
	if s.doc == nil {
		return models.WorkSession{}, fmt.Errorf("storage not loaded")
	}
	return s.doc.Session, nil
}

func (s *JSONStore) SaveSession(session models.WorkSession) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.doc.Session = session
	return s.save()
}

func (s *JSONStore) ClearSession() error {
	return s.SaveSession(models.WorkSession{})
}

func (s *JSONStore) GetDayRecords(date string) ([]models.WorkRecord, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	recs := s.records[date]
	out := make([]models.WorkRecord, len(recs))
	copy(out, recs)
	return out, nil
}

func (s *JSONStore) SaveDayRecords(date string, records []models.WorkRecord) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	if len(records) == 0 {
		delete(s.records, date)
	} else {
		stored := make([]models.WorkRecord, len(records))
		copy(stored, records)
		s.records[date] = stored
	}
	return s.save()
}

func (s *JSONStore) GetAllRecords() (models.DayRecordSet, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	out := make(models.DayRecordSet, len(s.records))
	for date, recs := range s.records {
		cp := make([]models.WorkRecord, len(recs))
		copy(cp, recs)
		out[date] = cp
	}
	return out, nil
}

func (s *JSONStore) GetRecordsInRange(start, end string) (models.DayRecordSet, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	out := make(models.DayRecordSet)
	for date, recs := range s.records {
		if date >= start && date <= end {
			cp := make([]models.WorkRecord, len(recs))
			copy(cp, recs)
			out[date] = cp
		}
	}
	return out, nil
}

func (s *JSONStore) GetLastVisit() (time.Time, error) {
	if s.doc == nil {
		return time.Time{}, fmt.Errorf("storage not loaded")
	}
	if s.doc.LastVisit == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(s.doc.LastVisit), nil
}

func (s *JSONStore) SetLastVisit(t time.Time) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.doc.LastVisit = t.UnixMilli()
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// storedRecord is the permissive on-disk record shape. Raw-time fields are
// pointers so their absence (legacy data) is distinguishable from zero.
type storedRecord struct {
	ID             string `json:"id"`
	SessionID      int64  `json:"session_id"`
	RealStartTime  int64  `json:"real_start_time"`
	StartTime      int64  `json:"start_time"`
	EndTime        int64  `json:"end_time"`
	RawHours       *int   `json:"raw_hours"`
	RawMinutes     *int   `json:"raw_minutes"`
	BreakMinutes   *int   `json:"break_minutes"`
	ExcludedBreak  bool   `json:"excluded_break_time"`
	WorkMinutes    int    `json:"work_minutes"`
	Overtime       int    `json:"overtime_minutes"`
	AutoCompleted  bool   `json:"auto_completed"`
	EditedManually bool   `json:"edited_manually"`
}

// normalizeDayValue coerces a stored day value into the current record-list
// shape. Days written as a bare object become one-element lists; records
// without raw-time fields are marked so they are never recomputed.
func normalizeDayValue(raw json.RawMessage) ([]models.WorkRecord, error) {
	var stored []storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		var single storedRecord
		if err2 := json.Unmarshal(raw, &single); err2 != nil {
			return nil, err
		}
		stored = []storedRecord{single}
	}

	recs := make([]models.WorkRecord, 0, len(stored))
	for _, sr := range stored {
		rec := models.WorkRecord{
			ID:                sr.ID,
			SessionID:         sr.SessionID,
			RealStartTime:     sr.RealStartTime,
			StartTime:         sr.StartTime,
			EndTime:           sr.EndTime,
			ExcludedBreakTime: sr.ExcludedBreak,
			WorkMinutes:       sr.WorkMinutes,
			OvertimeMinutes:   sr.Overtime,
			AutoCompleted:     sr.AutoCompleted,
			EditedManually:    sr.EditedManually,
		}
		if sr.RawHours != nil && sr.RawMinutes != nil && sr.BreakMinutes != nil {
			rec.RawHours = *sr.RawHours
			rec.RawMinutes = *sr.RawMinutes
			rec.BreakMinutes = *sr.BreakMinutes
			rec.HasRawTime = true
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].StartTime > recs[j].StartTime
	})

	return recs, nil
}

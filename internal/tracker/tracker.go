package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/shiftlog/internal/constants"
	"github.com/julianstephens/shiftlog/internal/logger"
	"github.com/julianstephens/shiftlog/internal/models"
	"github.com/julianstephens/shiftlog/internal/records"
	"github.com/julianstephens/shiftlog/internal/storage"
	"github.com/julianstephens/shiftlog/internal/timecalc"
	"github.com/julianstephens/shiftlog/internal/utils"
)

var (
	ErrAlreadyWorking = errors.New("a session is already in progress")
	ErrNoOpenSession  = errors.New("no session is in progress")
)

// Clock supplies the current instant. Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// Tracker drives the clock-in/clock-out state machine against a storage
// provider. It owns session transitions and folding completed sessions into
// the day's record history.
type Tracker struct {
	store storage.Provider
	clock Clock
}

func New(store storage.Provider, clock Clock) *Tracker {
	if clock == nil {
		clock = SystemClock()
	}
	return &Tracker{store: store, clock: clock}
}

// loadSession reads the stored session, resetting a working session that
// has no start time back to idle. Per-field corruption fallbacks in the
// stores can produce that combination, and nothing can be computed from it.
func (t *Tracker) loadSession() (models.WorkSession, error) {
	session, err := t.store.GetSession()
	if err != nil {
		return session, err
	}
	if session.Status == constants.StatusWorking && session.ComputedStartTime == nil {
		logger.Warn("working session has no start time, resetting to idle")
		if err := t.store.ClearSession(); err != nil {
			return session, fmt.Errorf("clearing session: %w", err)
		}
		return models.WorkSession{Status: constants.StatusIdle}, nil
	}
	return session, nil
}

// now returns the current instant in the configured timezone. An
// unparseable timezone falls back to the clock's own location.
func (t *Tracker) now(settings models.Settings) time.Time {
	instant := t.clock.Now()
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, using local time", "timezone", settings.Timezone, "err", err)
		return instant
	}
	return instant.In(loc)
}

// ClockIn starts a work session. The effective start never precedes the
// configured standard start: arriving early counts from the standard start,
// arriving late counts from the actual arrival. A leftover completed
// session is folded into history first; a dangling working session from a
// previous day is closed before the new one begins.
func (t *Tracker) ClockIn() (models.WorkSession, error) {
	settings, err := t.store.GetSettings()
	if err != nil {
		return models.WorkSession{}, fmt.Errorf("loading settings: %w", err)
	}
	now := t.now(settings)

	session, err := t.loadSession()
	if err != nil {
		return models.WorkSession{}, fmt.Errorf("loading session: %w", err)
	}

	switch session.Status {
	case constants.StatusWorking:
		if session.ComputedStartTime != nil && utils.SameDay(*session.ComputedStartTime, now) {
			return session, ErrAlreadyWorking
		}
		// Stale open session from an earlier day that the rollover check
		// never saw. Close it at its day's standard end so the new day
		// starts clean.
		if err := t.closeDangling(session, settings); err != nil {
			return models.WorkSession{}, err
		}
	case constants.StatusCompleted:
		// A completed session that was never folded, e.g. a crash between
		// saving the session and writing the record.
		if _, err := t.fold(session, settings, now); err != nil && !errors.Is(err, records.ErrDuplicateRecord) {
			return models.WorkSession{}, err
		}
	}

	computed := now
	if standard := utils.StandardStartOn(now, settings); now.Before(standard) {
		computed = standard
	}

	real := now
	session = models.WorkSession{
		Status:            constants.StatusWorking,
		RealStartTime:     &real,
		ComputedStartTime: &computed,
	}
	if err := t.store.SaveSession(session); err != nil {
		return models.WorkSession{}, fmt.Errorf("saving session: %w", err)
	}
	if err := t.store.SetLastVisit(now); err != nil {
		logger.Warn("recording last visit failed", "err", err)
	}

	logger.Info("clocked in", "real", real, "computed", computed)
	return session, nil
}

// ClockOut ends the open session and writes the resulting record into the
// day's history. The write is verified by reading the day back; a missing
// record is written once more before giving up.
func (t *Tracker) ClockOut() (models.WorkRecord, error) {
	settings, err := t.store.GetSettings()
	if err != nil {
		return models.WorkRecord{}, fmt.Errorf("loading settings: %w", err)
	}
	now := t.now(settings)

	session, err := t.loadSession()
	if err != nil {
		return models.WorkRecord{}, fmt.Errorf("loading session: %w", err)
	}
	if session.Status != constants.StatusWorking || session.ComputedStartTime == nil {
		return models.WorkRecord{}, ErrNoOpenSession
	}

	end := now
	session.Status = constants.StatusCompleted
	session.EndTime = &end

	rec, err := t.fold(session, settings, now)
	if err != nil && !errors.Is(err, records.ErrDuplicateRecord) {
		return models.WorkRecord{}, err
	}

	if err := t.store.SetLastVisit(now); err != nil {
		logger.Warn("recording last visit failed", "err", err)
	}

	logger.Info("clocked out", "end", end, "workMinutes", rec.WorkMinutes)
	return rec, nil
}

// Status returns the stored session after the day-rollover check has run,
// together with the current settings.
func (t *Tracker) Status() (models.WorkSession, models.Settings, error) {
	settings, err := t.store.GetSettings()
	if err != nil {
		return models.WorkSession{}, models.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	if err := t.CheckDayRollover(); err != nil {
		return models.WorkSession{}, settings, err
	}
	session, err := t.loadSession()
	if err != nil {
		return models.WorkSession{}, settings, fmt.Errorf("loading session: %w", err)
	}
	return session, settings, nil
}

// CheckDayRollover closes a working session left open across a day
// boundary. The session ends at the last recorded visit when that visit
// still falls on the session's day, otherwise at the day's standard end,
// and the record is marked auto-completed. The last-visit timestamp is
// refreshed on every call.
func (t *Tracker) CheckDayRollover() error {
	settings, err := t.store.GetSettings()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	now := t.now(settings)

	session, err := t.loadSession()
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	if session.Status == constants.StatusWorking && session.ComputedStartTime != nil &&
		!utils.SameDay(*session.ComputedStartTime, now) {
		if err := t.closeDangling(session, settings); err != nil {
			return err
		}
	}

	if err := t.store.SetLastVisit(now); err != nil {
		logger.Warn("recording last visit failed", "err", err)
	}
	return nil
}

// closeDangling finishes a working session from a previous day and folds it
// into that day's history.
func (t *Tracker) closeDangling(session models.WorkSession, settings models.Settings) error {
	start := *session.ComputedStartTime
	end := utils.StandardEndOn(start, settings)

	lastVisit, err := t.store.GetLastVisit()
	if err != nil {
		logger.Warn("reading last visit failed", "err", err)
	} else if !lastVisit.IsZero() && lastVisit.After(start) && utils.SameDay(lastVisit, start) {
		end = lastVisit
	}
	// An evening session can start after the standard end; never persist an
	// inverted interval.
	if end.Before(start) {
		end = start
	}

	session.Status = constants.StatusCompleted
	session.EndTime = &end

	rec, err := records.NewFromSession(session, settings, end)
	if err != nil {
		return fmt.Errorf("closing stale session: %w", err)
	}
	rec.AutoCompleted = true

	if err := t.saveRecord(rec, start); err != nil && !errors.Is(err, records.ErrDuplicateRecord) {
		return err
	}
	if err := t.store.ClearSession(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	logger.Info("auto-completed stale session", "day", utils.FormatDate(start), "end", end)
	return nil
}

// fold turns a completed session into a record, writes it into the day
// containing its computed start, and clears the session. A duplicate write
// still clears the session and returns the freshly computed record along
// with ErrDuplicateRecord.
func (t *Tracker) fold(session models.WorkSession, settings models.Settings, savedAt time.Time) (models.WorkRecord, error) {
	rec, err := records.NewFromSession(session, settings, savedAt)
	if err != nil {
		return models.WorkRecord{}, err
	}

	saveErr := t.saveRecord(rec, *session.ComputedStartTime)
	if saveErr != nil && !errors.Is(saveErr, records.ErrDuplicateRecord) {
		return models.WorkRecord{}, saveErr
	}

	if err := t.store.ClearSession(); err != nil {
		return rec, fmt.Errorf("clearing session: %w", err)
	}
	return rec, saveErr
}

// saveRecord merges a record into its day's list and verifies the write
// landed, retrying once when the read-back misses it.
func (t *Tracker) saveRecord(rec models.WorkRecord, day time.Time) error {
	date := utils.FormatDate(day)

	existing, err := t.store.GetDayRecords(date)
	if err != nil {
		return fmt.Errorf("loading records for %s: %w", date, err)
	}

	merged, err := records.Merge(existing, rec)
	if err != nil {
		return err
	}
	if err := t.store.SaveDayRecords(date, merged); err != nil {
		return fmt.Errorf("saving records for %s: %w", date, err)
	}

	saved, err := t.store.GetDayRecords(date)
	if err != nil {
		return fmt.Errorf("verifying records for %s: %w", date, err)
	}
	if containsRecord(saved, rec) {
		return nil
	}

	logger.Warn("record missing after save, retrying", "day", date, "id", rec.ID)
	if err := t.store.SaveDayRecords(date, merged); err != nil {
		return fmt.Errorf("saving records for %s: %w", date, err)
	}
	saved, err = t.store.GetDayRecords(date)
	if err != nil {
		return fmt.Errorf("verifying records for %s: %w", date, err)
	}
	if !containsRecord(saved, rec) {
		return fmt.Errorf("record for %s did not persist", date)
	}
	return nil
}

// TodayTotals returns the worked and overtime minutes for the current day.
// Saved records are recomputed under the current break policy, a running
// session contributes its elapsed time, and overtime is derived once from
// the day total rather than summed per record.
func (t *Tracker) TodayTotals() (work, overtime int, err error) {
	settings, err := t.store.GetSettings()
	if err != nil {
		return 0, 0, fmt.Errorf("loading settings: %w", err)
	}
	now := t.now(settings)

	recs, err := t.store.GetDayRecords(utils.FormatDate(now))
	if err != nil {
		return 0, 0, fmt.Errorf("loading records: %w", err)
	}
	recs = records.RecomputeUnderSettings(recs, settings)
	for _, rec := range recs {
		work += rec.WorkMinutes
	}

	session, err := t.loadSession()
	if err != nil {
		return 0, 0, fmt.Errorf("loading session: %w", err)
	}
	if live, ok := liveMinutes(session, recs, settings, now); ok {
		work += live
	}

	overtime = timecalc.OvertimeMinutes(work, timecalc.ExpectedWorkMinutes(settings))
	return work, overtime, nil
}

// LiveRecord synthesizes an unsaved record for the open session as of now,
// for views that fold running time into a period. The boolean is false when
// no session is open, the session started on another day, or its interval
// already exists among today's saved records.
func (t *Tracker) LiveRecord() (models.WorkRecord, bool, error) {
	settings, err := t.store.GetSettings()
	if err != nil {
		return models.WorkRecord{}, false, fmt.Errorf("loading settings: %w", err)
	}
	now := t.now(settings)

	session, err := t.loadSession()
	if err != nil {
		return models.WorkRecord{}, false, fmt.Errorf("loading session: %w", err)
	}
	saved, err := t.store.GetDayRecords(utils.FormatDate(now))
	if err != nil {
		return models.WorkRecord{}, false, fmt.Errorf("loading records: %w", err)
	}
	if _, ok := liveMinutes(session, saved, settings, now); !ok {
		return models.WorkRecord{}, false, nil
	}

	end := now
	session.EndTime = &end
	rec, err := records.NewFromSession(session, settings, now)
	if err != nil {
		return models.WorkRecord{}, false, err
	}
	return rec, true, nil
}

// liveMinutes returns the running session's contribution to today's worked
// time. A session whose interval already appears among the saved records is
// skipped so a half-finished clock-out cannot count twice.
func liveMinutes(session models.WorkSession, saved []models.WorkRecord, settings models.Settings, now time.Time) (int, bool) {
	if session.Status != constants.StatusWorking || session.ComputedStartTime == nil {
		return 0, false
	}
	start := *session.ComputedStartTime
	if !utils.SameDay(start, now) || now.Before(start) {
		return 0, false
	}

	tolerance := constants.DuplicateRecordTolerance.Milliseconds()
	startMillis := start.UnixMilli()
	for _, rec := range saved {
		diff := rec.StartTime - startMillis
		if diff < 0 {
			diff = -diff
		}
		if diff < tolerance {
			return 0, false
		}
	}

	raw := int(now.Sub(start) / time.Minute)
	return timecalc.ActualWorkMinutes(raw, settings), true
}

func containsRecord(recs []models.WorkRecord, rec models.WorkRecord) bool {
	for _, existing := range recs {
		if existing.ID == rec.ID {
			return true
		}
		if existing.SessionID == rec.SessionID && existing.StartTime == rec.StartTime {
			return true
		}
	}
	return false
}

package tracker

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/shiftlog/internal/constants"
	"github.com/julianstephens/shiftlog/internal/models"
	"github.com/julianstephens/shiftlog/internal/storage"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTracker(t *testing.T, start time.Time) (*Tracker, storage.Provider, *fixedClock) {
	t.Helper()

	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "shiftlog.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clock := &fixedClock{now: start}
	return New(store, clock), store, clock
}

func TestClockInLate(t *testing.T) {
	arrival := time.Date(2023, 9, 15, 10, 30, 0, 0, time.UTC)
	tr, _, _ := newTestTracker(t, arrival)

	session, err := tr.ClockIn()
	if err != nil {
		t.Fatalf("ClockIn() error = %v", err)
	}
	if session.Status != constants.StatusWorking {
		t.Errorf("status = %v, want Working", session.Status)
	}
	if !session.ComputedStartTime.Equal(arrival) {
		t.Errorf("computed start = %v, want arrival %v", session.ComputedStartTime, arrival)
	}
	if !session.RealStartTime.Equal(arrival) {
		t.Errorf("real start = %v, want arrival %v", session.RealStartTime, arrival)
	}
}

func TestClockInEarly(t *testing.T) {
	arrival := time.Date(2023, 9, 15, 8, 15, 0, 0, time.UTC)
	tr, _, _ := newTestTracker(t, arrival)

	session, err := tr.ClockIn()
	if err != nil {
		t.Fatalf("ClockIn() error = %v", err)
	}

	// Default standard start is 09:00.
	wantComputed := time.Date(2023, 9, 15, 9, 0, 0, 0, time.UTC)
	if !session.ComputedStartTime.Equal(wantComputed) {
		t.Errorf("computed start = %v, want standard start %v", session.ComputedStartTime, wantComputed)
	}
	if !session.RealStartTime.Equal(arrival) {
		t.Errorf("real start = %v, want arrival %v", session.RealStartTime, arrival)
	}
}

func TestClockInTwiceSameDay(t *testing.T) {
	arrival := time.Date(2023, 9, 15, 9, 0, 0, 0, time.UTC)
	tr, _, clock := newTestTracker(t, arrival)

	if _, err := tr.ClockIn(); err != nil {
		t.Fatalf("ClockIn() error = %v", err)
	}

	clock.advance(time.Hour)
	if _, err := tr.ClockIn(); !errors.Is(err, ErrAlreadyWorking) {
		t.Errorf("second ClockIn() error = %v, want ErrAlreadyWorking", err)
	}
}

func TestClockOutWritesRecord(t *testing.T) {
	arrival := time.Date(2023, 9, 15, 9, 0, 0, 0, time.UTC)
	tr, store, clock := newTestTracker(t, arrival)

	if _, err := tr.ClockIn(); err != nil {
		t.Fatalf("ClockIn() error = %v", err)
	}
	clock.advance(9 * time.Hour)

	rec, err := tr.ClockOut()
	if err != nil {
		t.Fatalf("ClockOut() error = %v", err)
	}
	// Nine raw hours minus the default one-hour break.
	if rec.WorkMinutes != 480 {
		t.Errorf("work minutes = %d, want 480", rec.WorkMinutes)
	}
	if rec.OvertimeMinutes != 0 {
		t.Errorf("overtime minutes = %d, want 0", rec.OvertimeMinutes)
	}

	saved, err := store.GetDayRecords("2023-09-15")
	if err != nil {
		t.Fatalf("GetDayRecords() error = %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("len(saved) = %d, want 1", len(saved))
	}

	session, err := store.GetSession()
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.Status != constants.StatusIdle {
		t.Errorf("session status after clock-out = %v, want Idle", session.Status)
	}
}

func TestClockOutWithoutSession(t *testing.T) {
	tr, _, _ := newTestTracker(t, time.Date(2023, 9, 15, 9, 0, 0, 0, time.UTC))

	if _, err := tr.ClockOut(); !errors.Is(err, ErrNoOpenSession) {
		t.Errorf("ClockOut() error = %v, want ErrNoOpenSession", err)
	}
}

func TestMultipleSessionsSameDay(t *testing.T) {
	arrival := time.Date(2023, 9, 15, 9, 0, 0, 0, time.UTC)
	tr, store, clock := newTestTracker(t, arrival)

	if _, err := tr.ClockIn(); err != nil {
		t.Fatalf("ClockIn() error = %v", err)
	}
	clock.advance(4 * time.Hour)
	if _, err := tr.ClockOut(); err != nil {
		t.Fatalf("ClockOut() error = %v", err)
	}

	clock.advance(time.Hour)
	if _, err := tr.ClockIn(); err != nil {
		t.Fatalf("second ClockIn() error = %v", err)
	}
	clock.advance(3 * time.Hour)
	if _, err := tr.ClockOut(); err != nil {
		t.Fatalf("second ClockOut() error = %v", err)
	}

	saved, err := store.GetDayRecords("2023-09-15")
	if err != nil {
		t.Fatalf("GetDayRecords() error = %v", err)
	}
	if len(saved) != 2 {
		t.Errorf("len(saved) = %d, want 2", len(saved))
	}
}

func TestDayRolloverClosesAtLastVisit(t *testing.T) {
	arrival := time.Date(2023, 9, 15, 9, 0, 0, 0, time.UTC)
	tr, store, clock := newTestTracker(t, arrival)

	if _, err := tr.ClockIn(); err != nil {
		t.Fatalf("ClockIn() error = %v", err)
	}

	// Seen again at 17:30, then the machine sleeps over the weekend.
	lastSeen := time.Date(2023, 9, 15, 17, 30, 0, 0, time.UTC)
	clock.now = lastSeen
	if err := tr.CheckDayRollover(); err != nil {
		t.Fatalf("CheckDayRollover() error = %v", err)
	}

	clock.now = time.Date(2023, 9, 18, 8, 0, 0, 0, time.UTC)
	if err := tr.CheckDayRollover(); err != nil {
		t.Fatalf("CheckDayRollover() error = %v", err)
	}

	session, err := store.GetSession()
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.Status != constants.StatusIdle {
		t.Errorf("session status = %v, want Idle after rollover", session.Status)
	}

	saved, err := store.GetDayRecords("2023-09-15")
	if err != nil {
		t.Fatalf("GetDayRecords() error = %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("len(saved) = %d, want 1", len(saved))
	}
	rec := saved[0]
	if !rec.AutoCompleted {
		t.Error("rollover record not marked auto-completed")
	}
	if rec.EndTime != lastSeen.UnixMilli() {
		t.Errorf("end time = %d, want last visit %d", rec.EndTime, lastSeen.UnixMilli())
	}
}

func TestDayRolloverFallsBackToStandardEnd(t *testing.T) {
	arrival := time.Date(2023, 9, 15, 9, 0, 0, 0, time.UTC)
	tr, store, clock := newTestTracker(t, arrival)

	if _, err := tr.ClockIn(); err != nil {
		t.Fatalf("ClockIn() error = %v", err)
	}

	// Simulate legacy state without a recorded visit.
	if err := store.SetLastVisit(time.Time{}); err != nil {
		t.Fatalf("SetLastVisit() error = %v", err)
	}

	clock.now = time.Date(2023, 9, 16, 10, 0, 0, 0, time.UTC)
	if err := tr.CheckDayRollover(); err != nil {
		t.Fatalf("CheckDayRollover() error = %v", err)
	}

	saved, err := store.GetDayRecords("2023-09-15")
	if err != nil {
		t.Fatalf("GetDayRecords() error = %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("len(saved) = %d, want 1", len(saved))
	}

	wantEnd := time.Date(2023, 9, 15, 18, 0, 0, 0, time.UTC)
	if saved[0].EndTime != wantEnd.UnixMilli() {
		t.Errorf("end time = %d, want standard end %d", saved[0].EndTime, wantEnd.UnixMilli())
	}
}

func TestClockInResetsWorkingSessionWithoutStart(t *testing.T) {
	arrival := time.Date(2023, 9, 15, 10, 0, 0, 0, time.UTC)
	tr, store, _ := newTestTracker(t, arrival)

	// A per-field corruption fallback can leave the status readable while
	// the start timestamp is not.
	if err := store.SaveSession(models.WorkSession{Status: constants.StatusWorking}); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	session, err := tr.ClockIn()
	if err != nil {
		t.Fatalf("ClockIn() error = %v", err)
	}
	if session.Status != constants.StatusWorking {
		t.Errorf("status = %v, want Working", session.Status)
	}
	if session.ComputedStartTime == nil || !session.ComputedStartTime.Equal(arrival) {
		t.Errorf("computed start = %v, want arrival %v", session.ComputedStartTime, arrival)
	}

	// No phantom record from the discarded session.
	saved, err := store.GetDayRecords("2023-09-15")
	if err != nil {
		t.Fatalf("GetDayRecords() error = %v", err)
	}
	if len(saved) != 0 {
		t.Errorf("len(saved) = %d, want 0", len(saved))
	}
}

func TestStatusResetsWorkingSessionWithoutStart(t *testing.T) {
	tr, store, _ := newTestTracker(t, time.Date(2023, 9, 15, 10, 0, 0, 0, time.UTC))

	if err := store.SaveSession(models.WorkSession{Status: constants.StatusWorking}); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	session, _, err := tr.Status()
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if session.Status != constants.StatusIdle {
		t.Errorf("status = %v, want Idle", session.Status)
	}

	stored, err := store.GetSession()
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if stored.Status != constants.StatusIdle {
		t.Errorf("stored status = %v, want Idle", stored.Status)
	}
}

func TestDayRolloverEveningSessionKeepsIntervalOrdered(t *testing.T) {
	// Clock in after the standard end with no usable last visit; the
	// synthetic end must not precede the start.
	arrival := time.Date(2023, 9, 15, 19, 0, 0, 0, time.UTC)
	tr, store, clock := newTestTracker(t, arrival)

	if _, err := tr.ClockIn(); err != nil {
		t.Fatalf("ClockIn() error = %v", err)
	}
	if err := store.SetLastVisit(time.Time{}); err != nil {
		t.Fatalf("SetLastVisit() error = %v", err)
	}

	clock.now = time.Date(2023, 9, 16, 9, 0, 0, 0, time.UTC)
	if err := tr.CheckDayRollover(); err != nil {
		t.Fatalf("CheckDayRollover() error = %v", err)
	}

	saved, err := store.GetDayRecords("2023-09-15")
	if err != nil {
		t.Fatalf("GetDayRecords() error = %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("len(saved) = %d, want 1", len(saved))
	}
	if saved[0].EndTime < saved[0].StartTime {
		t.Errorf("end %d precedes start %d", saved[0].EndTime, saved[0].StartTime)
	}
	if saved[0].EndTime != arrival.UnixMilli() {
		t.Errorf("end = %d, want clamped to start %d", saved[0].EndTime, arrival.UnixMilli())
	}
}

func TestTodayTotalsIncludesLiveSession(t *testing.T) {
	arrival := time.Date(2023, 9, 15, 9, 0, 0, 0, time.UTC)
	tr, _, clock := newTestTracker(t, arrival)

	if _, err := tr.ClockIn(); err != nil {
		t.Fatalf("ClockIn() error = %v", err)
	}
	clock.advance(4 * time.Hour)
	if _, err := tr.ClockOut(); err != nil {
		t.Fatalf("ClockOut() error = %v", err)
	}

	clock.advance(time.Hour)
	if _, err := tr.ClockIn(); err != nil {
		t.Fatalf("second ClockIn() error = %v", err)
	}
	clock.advance(2 * time.Hour)

	work, overtime, err := tr.TodayTotals()
	if err != nil {
		t.Fatalf("TodayTotals() error = %v", err)
	}

	// Each block deducts the standard break on its own. Morning: 240 raw
	// minus 60. Live: 120 raw minus 60.
	if work != 240 {
		t.Errorf("work minutes = %d, want 240", work)
	}
	if overtime != 0 {
		t.Errorf("overtime minutes = %d, want 0", overtime)
	}
}

func TestLiveMinutesSkipsPersistedInterval(t *testing.T) {
	settings := models.Settings{StandardWorkHours: 8, StartHour: 9, EndHour: 18, ExcludeBreakTime: true}
	start := time.Date(2023, 9, 15, 9, 0, 0, 0, time.UTC)
	now := start.Add(5 * time.Hour)

	session := models.WorkSession{
		Status:            constants.StatusWorking,
		ComputedStartTime: &start,
	}
	saved := []models.WorkRecord{{
		StartTime:  start.UnixMilli(),
		EndTime:    now.UnixMilli(),
		HasRawTime: true,
	}}

	if _, ok := liveMinutes(session, saved, settings, now); ok {
		t.Error("live session counted despite a persisted record for the same interval")
	}
	if _, ok := liveMinutes(session, nil, settings, now); !ok {
		t.Error("live session not counted with no persisted records")
	}
}

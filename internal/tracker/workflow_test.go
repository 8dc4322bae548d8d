package tracker

import (
	"testing"
	"time"

	"github.com/julianstephens/shiftlog/internal/backup"
	"github.com/julianstephens/shiftlog/internal/records"
	"github.com/julianstephens/shiftlog/internal/stats"
)

// Drives a full working week through the tracker and checks that the
// aggregation, editing, and backup layers agree with what was tracked.
func TestFullWeekWorkflow(t *testing.T) {
	monday := time.Date(2023, 9, 11, 9, 0, 0, 0, time.UTC)
	tr, store, clock := newTestTracker(t, monday)

	// Monday through Thursday: standard nine-to-six days.
	for day := 0; day < 4; day++ {
		clock.now = monday.AddDate(0, 0, day)
		if _, err := tr.ClockIn(); err != nil {
			t.Fatalf("day %d ClockIn() error = %v", day, err)
		}
		clock.advance(9 * time.Hour)
		if _, err := tr.ClockOut(); err != nil {
			t.Fatalf("day %d ClockOut() error = %v", day, err)
		}
	}

	// Friday runs long: 09:00 to 20:00.
	clock.now = monday.AddDate(0, 0, 4)
	if _, err := tr.ClockIn(); err != nil {
		t.Fatalf("friday ClockIn() error = %v", err)
	}
	clock.advance(11 * time.Hour)
	fridayRec, err := tr.ClockOut()
	if err != nil {
		t.Fatalf("friday ClockOut() error = %v", err)
	}
	if fridayRec.WorkMinutes != 600 || fridayRec.OvertimeMinutes != 120 {
		t.Errorf("friday record = %d work / %d overtime, want 600/120",
			fridayRec.WorkMinutes, fridayRec.OvertimeMinutes)
	}

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}

	start, end, err := stats.Range(stats.PeriodWeek, 0, clock.now)
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	set, err := store.GetRecordsInRange(start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		t.Fatalf("GetRecordsInRange() error = %v", err)
	}
	summary := stats.Aggregate(set, settings)

	if summary.DaysWorked != 5 {
		t.Errorf("days worked = %d, want 5", summary.DaysWorked)
	}
	if summary.TotalWorkMinutes != 4*480+600 {
		t.Errorf("total work = %d, want %d", summary.TotalWorkMinutes, 4*480+600)
	}
	if summary.TotalOvertimeMinutes != 120 {
		t.Errorf("total overtime = %d, want 120", summary.TotalOvertimeMinutes)
	}

	// Forgot to clock out for lunch on Monday; shorten the day afterwards.
	mondayRecs, err := store.GetDayRecords("2023-09-11")
	if err != nil {
		t.Fatalf("GetDayRecords() error = %v", err)
	}
	oldStart := time.UnixMilli(mondayRecs[0].StartTime)
	oldEnd := time.UnixMilli(mondayRecs[0].EndTime)
	newEnd := oldEnd.Add(-time.Hour)
	edited, err := records.Edit(mondayRecs, oldStart, oldEnd, oldStart, newEnd, settings, clock.now)
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if err := store.SaveDayRecords("2023-09-11", edited); err != nil {
		t.Fatalf("SaveDayRecords() error = %v", err)
	}

	mondayRecs, err = store.GetDayRecords("2023-09-11")
	if err != nil {
		t.Fatalf("GetDayRecords() after edit error = %v", err)
	}
	if len(mondayRecs) != 1 {
		t.Fatalf("len(monday records) = %d, want 1", len(mondayRecs))
	}
	if mondayRecs[0].WorkMinutes != 420 {
		t.Errorf("edited monday work = %d, want 420", mondayRecs[0].WorkMinutes)
	}
	if !mondayRecs[0].EditedManually {
		t.Error("edited record not flagged as manually edited")
	}

	// A backup taken now must survive losing the live store.
	mgr := backup.NewManager(store.GetConfigPath())
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}

	clock.advance(time.Hour)
	if _, err := tr.ClockIn(); err != nil {
		t.Fatalf("post-backup ClockIn() error = %v", err)
	}
	clock.advance(time.Hour)
	if _, err := tr.ClockOut(); err != nil {
		t.Fatalf("post-backup ClockOut() error = %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup() error = %v", err)
	}
	if err := store.Load(); err != nil {
		t.Fatalf("Load() after restore error = %v", err)
	}

	restored, err := store.GetDayRecords("2023-09-15")
	if err != nil {
		t.Fatalf("GetDayRecords() after restore error = %v", err)
	}
	if len(restored) != 1 {
		t.Errorf("len(friday records) after restore = %d, want 1", len(restored))
	}
}

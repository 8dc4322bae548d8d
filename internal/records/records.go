// Package records turns completed sessions into stored day records and
// keeps day lists coherent: duplicate-session dedup, manual edits, deletes,
// and recomputation of derived minutes when settings change after the fact.
package records

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/shiftlog/internal/constants"
	"github.com/julianstephens/shiftlog/internal/models"
	"github.com/julianstephens/shiftlog/internal/timecalc"
)

var (
	// ErrDuplicateRecord marks a save skipped because the day already holds
	// a record for the same interval. Callers may ignore it.
	ErrDuplicateRecord = errors.New("duplicate record for interval")

	// ErrRecordNotFound marks a delete that matched nothing.
	ErrRecordNotFound = errors.New("record not found")

	// ErrIncompleteSession marks an attempt to persist a session missing an
	// endpoint.
	ErrIncompleteSession = errors.New("session has no start or end time")
)

// NewFromSession builds the stored record for a completed session under the
// given settings, snapshotting the break policy in effect at save time.
// savedAt becomes the record's session id.
func NewFromSession(session models.WorkSession, settings models.Settings, savedAt time.Time) (models.WorkRecord, error) {
	if session.ComputedStartTime == nil || session.EndTime == nil {
		return models.WorkRecord{}, ErrIncompleteSession
	}

	rawMinutes := int(session.EndTime.Sub(*session.ComputedStartTime) / time.Minute)
	if rawMinutes < 0 {
		rawMinutes = 0
	}

	breakMinutes := timecalc.StandardBreakMinutes(settings)
	workMinutes := timecalc.ActualWorkMinutes(rawMinutes, settings)
	overtime := timecalc.OvertimeMinutes(workMinutes, timecalc.ExpectedWorkMinutes(settings))

	realStart := *session.ComputedStartTime
	if session.RealStartTime != nil {
		realStart = *session.RealStartTime
	}

	raw := timecalc.Split(rawMinutes)

	return models.WorkRecord{
		ID:                uuid.NewString(),
		SessionID:         savedAt.UnixMilli(),
		RealStartTime:     realStart.UnixMilli(),
		StartTime:         session.ComputedStartTime.UnixMilli(),
		EndTime:           session.EndTime.UnixMilli(),
		RawHours:          raw.Hours,
		RawMinutes:        raw.Minutes,
		BreakMinutes:      breakMinutes,
		ExcludedBreakTime: settings.ExcludeBreakTime,
		WorkMinutes:       workMinutes,
		OvertimeMinutes:   overtime,
		HasRawTime:        true,
	}, nil
}

// Merge appends a record to a day's list unless the list already holds a
// record whose start and end both fall within the duplicate tolerance. The
// returned list is sorted newest first. ErrDuplicateRecord is returned for
// skipped writes so retries stay idempotent.
func Merge(dayRecords []models.WorkRecord, rec models.WorkRecord) ([]models.WorkRecord, error) {
	tolerance := constants.DuplicateRecordTolerance.Milliseconds()
	for _, existing := range dayRecords {
		if absDiff(existing.StartTime, rec.StartTime) < tolerance &&
			absDiff(existing.EndTime, rec.EndTime) < tolerance {
			return dayRecords, ErrDuplicateRecord
		}
	}

	merged := append(append([]models.WorkRecord(nil), dayRecords...), rec)
	sortNewestFirst(merged)
	return merged, nil
}

// RecomputeUnderSettings returns the day's records with derived minutes
// recomputed for any record whose stored break-policy snapshot differs from
// the current settings. The recomputation reads the record's stored raw
// span and stored break minutes; records without raw-time fields keep their
// stored values verbatim. Storage is never mutated.
func RecomputeUnderSettings(dayRecords []models.WorkRecord, settings models.Settings) []models.WorkRecord {
	out := make([]models.WorkRecord, len(dayRecords))
	copy(out, dayRecords)

	expected := timecalc.ExpectedWorkMinutes(settings)
	for i, rec := range out {
		if !rec.HasRawTime || rec.ExcludedBreakTime == settings.ExcludeBreakTime {
			continue
		}

		raw := rec.RawTotalMinutes()
		work := raw
		if settings.ExcludeBreakTime && raw > rec.BreakMinutes {
			work = raw - rec.BreakMinutes
		}

		out[i].WorkMinutes = work
		out[i].OvertimeMinutes = timecalc.OvertimeMinutes(work, expected)
	}

	return out
}

// Edit replaces the record matching (oldStart, oldEnd) within the edit
// tolerance with a freshly computed record for the new interval, marked as
// manually edited. When nothing matches, the edited interval is added as a
// new record rather than dropped.
func Edit(dayRecords []models.WorkRecord, oldStart, oldEnd, newStart, newEnd time.Time, settings models.Settings, savedAt time.Time) ([]models.WorkRecord, error) {
	session := models.WorkSession{
		Status:            constants.StatusCompleted,
		RealStartTime:     &newStart,
		ComputedStartTime: &newStart,
		EndTime:           &newEnd,
	}
	rec, err := NewFromSession(session, settings, savedAt)
	if err != nil {
		return dayRecords, err
	}
	rec.EditedManually = true

	tolerance := constants.EditMatchTolerance.Milliseconds()
	oldStartMillis := oldStart.UnixMilli()
	oldEndMillis := oldEnd.UnixMilli()

	out := make([]models.WorkRecord, 0, len(dayRecords)+1)
	for _, existing := range dayRecords {
		if absDiff(existing.StartTime, oldStartMillis) < tolerance &&
			absDiff(existing.EndTime, oldEndMillis) < tolerance {
			continue
		}
		out = append(out, existing)
	}

	out = append(out, rec)
	sortNewestFirst(out)
	return out, nil
}

// Delete removes the record whose session id matches. Legacy records
// without a session id match on start time instead. The caller removes the
// day key when the returned list is empty.
func Delete(dayRecords []models.WorkRecord, sessionID int64) ([]models.WorkRecord, error) {
	out := make([]models.WorkRecord, 0, len(dayRecords))
	found := false
	for _, rec := range dayRecords {
		id := rec.SessionID
		if id == 0 {
			id = rec.StartTime
		}
		if id == sessionID {
			found = true
			continue
		}
		out = append(out, rec)
	}

	if !found {
		return dayRecords, ErrRecordNotFound
	}
	return out, nil
}

func sortNewestFirst(recs []models.WorkRecord) {
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].StartTime > recs[j].StartTime
	})
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

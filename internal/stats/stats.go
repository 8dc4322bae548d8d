package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/shiftlog/internal/models"
	"github.com/julianstephens/shiftlog/internal/records"
	"github.com/julianstephens/shiftlog/internal/timecalc"
	"github.com/julianstephens/shiftlog/internal/utils"
)

// Period selects the aggregation window for stats views.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// DayStat is one day's aggregated totals within a period.
type DayStat struct {
	Date            string
	WorkMinutes     int
	OvertimeMinutes int
	Records         int
}

// Summary aggregates a period of day records.
type Summary struct {
	Days                 []DayStat
	TotalWorkMinutes     int
	TotalOvertimeMinutes int
	DaysWorked           int
	AverageWorkMinutes   int
}

// Aggregate computes per-day and period totals for a set of day records.
// Records are recomputed under the current break policy first, and each
// day's overtime is derived once from the day's total work rather than by
// summing per-record overtime, so split sessions never inflate it.
func Aggregate(set models.DayRecordSet, settings models.Settings) Summary {
	expected := timecalc.ExpectedWorkMinutes(settings)

	dates := make([]string, 0, len(set))
	for date := range set {
		dates = append(dates, date)
	}
	// YYYY-MM-DD sorts lexically.
	sort.Strings(dates)

	var summary Summary
	for _, date := range dates {
		recs := records.RecomputeUnderSettings(set[date], settings)
		if len(recs) == 0 {
			continue
		}

		day := DayStat{Date: date, Records: len(recs)}
		for _, rec := range recs {
			day.WorkMinutes += rec.WorkMinutes
		}
		day.OvertimeMinutes = timecalc.OvertimeMinutes(day.WorkMinutes, expected)

		summary.Days = append(summary.Days, day)
		summary.TotalWorkMinutes += day.WorkMinutes
		summary.TotalOvertimeMinutes += day.OvertimeMinutes
		summary.DaysWorked++
	}

	if summary.DaysWorked > 0 {
		// Round half up.
		summary.AverageWorkMinutes = (summary.TotalWorkMinutes + summary.DaysWorked/2) / summary.DaysWorked
	}
	return summary
}

// Range returns the inclusive [start, end] day bounds for a period. Offset
// shifts whole periods, 0 meaning the period containing now and negative
// values reaching back. The end never passes today, so a current-period view
// only covers days that have happened.
func Range(period Period, offset int, now time.Time) (start, end time.Time, err error) {
	switch period {
	case PeriodDay:
		start = utils.StartOfDay(now).AddDate(0, 0, offset)
		end = start
	case PeriodWeek:
		start = utils.WeekStart(now).AddDate(0, 0, 7*offset)
		end = start.AddDate(0, 0, 6)
	case PeriodMonth:
		start = utils.MonthStart(now).AddDate(0, offset, 0)
		end = utils.MonthEnd(start)
	case PeriodYear:
		start = utils.YearStart(now).AddDate(offset, 0, 0)
		end = utils.YearEnd(start)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", period)
	}
	return start, utils.ClampToToday(end, now), nil
}

// ContainsDay reports whether the day containing t falls inside [start, end].
func ContainsDay(start, end, t time.Time) bool {
	day := utils.StartOfDay(t)
	return !day.Before(utils.StartOfDay(start)) && !day.After(utils.StartOfDay(end))
}

// WorkHeatLevel buckets a day's worked minutes against the expected day in
// quarter steps: 0 for no work, then 1 through 4 for up to 25%, 50%, 75%,
// and beyond.
func WorkHeatLevel(workMinutes, expectedMinutes int) int {
	if workMinutes <= 0 || expectedMinutes <= 0 {
		return 0
	}
	switch {
	case workMinutes*4 <= expectedMinutes:
		return 1
	case workMinutes*2 <= expectedMinutes:
		return 2
	case workMinutes*4 <= expectedMinutes*3:
		return 3
	default:
		return 4
	}
}

// OvertimeHeatLevel buckets a day's overtime in hour steps: 0 for none,
// then 1 through 4 for under one, two, and three hours, and three hours or
// more.
func OvertimeHeatLevel(overtimeMinutes int) int {
	switch {
	case overtimeMinutes <= 0:
		return 0
	case overtimeMinutes < 60:
		return 1
	case overtimeMinutes < 120:
		return 2
	case overtimeMinutes < 180:
		return 3
	default:
		return 4
	}
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/shiftlog/internal/models"
	"github.com/julianstephens/shiftlog/internal/stats"
	"github.com/julianstephens/shiftlog/internal/timecalc"
	"github.com/julianstephens/shiftlog/internal/utils"
)

type StatsCmd struct {
	Period  string `help:"Aggregation period." enum:"day,week,month,year" default:"week"`
	Offset  int    `help:"Whole periods back from the current one, e.g. -1 for last ${period}." default:"0"`
	Heatmap bool   `help:"Render a per-day heatmap instead of the summary table."`
}

// heatStyles maps heat levels 0-4 to block styles, dimmest first.
var heatStyles = [5]lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("22")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
}

var overtimeStyles = [5]lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("94")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("166")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
}

func (c *StatsCmd) Run(ctx *Context) error {
	if err := ctx.Tracker.CheckDayRollover(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		loc = time.Local
	}
	now := time.Now().In(loc)

	start, end, err := stats.Range(stats.Period(c.Period), c.Offset, now)
	if err != nil {
		return err
	}

	set, err := ctx.Store.GetRecordsInRange(utils.FormatDate(start), utils.FormatDate(end))
	if err != nil {
		return err
	}

	// A running session counts toward the current period.
	if stats.ContainsDay(start, end, now) {
		if live, ok, err := ctx.Tracker.LiveRecord(); err != nil {
			return err
		} else if ok {
			date := utils.FormatDate(now)
			set[date] = append(set[date], live)
		}
	}

	summary := stats.Aggregate(set, settings)

	fmt.Printf("Stats for %s to %s:\n\n", utils.FormatDate(start), utils.FormatDate(end))
	if c.Heatmap {
		c.renderHeatmap(summary, settings, start, end)
	} else {
		c.renderTable(summary)
	}

	fmt.Printf("\nTotal: %s worked, %s overtime over %d day(s)",
		FormatMinutes(summary.TotalWorkMinutes), FormatMinutes(summary.TotalOvertimeMinutes), summary.DaysWorked)
	if summary.DaysWorked > 0 {
		fmt.Printf(", average %s/day", FormatMinutes(summary.AverageWorkMinutes))
	}
	fmt.Println()
	return nil
}

func (c *StatsCmd) renderTable(summary stats.Summary) {
	if len(summary.Days) == 0 {
		fmt.Println("  No records in this period.")
		return
	}
	for _, day := range summary.Days {
		fmt.Printf("  %s  work %s", day.Date, FormatMinutes(day.WorkMinutes))
		if day.OvertimeMinutes > 0 {
			fmt.Printf("  overtime %s", FormatMinutes(day.OvertimeMinutes))
		}
		if day.Records > 1 {
			fmt.Printf("  (%d sessions)", day.Records)
		}
		fmt.Printf("  %s\n", dayBar(day))
	}
}

// dayBar renders a bar with one block per half hour, the overtime share in
// the overtime palette. Capped at 12 hours so a runaway day stays on one
// line.
func dayBar(day stats.DayStat) string {
	regular := (day.WorkMinutes - day.OvertimeMinutes) / 30
	overtime := day.OvertimeMinutes / 30
	if regular+overtime > 24 {
		overtime = 24 - min(regular, 24)
		regular = min(regular, 24)
	}
	return heatStyles[4].Render(strings.Repeat("█", regular)) +
		overtimeStyles[4].Render(strings.Repeat("█", overtime))
}

// renderHeatmap draws one cell per calendar day in the range, one row per
// week. The left block shades worked time against the expected day, the
// right block shades overtime.
func (c *StatsCmd) renderHeatmap(summary stats.Summary, settings models.Settings, start, end time.Time) {
	expected := timecalc.ExpectedWorkMinutes(settings)

	byDate := make(map[string]stats.DayStat, len(summary.Days))
	for _, day := range summary.Days {
		byDate[day.Date] = day
	}

	fmt.Println("  work / overtime")
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Monday || day.Equal(start) {
			if !day.Equal(start) {
				fmt.Println()
			}
			fmt.Printf("  %s  ", utils.FormatDate(day))
		}

		stat := byDate[utils.FormatDate(day)]
		workLevel := stats.WorkHeatLevel(stat.WorkMinutes, expected)
		otLevel := stats.OvertimeHeatLevel(stat.OvertimeMinutes)
		fmt.Print(heatStyles[workLevel].Render("■"))
		fmt.Print(overtimeStyles[otLevel].Render("▪"))
		fmt.Print(" ")
	}
	fmt.Println()
}

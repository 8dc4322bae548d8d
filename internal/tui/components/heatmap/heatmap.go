package heatmap

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/shiftlog/internal/models"
	"github.com/julianstephens/shiftlog/internal/stats"
	"github.com/julianstephens/shiftlog/internal/timecalc"
	"github.com/julianstephens/shiftlog/internal/utils"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	workStyles = [5]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("22")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
	}

	overtimeStyles = [5]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("94")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("166")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

type Model struct {
	Summary  stats.Summary
	Settings models.Settings
	Start    time.Time
	End      time.Time
	Label    string
}

// View renders one row per week with a work cell and an overtime cell per
// day, followed by the period totals.
func (m Model) View() string {
	expected := timecalc.ExpectedWorkMinutes(m.Settings)

	byDate := make(map[string]stats.DayStat, len(m.Summary.Days))
	for _, day := range m.Summary.Days {
		byDate[day.Date] = day
	}

	out := headerStyle.Render(m.Label) + "\n\n"
	out += mutedStyle.Render("      Mo Tu We Th Fr Sa Su") + "\n"

	row := "      "
	// Pad the first week so weekdays line up, Sunday counting as the last
	// column.
	offset := (int(m.Start.Weekday()) - int(time.Monday) + 7) % 7
	for i := 0; i < offset; i++ {
		row += "   "
	}

	for day := m.Start; !day.After(m.End); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Monday && !day.Equal(m.Start) {
			out += row + "\n"
			row = fmt.Sprintf("%s ", mutedStyle.Render(day.Format("01-02")))
		}

		stat := byDate[utils.FormatDate(day)]
		row += workStyles[stats.WorkHeatLevel(stat.WorkMinutes, expected)].Render("■")
		row += overtimeStyles[stats.OvertimeHeatLevel(stat.OvertimeMinutes)].Render("▪")
		row += " "
	}
	out += row + "\n\n"

	out += fmt.Sprintf("Worked   %dh %02dm\n", m.Summary.TotalWorkMinutes/60, m.Summary.TotalWorkMinutes%60)
	out += fmt.Sprintf("Overtime %dh %02dm\n", m.Summary.TotalOvertimeMinutes/60, m.Summary.TotalOvertimeMinutes%60)
	out += fmt.Sprintf("Days     %d", m.Summary.DaysWorked)
	if m.Summary.DaysWorked > 0 {
		out += fmt.Sprintf("   avg %dh %02dm/day", m.Summary.AverageWorkMinutes/60, m.Summary.AverageWorkMinutes%60)
	}
	return out
}

package timer

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/shiftlog/internal/constants"
	"github.com/julianstephens/shiftlog/internal/models"
	"github.com/julianstephens/shiftlog/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Padding(1, 2).
			Align(lipgloss.Center)

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Padding(1, 0).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Width(40).
			Align(lipgloss.Center)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 1)

	overtimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("166")).
			Bold(true)
)

type Model struct {
	Session  models.WorkSession
	Settings models.Settings
	Work     int
	Overtime int
	Time     time.Time
	width    int
	height   int
}

func New() Model {
	return Model{Time: time.Now()}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.Time = time.Time(msg)
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	var content string

	switch m.Session.Status {
	case constants.StatusWorking:
		start := *m.Session.ComputedStartTime
		elapsed := m.Time.Sub(start)
		if elapsed < 0 {
			elapsed = 0
		}

		lines := []string{
			mutedStyle.Render(fmt.Sprintf("since %s", start.Format(constants.TimeFormat))),
			clockStyle.Render(formatDuration(elapsed)),
		}

		end := utils.StandardEndOn(start, m.Settings)
		if remaining := end.Sub(m.Time); remaining > 0 {
			lines = append(lines, mutedStyle.Render(
				fmt.Sprintf("%s until %s", formatDuration(remaining), end.Format(constants.TimeFormat))))
		} else {
			lines = append(lines, overtimeStyle.Render(
				fmt.Sprintf("%s past %s", formatDuration(-remaining), end.Format(constants.TimeFormat))))
		}

		content = lipgloss.JoinVertical(lipgloss.Center, lines...)
	default:
		content = lipgloss.JoinVertical(lipgloss.Center,
			clockStyle.Render("not clocked in"),
			mutedStyle.Render("press i to start a session"),
		)
	}

	today := fmt.Sprintf("today %dh %02dm", m.Work/60, m.Work%60)
	if m.Overtime > 0 {
		today += overtimeStyle.Render(fmt.Sprintf("  +%dh %02dm", m.Overtime/60, m.Overtime%60))
	}

	content = lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(fmt.Sprintf("Now: %02d:%02d:%02d", m.Time.Hour(), m.Time.Minute(), m.Time.Second())),
		content,
		mutedStyle.Render(today),
	)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/shiftlog/internal/stats"
	"github.com/julianstephens/shiftlog/internal/storage"
	"github.com/julianstephens/shiftlog/internal/tracker"
	"github.com/julianstephens/shiftlog/internal/tui/components/heatmap"
	"github.com/julianstephens/shiftlog/internal/tui/components/timer"
	"github.com/julianstephens/shiftlog/internal/utils"
)

type SessionState int

const (
	StateTimer SessionState = iota
	StateStats

	stateCount
)

// periods cycled by the stats tab, coarsest last.
var periods = []stats.Period{stats.PeriodWeek, stats.PeriodMonth, stats.PeriodYear}

type Model struct {
	store   storage.Provider
	tracker *tracker.Tracker

	state SessionState
	keys  KeyMap
	help  help.Model

	timerModel timer.Model

	periodIdx int
	offset    int
	heatModel heatmap.Model

	width    int
	height   int
	err      error
	quitting bool
}

func NewModel(store storage.Provider, trk *tracker.Tracker) Model {
	m := Model{
		store:      store,
		tracker:    trk,
		state:      StateTimer,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		timerModel: timer.New(),
	}
	m.refreshTimer()
	m.refreshStats()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.timerModel.Init()
}

// refreshTimer reloads session state and today's totals into the timer tab.
func (m *Model) refreshTimer() {
	session, settings, err := m.tracker.Status()
	if err != nil {
		m.err = err
		return
	}
	work, overtime, err := m.tracker.TodayTotals()
	if err != nil {
		m.err = err
		return
	}

	m.err = nil
	m.timerModel.Session = session
	m.timerModel.Settings = settings
	m.timerModel.Work = work
	m.timerModel.Overtime = overtime
}

// refreshStats rebuilds the heatmap tab for the selected period and offset.
func (m *Model) refreshStats() {
	settings, err := m.store.GetSettings()
	if err != nil {
		m.err = err
		return
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		loc = time.Local
	}
	now := time.Now().In(loc)

	period := periods[m.periodIdx]
	start, end, err := stats.Range(period, m.offset, now)
	if err != nil {
		m.err = err
		return
	}

	set, err := m.store.GetRecordsInRange(utils.FormatDate(start), utils.FormatDate(end))
	if err != nil {
		m.err = err
		return
	}
	if stats.ContainsDay(start, end, now) {
		if live, ok, err := m.tracker.LiveRecord(); err == nil && ok {
			date := utils.FormatDate(now)
			set[date] = append(set[date], live)
		}
	}

	m.err = nil
	m.heatModel = heatmap.Model{
		Summary:  stats.Aggregate(set, settings),
		Settings: settings,
		Start:    start,
		End:      end,
		Label:    fmt.Sprintf("%s: %s to %s", period, utils.FormatDate(start), utils.FormatDate(end)),
	}
}

package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/shiftlog/internal/tracker"
	"github.com/julianstephens/shiftlog/internal/tui/components/timer"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.timerModel.SetSize(msg.Width, msg.Height-4)

	case timer.TickMsg:
		var cmd tea.Cmd
		m.timerModel, cmd = m.timerModel.Update(msg)
		// Totals move once a minute at most; the per-second tick only
		// drives the clocks.
		if m.timerModel.Time.Second() == 0 {
			m.refreshTimer()
		}
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % stateCount
			if m.state == StateStats {
				m.refreshStats()
			}

		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + stateCount) % stateCount
			if m.state == StateStats {
				m.refreshStats()
			}

		case key.Matches(msg, m.keys.In):
			if _, err := m.tracker.ClockIn(); err != nil && !errors.Is(err, tracker.ErrAlreadyWorking) {
				m.err = err
			} else {
				m.refreshTimer()
			}

		case key.Matches(msg, m.keys.Out):
			if _, err := m.tracker.ClockOut(); err != nil && !errors.Is(err, tracker.ErrNoOpenSession) {
				m.err = err
			} else {
				m.refreshTimer()
			}

		case key.Matches(msg, m.keys.Period):
			if m.state == StateStats {
				m.periodIdx = (m.periodIdx + 1) % len(periods)
				m.offset = 0
				m.refreshStats()
			}

		case key.Matches(msg, m.keys.PrevPeriod):
			if m.state == StateStats {
				m.offset--
				m.refreshStats()
			}

		case key.Matches(msg, m.keys.NextPeriod):
			if m.state == StateStats && m.offset < 0 {
				m.offset++
				m.refreshStats()
			}
		}
	}

	return m, nil
}

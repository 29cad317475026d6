package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// advanceMonth narrows the series to the next month.
func advanceMonth(m *model) (tea.Model, tea.Cmd) {
	m.month = m.month.next(latestMonth(m.snapshot))
	return m.applyMonth()
}

// retrievePreviousMonth narrows the series to the previous month.
func retrievePreviousMonth(m *model) (tea.Model, tea.Cmd) {
	m.month = m.month.previous(latestMonth(m.snapshot))
	return m.applyMonth()
}

// showAllMonths removes the month filter.
func showAllMonths(m *model) (tea.Model, tea.Cmd) {
	m.month = monthSelector{}
	return m.applyMonth()
}

// applyMonth recomputes the series from the fetched snapshot. The
// coordinator republishes through the renderer, so it runs as a command.
func (m *model) applyMonth() (tea.Model, tea.Cmd) {
	m.overview.SetMonth(m.month.key())
	log.Debug("month selected", "month", m.month.label(m.locale))

	sel := m.month
	coord := m.coord
	return m, func() tea.Msg {
		if sel.selected {
			coord.SetMonth(sel.month)
		} else {
			coord.ClearMonth()
		}
		return nil
	}
}

package main

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"

	"github.com/Rshep3087/expensemon/session"
)

type keyMap struct {
	transactions  key.Binding
	overview      key.Binding
	months        key.Binding
	config        key.Binding
	nextMonth     key.Binding
	previousMonth key.Binding
	allMonths     key.Binding
	reload        key.Binding
	logout        key.Binding
	selectMonth   key.Binding
	escape        key.Binding
	fullHelp      key.Binding
	quit          key.Binding
}

func (km keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		km.overview,
		km.transactions,
		km.months,
		km.allMonths,
		km.quit,
		km.fullHelp,
	}
}

func (km keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{
			km.overview,
			km.transactions,
			km.months,
			km.config,
			km.reload,
			km.logout,
			km.quit,
			km.fullHelp,
		},
		{
			km.nextMonth,
			km.previousMonth,
			km.allMonths,
		},
	}
}

func initializeKeyMap() keyMap {
	keys := keyMap{
		transactions: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "transactions"),
		),
		overview: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "overview"),
		),
		months: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "months"),
		),
		config: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "configuration"),
		),
		nextMonth: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next month"),
		),
		previousMonth: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous month"),
		),
		allMonths: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all months"),
		),
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		logout: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "log out"),
		),
		selectMonth: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select month"),
		),
		escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "escape"),
		),
		fullHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
	return keys
}

func handleKeyPress(msg tea.KeyMsg, m *model) (tea.Model, tea.Cmd) {
	k := msg.String()
	log.Debug("key pressed", "key", k)

	// Handle special keys first
	if model, cmd := handleSpecialKeys(msg, m); cmd != nil {
		return model, cmd
	}

	// Check if input is blocked by active forms
	if isInputBlocked(m) {
		return m, nil
	}

	// Handle month navigation keys
	if model, cmd := handleNavigationKeys(msg, m); cmd != nil {
		return model, cmd
	}

	// Handle session state changes
	if model, cmd := handleSessionStateKeys(msg, m); cmd != nil {
		return model, cmd
	}

	return m, nil
}

func handleSpecialKeys(msg tea.KeyMsg, m *model) (tea.Model, tea.Cmd) {
	// q is text while a form has focus
	if key.Matches(msg, m.keys.quit) && (msg.Type == tea.KeyCtrlC || !formActive(m)) {
		return m, tea.Quit
	}

	if key.Matches(msg, m.keys.escape) {
		return handleEscape(msg, m)
	}

	return m, nil
}

func formActive(m *model) bool {
	switch m.sessionState {
	case loginState, registerState:
		return m.authForm != nil && m.authForm.State == huh.StateNormal
	case transactionForm:
		return m.transactionForm != nil && m.transactionForm.State == huh.StateNormal
	case confirmDelete:
		return m.deleteForm != nil && m.deleteForm.State == huh.StateNormal
	}
	return false
}

func isInputBlocked(m *model) bool {
	if m.transactions.FilterState() == list.Filtering {
		return true
	}

	if formActive(m) {
		return true
	}

	switch m.sessionState {
	case loading, loginState, registerState, errorState:
		return true
	}

	return false
}

func handleNavigationKeys(msg tea.KeyMsg, m *model) (tea.Model, tea.Cmd) {
	if m.sessionState != overviewState && m.sessionState != monthsView {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.nextMonth):
		return advanceMonth(m)
	case key.Matches(msg, m.keys.previousMonth):
		return retrievePreviousMonth(m)
	case key.Matches(msg, m.keys.allMonths):
		return showAllMonths(m)
	case m.sessionState == monthsView && key.Matches(msg, m.keys.selectMonth):
		k, ok := m.months.Selected()
		if !ok {
			return m, nil
		}
		m.month = monthSelector{month: k, selected: true}
		m.months.SetFocus(false)
		m.sessionState = overviewState
		return m.applyMonth()
	}

	return m, nil
}

func handleSessionStateKeys(msg tea.KeyMsg, m *model) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.transactions):
		if m.sessionState != transactions {
			return m, m.navigate(session.PathTransactions)
		}

	case key.Matches(msg, m.keys.overview):
		if m.sessionState != overviewState {
			return m, m.navigate(session.PathDashboard)
		}

	case key.Matches(msg, m.keys.months):
		if m.sessionState != monthsView {
			m.previousSessionState = m.sessionState
			m.months.SetFocus(true)
			m.sessionState = monthsView
			return m, tea.WindowSize()
		}

	case key.Matches(msg, m.keys.config):
		if m.sessionState != configView {
			m.previousSessionState = m.sessionState
			m.configView.SetFocus(true)
			m.sessionState = configView
			return m, tea.WindowSize()
		}

	case key.Matches(msg, m.keys.reload):
		m.activated = false
		return m, m.ensureActivated()

	case key.Matches(msg, m.keys.logout):
		return m, m.logout

	case key.Matches(msg, m.keys.fullHelp):
		if m.sessionState != transactions {
			m.help.ShowAll = !m.help.ShowAll
			return m, tea.WindowSize()
		}
	}

	return m, nil
}

// handleEscape backs out of the current screen.
func handleEscape(msg tea.KeyMsg, m *model) (tea.Model, tea.Cmd) {
	switch m.sessionState {
	case registerState:
		log.Debug("handling escape in register state")
		m.authForm.State = huh.StateAborted
		return m, m.navigate(session.PathLogin)

	case loginState, loading:
		return m, nil

	case transactionForm:
		log.Debug("handling escape in transaction form")
		m.transactionForm.State = huh.StateAborted
		m.editing = nil
		return m, m.navigate(session.PathTransactions)

	case confirmDelete:
		m.deleteForm.State = huh.StateAborted
		m.pendingDelete = nil
		m.sessionState = transactions
		return m, tea.WindowSize()

	case errorState:
		m.errorMsg = ""
		return m, m.navigate(session.PathTransactions)

	case transactions:
		// handle if user is filtering transactions and presses escape
		if m.transactions.FilterState() != list.Unfiltered {
			log.Debug("handling escape in transactions filtering")
			var cmd tea.Cmd
			m.transactions, cmd = m.transactions.Update(msg)
			return m, cmd
		}

	case overviewState:
		return m, nil
	}

	m.months.SetFocus(false)
	m.configView.SetFocus(false)
	return m, m.navigate(session.PathDashboard)
}

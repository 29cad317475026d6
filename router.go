package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Rshep3087/expensemon/session"
)

// navigate resolves path against the session guard and switches to the
// screen of the resulting route.
func (m *model) navigate(path string) tea.Cmd {
	resolved := m.guard.Resolve(path)
	if resolved != path {
		log.Debug("redirecting", "from", path, "to", resolved)
	}

	route, id := session.MatchRoute(resolved)
	if route == session.RouteUnknown {
		log.Debug("unknown route", "path", resolved)
		return m.navigate(session.PathDashboard)
	}

	m.previousSessionState = m.sessionState
	m.path = resolved

	switch route {
	case session.RouteLogin:
		m.sessionState = loginState
		m.authForm = newLoginForm(m.auth)
		return tea.Batch(m.authForm.Init(), tea.WindowSize())

	case session.RouteRegister:
		m.sessionState = registerState
		m.authForm = newRegisterForm(m.auth)
		return tea.Batch(m.authForm.Init(), tea.WindowSize())

	case session.RouteDashboard:
		m.sessionState = overviewState
		return tea.Batch(m.ensureActivated(), tea.WindowSize())

	case session.RouteTransactions:
		m.sessionState = transactions
		return tea.Batch(m.ensureActivated(), tea.WindowSize())

	case session.RouteNewTransaction:
		return tea.Batch(m.ensureActivated(), m.openTransactionForm(nil))

	case session.RouteEditTransaction:
		m.sessionState = loading
		return tea.Batch(m.ensureActivated(), m.loadingSpinner.Tick, m.getTransaction(id))
	}

	return nil
}

// ensureActivated starts the first fetch after login.
func (m *model) ensureActivated() tea.Cmd {
	if m.activated {
		return nil
	}

	m.activated = true
	m.loadingState.reset()
	return tea.Batch(m.activate, m.getCategories, m.loadingSpinner.Tick)
}

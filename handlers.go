package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Rshep3087/expensemon/apperr"
	"github.com/Rshep3087/expensemon/session"
	"github.com/Rshep3087/expensemon/transaction"
	"github.com/Rshep3087/expensemon/view"
)

// Message types for routing and remote responses.
type (
	navigateMsg struct {
		path string
	}

	authChangedMsg struct {
		authenticated bool
	}

	authFailedMsg struct {
		err error
	}

	activatedMsg struct {
		mismatch error
	}

	getCategoriesMsg struct {
		categories []string
	}

	getTransactionMsg struct {
		t   transaction.Transaction
		err error
	}

	writeDoneMsg struct {
		status string
		err    error
	}
)

// Message handlers.
func (m model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	h, v := m.styles.docStyle.GetFrameSize()

	takenHeight := 5
	m.overview.SetSize(msg.Width-h, msg.Height-v-takenHeight)
	m.transactions.SetSize(msg.Width-h, msg.Height-v-takenHeight)
	m.months.SetSize(msg.Width-h, msg.Height-v-takenHeight)
	m.configView.SetSize(msg.Width-h, msg.Height-v-takenHeight)

	m.help.Width = msg.Width

	if m.authForm != nil {
		m.authForm = m.authForm.WithHeight(msg.Height - takenHeight).WithWidth(msg.Width - h)
	}
	if m.transactionForm != nil {
		m.transactionForm = m.transactionForm.WithHeight(msg.Height - takenHeight).WithWidth(msg.Width - h)
	}

	return m, nil
}

func (m model) handleSpinnerTick(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	if loaded, _ := m.loadingState.allLoaded(); loaded && m.sessionState != loading {
		return m, nil
	}

	var cmd tea.Cmd
	m.loadingSpinner, cmd = m.loadingSpinner.Update(msg)
	return m, cmd
}

func (m model) handleTransactionsPanel(msg transactionsPanelMsg) (tea.Model, tea.Cmd) {
	switch msg.panel.State {
	case view.Loading:
		m.loadingState.unset(transactionsKey)
		return m, m.loadingSpinner.Tick

	case view.Failed:
		m.loadingState.set(transactionsKey)
		return m, m.transactions.NewStatusMessage(
			m.styles.errorStyle.Render(fmt.Sprintf("Could not load transactions: %s", msg.panel.Err)),
		)
	}

	m.snapshot = msg.panel.Data

	sorted := slices.Clone(msg.panel.Data)
	sortByDateDesc(sorted)

	items := make([]list.Item, len(sorted))
	for i, t := range sorted {
		items[i] = transactionItem{t: t, currency: m.currency}
	}

	cmd := m.transactions.SetItems(items)
	m.loadingState.set(transactionsKey)

	return m, cmd
}

func (m model) handleCategoriesPanel(msg categoriesPanelMsg) (tea.Model, tea.Cmd) {
	m.overview.SetCategories(msg.panel)
	return m, nil
}

func (m model) handleSeriesPanel(msg seriesPanelMsg) (tea.Model, tea.Cmd) {
	m.overview.SetSeries(msg.panel)
	if msg.panel.State == view.Loaded {
		m.months.SetSeries(msg.panel.Data)
	}
	return m, nil
}

func (m model) handleBalancePanel(msg balancePanelMsg) (tea.Model, tea.Cmd) {
	m.overview.SetBalance(msg.panel)

	if msg.panel.State == view.Loading {
		m.loadingState.unset(balanceKey)
		return m, m.loadingSpinner.Tick
	}

	m.loadingState.set(balanceKey)
	return m, nil
}

func (m model) handleActivated(msg activatedMsg) (tea.Model, tea.Cmd) {
	m.mismatch = msg.mismatch
	m.overview.SetMismatch(msg.mismatch)
	return m, nil
}

func (m model) handleGetCategories(msg getCategoriesMsg) (tea.Model, tea.Cmd) {
	m.categories = msg.categories
	return m, nil
}

// handleAuthChanged follows the session: logging in opens the dashboard,
// logging out drops everything fetched and sends the user back to login.
func (m model) handleAuthChanged(msg authChangedMsg) (tea.Model, tea.Cmd) {
	log.Debug("session changed", "authenticated", msg.authenticated)

	if msg.authenticated {
		m.errorMsg = ""
		return m, m.navigate(session.PathDashboard)
	}

	m.activated = false
	m.snapshot = nil
	m.categories = nil
	m.month = monthSelector{}
	m.mismatch = nil
	m.loadingState.reset()
	m.overview = newOverview(m.theme, m.locale, m.currency)
	cmd := m.transactions.SetItems(nil)

	return m, tea.Batch(cmd, m.navigate(m.path))
}

func (m model) handleAuthFailed(msg authFailedMsg) (tea.Model, tea.Cmd) {
	m.errorMsg = msg.err.Error()
	return m, m.navigate(m.path)
}

func (m model) handleGetTransaction(msg getTransactionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.sessionState = errorState
		m.errorMsg = fmt.Sprintf("Could not load transaction: %s", msg.err)
		return m, nil
	}

	return m, m.openTransactionForm(&msg.t)
}

func (m model) handleWriteDone(msg writeDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.transactions.NewStatusMessage(
			m.styles.errorStyle.Render(msg.err.Error()),
		)
	}

	return m, m.transactions.NewStatusMessage(msg.status)
}

// API call functions.

// activate fetches the list and the balance. Panels arrive through the renderer.
func (m model) activate() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), activationTimeout)
	defer cancel()

	if err := m.coord.Activate(ctx, m.filter); err != nil {
		log.Debug("activation finished with errors", "error", err)
	}

	return activatedMsg{mismatch: m.coord.Mismatch()}
}

func (m model) getCategories() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), activationTimeout)
	defer cancel()

	categories, err := m.client.Categories(ctx)
	if err != nil {
		m.logoutOnAuthError(err)
		log.Error("failed to load categories", "error", err)
		return nil
	}

	return getCategoriesMsg{categories: categories}
}

func (m model) getTransaction(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), activationTimeout)
		defer cancel()

		t, err := m.client.GetTransaction(ctx, id)
		if err != nil {
			m.logoutOnAuthError(err)
		}
		return getTransactionMsg{t: t, err: err}
	}
}

func (m model) createTransaction(n transaction.New) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		created, err := m.client.CreateTransaction(ctx, n)
		if err != nil {
			m.logoutOnAuthError(err)
			log.Error("failed to create transaction", "error", err)
			return writeDoneMsg{err: fmt.Errorf("error creating transaction: %w", err)}
		}

		log.Debug("transaction created", "id", created.ID)
		m.reload()

		return writeDoneMsg{status: fmt.Sprintf("Transaction %s created", created.ID)}
	}
}

func (m model) updateTransaction(id string, p transaction.Patch) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if _, err := m.client.UpdateTransaction(ctx, id, p); err != nil {
			m.logoutOnAuthError(err)
			log.Error("failed to update transaction", "id", id, "error", err)
			return writeDoneMsg{err: fmt.Errorf("error updating transaction: %w", err)}
		}

		m.reload()

		return writeDoneMsg{status: fmt.Sprintf("Transaction %s updated", id)}
	}
}

func (m model) deleteTransaction(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := m.client.DeleteTransaction(ctx, id); err != nil {
			m.logoutOnAuthError(err)
			log.Error("failed to delete transaction", "id", id, "error", err)
			return writeDoneMsg{err: fmt.Errorf("error deleting transaction: %w", err)}
		}

		m.reload()

		return writeDoneMsg{status: fmt.Sprintf("Transaction %s deleted", id)}
	}
}

// reload refetches after a remote write. Must run inside a tea.Cmd.
func (m model) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), activationTimeout)
	defer cancel()

	if err := m.coord.Reload(ctx); err != nil {
		log.Debug("reload finished with errors", "error", err)
	}
}

func (m model) logout() tea.Msg {
	if err := m.store.Logout(); err != nil {
		log.Error("failed to clear stored session", "error", err)
	}
	return nil
}

// logoutOnAuthError ends the session when the remote rejected it. Must run inside a tea.Cmd.
func (m model) logoutOnAuthError(err error) {
	if !apperr.Is(err, apperr.AuthRequired) {
		return
	}
	log.Warn("session rejected, logging out", "error", err)
	if lerr := m.store.Logout(); lerr != nil {
		log.Error("failed to clear stored session", "error", lerr)
	}
}

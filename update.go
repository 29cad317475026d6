package main

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// always check for quit key first
	if msg, ok := msg.(tea.KeyMsg); ok {
		if model, cmd := handleKeyPress(msg, &m); cmd != nil {
			log.Debug("key press handled, cmd returned")
			return model, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case spinner.TickMsg:
		return m.handleSpinnerTick(msg)

	case navigateMsg:
		return m, m.navigate(msg.path)

	case authChangedMsg:
		return m.handleAuthChanged(msg)

	case authFailedMsg:
		return m.handleAuthFailed(msg)

	case transactionsPanelMsg:
		return m.handleTransactionsPanel(msg)

	case categoriesPanelMsg:
		return m.handleCategoriesPanel(msg)

	case seriesPanelMsg:
		return m.handleSeriesPanel(msg)

	case balancePanelMsg:
		return m.handleBalancePanel(msg)

	case activatedMsg:
		return m.handleActivated(msg)

	case getCategoriesMsg:
		return m.handleGetCategories(msg)

	case getTransactionMsg:
		return m.handleGetTransaction(msg)

	case writeDoneMsg:
		return m.handleWriteDone(msg)

	case editRequestMsg:
		return m.handleEditRequest(msg)

	case deleteRequestMsg:
		return m.handleDeleteRequest(msg)

	case AIRecommendationLoadingMsg:
		return m.handleAIRecommendationLoading(msg)

	case AIRecommendationMsg:
		return m.handleAIRecommendation(msg)
	}

	var cmd tea.Cmd
	switch m.sessionState {
	case loginState, registerState:
		return updateAuthForm(msg, &m)

	case transactionForm:
		return updateTransactionForm(msg, &m)

	case confirmDelete:
		return updateConfirmDelete(msg, &m)

	case overviewState:
		m.overview, cmd = m.overview.Update(msg)
		return m, cmd

	case transactions:
		return updateTransactions(msg, m)

	case monthsView:
		m.months, cmd = m.months.Update(msg)
		return m, cmd

	case configView:
		m.configView, cmd = m.configView.Update(msg)
		return m, cmd

	case loading:
		m.loadingSpinner, cmd = m.loadingSpinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

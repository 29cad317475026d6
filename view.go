package main

import (
	"fmt"
	"strings"
)

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n\n")

	switch m.sessionState {
	case loginState, registerState:
		if m.errorMsg != "" {
			b.WriteString(m.styles.errorStyle.Render(m.errorMsg))
			b.WriteString("\n\n")
		}
		if m.authForm != nil {
			b.WriteString(m.authForm.View())
		}
		return m.styles.docStyle.Render(b.String())
	case overviewState:
		b.WriteString(m.overview.View())
	case transactions:
		b.WriteString(transactionsView(m))
	case transactionForm:
		b.WriteString(m.transactionForm.View())
		return m.styles.docStyle.Render(b.String())
	case confirmDelete:
		b.WriteString(m.deleteForm.View())
		return m.styles.docStyle.Render(b.String())
	case monthsView:
		b.WriteString(m.months.View())
	case configView:
		b.WriteString(m.configView.View())
	case loading:
		b.WriteString(fmt.Sprintf("%s Loading...", m.loadingSpinner.View()))
		return m.styles.docStyle.Render(b.String())
	case errorState:
		b.WriteString(m.styles.errorStyle.Render(fmt.Sprintf("%s - 'esc' to go back", m.errorMsg)))
		return m.styles.docStyle.Render(b.String())
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	return m.styles.docStyle.Render(b.String())
}

func (m model) renderTitle() string {
	title := fmt.Sprintf("expensemon | %s", m.sessionState.String())
	if m.sessionState == overviewState || m.sessionState == monthsView {
		title = fmt.Sprintf("%s | %s", title, m.month.label(m.locale))
	}

	if loaded, pending := m.loadingState.allLoaded(); !loaded && m.activated {
		return m.styles.titleStyle.Render(title) + " " +
			m.styles.mutedStyle.Render(fmt.Sprintf("%s loading %s", m.loadingSpinner.View(), pending))
	}

	return m.styles.titleStyle.Render(title)
}

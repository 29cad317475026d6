package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rshep3087/expensemon/session"
	"github.com/Rshep3087/expensemon/transaction"
)

type (
	editRequestMsg struct {
		id string
	}

	deleteRequestMsg struct {
		t transaction.Transaction
	}
)

func (m model) newItemDelegate(keys *delegateKeyMap) list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.AdaptiveColor{Light: string(m.theme.Primary), Dark: string(m.theme.Primary)}).
		Foreground(lipgloss.AdaptiveColor{Light: string(m.theme.Primary), Dark: string(m.theme.Primary)}).
		Padding(0, 0, 0, 1)

	d.Styles.SelectedDesc = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: string(m.theme.Primary), Dark: string(m.theme.Primary)})

	d.UpdateFunc = func(msg tea.Msg, listModel *list.Model) tea.Cmd {
		keyMsg, ok := msg.(tea.KeyMsg)
		if !ok || listModel.FilterState() == list.Filtering {
			return nil
		}

		ti, ok := listModel.SelectedItem().(transactionItem)
		if !ok {
			return nil
		}

		switch {
		case key.Matches(keyMsg, keys.edit):
			return func() tea.Msg { return editRequestMsg{id: ti.t.ID} }
		case key.Matches(keyMsg, keys.remove):
			return func() tea.Msg { return deleteRequestMsg{t: ti.t} }
		}

		return nil
	}

	help := []key.Binding{keys.edit, keys.remove}

	d.ShortHelpFunc = func() []key.Binding {
		return help
	}

	d.FullHelpFunc = func() [][]key.Binding {
		return [][]key.Binding{help}
	}

	return d
}

type delegateKeyMap struct {
	edit   key.Binding
	remove key.Binding
}

func (d delegateKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		d.edit,
		d.remove,
	}
}

func (d delegateKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{
			d.edit,
			d.remove,
		},
	}
}

func newDelegateKeyMap() *delegateKeyMap {
	return &delegateKeyMap{
		edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

func (m model) handleEditRequest(msg editRequestMsg) (tea.Model, tea.Cmd) {
	return m, m.navigate(session.EditPath(msg.id))
}

func (m model) handleDeleteRequest(msg deleteRequestMsg) (tea.Model, tea.Cmd) {
	t := msg.t
	confirmed := false

	m.pendingDelete = &t
	m.confirmed = &confirmed
	m.deleteForm = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s (%s) from %s?", t.Category, t.ID, t.Date)).
			Affirmative("Delete").
			Negative("Cancel").
			Value(m.confirmed),
	))
	m.previousSessionState = m.sessionState
	m.sessionState = confirmDelete

	return m, m.deleteForm.Init()
}

func updateConfirmDelete(msg tea.Msg, m *model) (tea.Model, tea.Cmd) {
	form, cmd := m.deleteForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.deleteForm = f
	}

	switch m.deleteForm.State {
	case huh.StateCompleted:
		m.sessionState = transactions
		if !*m.confirmed || m.pendingDelete == nil {
			return m, nil
		}
		id := m.pendingDelete.ID
		m.pendingDelete = nil
		return m, m.deleteTransaction(id)

	case huh.StateAborted:
		m.sessionState = transactions
		m.pendingDelete = nil
		return m, nil
	}

	return m, cmd
}

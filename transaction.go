package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Rshep3087/expensemon/aggregate"
	"github.com/Rshep3087/expensemon/session"
	"github.com/Rshep3087/expensemon/transaction"
)

const maxNoteLength = 40

var titleCaser = cases.Title(language.English)

type transactionItem struct {
	t        transaction.Transaction
	currency string
}

func (t transactionItem) Title() string {
	return fmt.Sprintf("%s (%s)", t.t.Category, t.t.ID)
}

func (t transactionItem) Description() string {
	note := t.t.Note
	switch {
	case note == "":
		note = "no notes"
	case len(note) > maxNoteLength:
		note = note[:maxNoteLength] + "..."
	}

	return strings.Join([]string{
		t.t.Date.String(),
		titleCaser.String(string(t.t.Type)),
		aggregate.Display(t.t.Signed(), t.currency),
		note,
	}, " | ")
}

// sortByDateDesc orders ts most recent first, keeping the remote order for equal dates.
func sortByDateDesc(ts []transaction.Transaction) {
	slices.SortStableFunc(ts, func(a, b transaction.Transaction) int {
		return b.Date.Compare(a.Date)
	})
}

func (t transactionItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s", t.t.Category, t.t.Type, t.t.Note)
}

type transactionListKeyMap struct {
	overview       key.Binding
	newTransaction key.Binding
	suggest        key.Binding
}

func newTransactionListKeyMap() *transactionListKeyMap {
	return &transactionListKeyMap{
		overview: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "overview"),
		),
		newTransaction: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new transaction"),
		),
		suggest: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "suggest category"),
		),
	}
}

func updateTransactions(msg tea.Msg, m model) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.transactions.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.transactionsListKeys.newTransaction):
			return m, m.navigate(session.PathNewTransaction)

		case key.Matches(msg, m.transactionsListKeys.suggest):
			ti, ok := m.transactions.SelectedItem().(transactionItem)
			if !ok {
				return m, nil
			}
			return m, m.RecommendCategoryCmd(ti.t)
		}
	}

	var cmd tea.Cmd
	m.transactions, cmd = m.transactions.Update(msg)

	return m, cmd
}

func transactionsView(m model) string {
	return m.transactions.View()
}

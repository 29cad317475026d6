package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rshep3087/expensemon/aggregate"
	"github.com/Rshep3087/expensemon/transaction"
	"github.com/Rshep3087/expensemon/view"
)

// Panel messages published by the coordinator.
type (
	transactionsPanelMsg struct {
		panel view.Panel[[]transaction.Transaction]
	}

	categoriesPanelMsg struct {
		panel view.Panel[*aggregate.CategoryTotals]
	}

	seriesPanelMsg struct {
		panel view.Panel[aggregate.MonthlySeries]
	}

	balancePanelMsg struct {
		panel view.Panel[aggregate.Summary]
	}
)

// programRenderer forwards coordinator updates into the bubbletea event loop.
// The coordinator calls it with its lock held, so Update must never call the
// coordinator synchronously; coordinator calls belong in tea.Cmds.
type programRenderer struct {
	send func(tea.Msg)
}

func (r programRenderer) RenderTransactions(p view.Panel[[]transaction.Transaction]) {
	r.send(transactionsPanelMsg{panel: p})
}

func (r programRenderer) RenderCategories(p view.Panel[*aggregate.CategoryTotals]) {
	r.send(categoriesPanelMsg{panel: p})
}

func (r programRenderer) RenderSeries(p view.Panel[aggregate.MonthlySeries]) {
	r.send(seriesPanelMsg{panel: p})
}

func (r programRenderer) RenderBalance(p view.Panel[aggregate.Summary]) {
	r.send(balancePanelMsg{panel: p})
}

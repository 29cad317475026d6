// Package monthly renders the monthly income and expense series as a
// selectable table. Selecting a row narrows the dashboard to that month.
package monthly

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"github.com/Rshep3087/expensemon/aggregate"
)

type Colors struct {
	Primary string
}

type Model struct {
	months   table.Model
	keys     []aggregate.MonthKey
	locale   language.Tag
	currency string
}

func New(colors Colors) Model {
	months := table.New(
		table.WithColumns([]table.Column{
			{Title: "Month", Width: 12},
			{Title: "Income", Width: 15},
			{Title: "Expense", Width: 15},
			{Title: "Net", Width: 15},
		}),
	)

	tableStyle := table.DefaultStyles()
	tableStyle.Selected = tableStyle.Selected.
		Foreground(lipgloss.Color(colors.Primary))

	months.SetStyles(tableStyle)

	return Model{
		months:   months,
		locale:   aggregate.CanonicalLocale,
		currency: aggregate.DefaultCurrency,
	}
}

// SetFormat sets the locale used for month labels and the display currency.
func (m *Model) SetFormat(locale language.Tag, currency string) {
	m.locale = locale
	m.currency = currency
}

func (m *Model) SetFocus(focus bool) {
	if focus {
		m.months.Focus()
	} else {
		m.months.Blur()
	}
}

func (m *Model) SetSize(width, height int) {
	m.months.SetHeight(height)
	m.months.SetWidth(width)
}

// SetSeries replaces the rows. The series order is kept as given.
func (m *Model) SetSeries(series aggregate.MonthlySeries) {
	rows := make([]table.Row, 0, len(series))
	for _, b := range series {
		rows = append(rows, table.Row{
			b.Month.Label(m.locale),
			aggregate.Display(b.Income, m.currency),
			aggregate.Display(b.Expense, m.currency),
			aggregate.Display(b.Net(), m.currency),
		})
	}

	m.keys = series.Months()
	m.months.SetRows(rows)
	if m.months.Cursor() >= len(rows) {
		m.months.SetCursor(max(len(rows)-1, 0))
	}
}

// Selected returns the month under the cursor.
func (m *Model) Selected() (aggregate.MonthKey, bool) {
	i := m.months.Cursor()
	if i < 0 || i >= len(m.keys) {
		return aggregate.MonthKey{}, false
	}
	return m.keys[i], true
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.months, cmd = m.months.Update(msg)
	return *m, cmd
}

func (m *Model) View() string {
	return m.months.View()
}

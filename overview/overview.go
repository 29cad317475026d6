package overview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/Rshep3087/expensemon/aggregate"
	"github.com/Rshep3087/expensemon/view"
)

var hundred = decimal.NewFromInt(100)

// Model defines the state for the dashboard widget.
type Model struct {
	Styles     Styles
	Viewport   viewport.Model
	currency   string
	locale     language.Tag
	balance    view.Panel[aggregate.Summary]
	categories view.Panel[*aggregate.CategoryTotals]
	series     view.Panel[aggregate.MonthlySeries]
	month      *aggregate.MonthKey
	mismatch   error
}

type Styles struct {
	IncomeStyle  lipgloss.Style
	SpentStyle   lipgloss.Style
	MutedStyle   lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	SummaryStyle lipgloss.Style
	PanelStyle   lipgloss.Style
}

func defaultStyles() Styles {
	return Styles{
		IncomeStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00")),
		SpentStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")),
		MutedStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7f7d78")),
		ErrorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")).Bold(true),
		WarningStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#e05951")),

		SummaryStyle: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2),
		PanelStyle:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2),
	}
}

type Option func(*Model)

func WithCurrency(currency string) Option {
	return func(m *Model) {
		m.currency = currency
	}
}

func WithLocale(locale language.Tag) Option {
	return func(m *Model) {
		m.locale = locale
	}
}

func WithStyles(s Styles) Option {
	return func(m *Model) {
		m.Styles = s
	}
}

func New(opts ...Option) Model {
	m := Model{
		Styles:     defaultStyles(),
		Viewport:   viewport.New(0, 20),
		currency:   aggregate.DefaultCurrency,
		locale:     aggregate.CanonicalLocale,
		balance:    view.LoadingPanel[aggregate.Summary](),
		categories: view.LoadingPanel[*aggregate.CategoryTotals](),
		series:     view.LoadingPanel[aggregate.MonthlySeries](),
	}

	for _, opt := range opts {
		opt(&m)
	}

	m.UpdateViewport()

	return m
}

func (m *Model) SetBalance(p view.Panel[aggregate.Summary]) {
	m.balance = p
	m.UpdateViewport()
}

func (m *Model) SetCategories(p view.Panel[*aggregate.CategoryTotals]) {
	m.categories = p
	m.UpdateViewport()
}

func (m *Model) SetSeries(p view.Panel[aggregate.MonthlySeries]) {
	m.series = p
	m.UpdateViewport()
}

// SetMonth records the selected month for the header. Nil means all months.
func (m *Model) SetMonth(k *aggregate.MonthKey) {
	m.month = k
	m.UpdateViewport()
}

// SetMismatch shows a warning when the local and remote balances disagree.
func (m *Model) SetMismatch(err error) {
	m.mismatch = err
	m.UpdateViewport()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.Viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.Viewport.Width = width
	m.Viewport.Height = height
}

func (m *Model) UpdateViewport() {
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top,
		m.summaryView(),
		m.categoriesView(),
		m.seriesView(),
	)

	m.Viewport.SetContent(
		lipgloss.JoinVertical(lipgloss.Top,
			m.headerView(),
			mainContent,
		),
	)
}

func (m *Model) headerView() string {
	header := "Overview | all months"
	if m.month != nil {
		header = "Overview | " + m.month.Label(m.locale)
	}

	if m.mismatch != nil {
		header += "\n" + m.Styles.WarningStyle.Render("Balance does not match the transaction list: "+m.mismatch.Error())
	}

	return header
}

func (m Model) display(d decimal.Decimal) string {
	return aggregate.Display(d, m.currency)
}

// placeholder renders non-loaded panel states, returning false when the panel has data.
func (m Model) placeholder(state view.State, err error) (string, bool) {
	switch state {
	case view.Loading:
		return m.Styles.MutedStyle.Render("Loading..."), true
	case view.Failed:
		return m.Styles.ErrorStyle.Render(fmt.Sprintf("Failed: %v", err)), true
	}
	return "", false
}

func (m Model) summaryView() string {
	if s, ok := m.placeholder(m.balance.State, m.balance.Err); ok {
		return m.Styles.SummaryStyle.Render(s)
	}

	s := m.balance.Data
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Income: %s\n", m.Styles.IncomeStyle.Render(m.display(s.TotalIncome))))
	b.WriteString(fmt.Sprintf("Spent: %s\n", m.Styles.SpentStyle.Render(m.display(s.TotalExpense))))
	if s.Balance.IsNegative() {
		b.WriteString(fmt.Sprintf("Balance: %s", m.Styles.SpentStyle.Render(m.display(s.Balance))))
	} else {
		b.WriteString(fmt.Sprintf("Balance: %s", m.Styles.IncomeStyle.Render(m.display(s.Balance))))
	}

	return m.Styles.SummaryStyle.Render(b.String())
}

// categoryRows lists categories in first-seen order with their share of the total.
func (m Model) categoryRows(totals *aggregate.CategoryTotals) []table.Row {
	sum := totals.Sum()
	rows := make([]table.Row, 0, totals.Len())
	for category, total := range totals.All() {
		share := "-"
		if !sum.IsZero() {
			share = total.Div(sum).Mul(hundred).StringFixed(2) + "%"
		}
		rows = append(rows, table.Row{category, m.display(total), share})
	}
	return rows
}

func (m Model) categoriesView() string {
	title := lipgloss.NewStyle().Bold(true).Render("By Category")
	if s, ok := m.placeholder(m.categories.State, m.categories.Err); ok {
		return m.Styles.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Top, title, s))
	}

	rows := m.categoryRows(m.categories.Data)
	return m.Styles.PanelStyle.Render(
		lipgloss.JoinVertical(lipgloss.Top,
			title,
			table.New(
				table.WithColumns([]table.Column{
					{Title: "Category", Width: 20},
					{Title: "Total", Width: 15},
					{Title: "% of Total", Width: 10},
				}),
				table.WithRows(rows),
				table.WithHeight(len(rows)+1),
			).View(),
		),
	)
}

func (m Model) seriesRows(series aggregate.MonthlySeries) []table.Row {
	rows := make([]table.Row, 0, len(series))
	for _, b := range series {
		rows = append(rows, table.Row{
			b.Month.Label(m.locale),
			m.display(b.Income),
			m.display(b.Expense),
			m.display(b.Net()),
		})
	}
	return rows
}

func (m Model) seriesView() string {
	title := lipgloss.NewStyle().Bold(true).Render("By Month")
	if s, ok := m.placeholder(m.series.State, m.series.Err); ok {
		return m.Styles.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Top, title, s))
	}

	rows := m.seriesRows(m.series.Data)
	return m.Styles.PanelStyle.Render(
		lipgloss.JoinVertical(lipgloss.Top,
			title,
			table.New(
				table.WithColumns([]table.Column{
					{Title: "Month", Width: 12},
					{Title: "Income", Width: 14},
					{Title: "Expense", Width: 14},
					{Title: "Net", Width: 14},
				}),
				table.WithRows(rows),
				table.WithHeight(len(rows)+1),
			).View(),
		),
	)
}

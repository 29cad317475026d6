package overview

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/carlmjohnson/be"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/Rshep3087/expensemon/aggregate"
	"github.com/Rshep3087/expensemon/transaction"
	"github.com/Rshep3087/expensemon/view"
)

func workedExample() []transaction.Transaction {
	return []transaction.Transaction{
		{ID: "1", Amount: decimal.NewFromInt(100), Category: "Food", Type: transaction.Expense,
			Date: transaction.Date{Year: 2025, Month: time.January, Day: 10}},
		{ID: "2", Amount: decimal.NewFromInt(500), Category: "Salary", Type: transaction.Income,
			Date: transaction.Date{Year: 2025, Month: time.January, Day: 15}},
		{ID: "3", Amount: decimal.NewFromInt(50), Category: "Food", Type: transaction.Expense,
			Date: transaction.Date{Year: 2025, Month: time.February, Day: 3}},
	}
}

func TestNewStartsLoading(t *testing.T) {
	m := New()
	m.SetSize(200, 40)

	be.Equal(t, view.Loading, m.balance.State)
	be.Equal(t, view.Loading, m.categories.State)
	be.Equal(t, view.Loading, m.series.State)
	be.True(t, strings.Contains(m.summaryView(), "Loading..."))
}

func TestCategoryRows(t *testing.T) {
	result := aggregate.Aggregate(workedExample())
	m := New()

	rows := m.categoryRows(result.Categories)

	be.Equal(t, 2, len(rows))
	be.Equal(t, "Food", rows[0][0])
	be.Equal(t, "$150.00", rows[0][1])
	be.Equal(t, "23.08%", rows[0][2])
	be.Equal(t, "Salary", rows[1][0])
	be.Equal(t, "$500.00", rows[1][1])
	be.Equal(t, "76.92%", rows[1][2])
}

func TestCategoryRowsZeroSum(t *testing.T) {
	result := aggregate.Aggregate([]transaction.Transaction{
		{ID: "1", Amount: decimal.Zero, Category: "Misc", Type: transaction.Expense,
			Date: transaction.Date{Year: 2025, Month: time.March, Day: 1}},
	})
	m := New()

	rows := m.categoryRows(result.Categories)

	be.Equal(t, 1, len(rows))
	be.Equal(t, "-", rows[0][2])
}

func TestSeriesRows(t *testing.T) {
	tests := []struct {
		name     string
		locale   language.Tag
		currency string
		expected [][]string
	}{
		{
			name:     "english dollars",
			locale:   language.English,
			currency: "USD",
			expected: [][]string{
				{"Jan 2025", "$500.00", "$100.00", "$400.00"},
				{"Feb 2025", "$0.00", "$50.00", "-$50.00"},
			},
		},
		{
			name:     "spanish labels",
			locale:   language.Spanish,
			currency: "USD",
			expected: [][]string{
				{aggregate.MonthKey{Year: 2025, Month: time.January}.Label(language.Spanish), "$500.00", "$100.00", "$400.00"},
				{aggregate.MonthKey{Year: 2025, Month: time.February}.Label(language.Spanish), "$0.00", "$50.00", "-$50.00"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(WithLocale(tt.locale), WithCurrency(tt.currency))
			series := aggregate.Aggregate(workedExample()).Series

			rows := m.seriesRows(series)

			be.Equal(t, len(tt.expected), len(rows))
			for i, want := range tt.expected {
				for j := range want {
					be.Equal(t, want[j], rows[i][j])
				}
			}
		})
	}
}

func TestSummaryView(t *testing.T) {
	tests := []struct {
		name     string
		panel    view.Panel[aggregate.Summary]
		contains []string
	}{
		{
			name:     "loaded",
			panel:    view.LoadedPanel(aggregate.NewSummary(decimal.NewFromInt(500), decimal.NewFromInt(150))),
			contains: []string{"$500.00", "$150.00", "$350.00"},
		},
		{
			name:     "failed",
			panel:    view.FailedPanel[aggregate.Summary](errors.New("remote down")),
			contains: []string{"Failed", "remote down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.SetBalance(tt.panel)

			out := m.summaryView()
			for _, s := range tt.contains {
				be.True(t, strings.Contains(out, s))
			}
		})
	}
}

func TestHeaderView(t *testing.T) {
	m := New()
	be.Equal(t, "Overview | all months", m.headerView())

	k := aggregate.MonthKey{Year: 2025, Month: time.February}
	m.SetMonth(&k)
	be.Equal(t, "Overview | Feb 2025", m.headerView())

	m.SetMismatch(aggregate.ErrMismatch)
	be.True(t, strings.Contains(m.headerView(), "does not match"))
}

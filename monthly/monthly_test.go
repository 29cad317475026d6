package monthly

import (
	"strings"
	"testing"
	"time"

	"github.com/carlmjohnson/be"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/Rshep3087/expensemon/aggregate"
)

func series() aggregate.MonthlySeries {
	return aggregate.MonthlySeries{
		{
			Month:   aggregate.MonthKey{Year: 2025, Month: time.January},
			Income:  decimal.NewFromInt(500),
			Expense: decimal.NewFromInt(100),
		},
		{
			Month:   aggregate.MonthKey{Year: 2025, Month: time.February},
			Income:  decimal.Zero,
			Expense: decimal.NewFromInt(50),
		},
	}
}

func TestNew(t *testing.T) {
	model := New(Colors{Primary: "#ff0000"})

	columns := model.months.Columns()
	be.Equal(t, 4, len(columns))
	be.Equal(t, "Month", columns[0].Title)
	be.Equal(t, "Income", columns[1].Title)
	be.Equal(t, "Expense", columns[2].Title)
	be.Equal(t, "Net", columns[3].Title)
}

func TestSetSeries(t *testing.T) {
	tests := []struct {
		name   string
		series aggregate.MonthlySeries
	}{
		{
			name:   "empty series",
			series: aggregate.MonthlySeries{},
		},
		{
			name:   "two months",
			series: series(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := New(Colors{Primary: "#ff0000"})
			model.SetSeries(tt.series)

			be.Equal(t, len(tt.series), len(model.months.Rows()))
			be.Equal(t, len(tt.series), len(model.keys))
		})
	}
}

func TestSelected(t *testing.T) {
	model := New(Colors{Primary: "#ff0000"})

	_, ok := model.Selected()
	be.False(t, ok)

	model.SetSeries(series())
	model.SetFocus(true)
	model.SetSize(80, 10)

	k, ok := model.Selected()
	be.True(t, ok)
	be.Equal(t, "2025-01", k.String())

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	k, ok = model.Selected()
	be.True(t, ok)
	be.Equal(t, "2025-02", k.String())
}

func TestSetSeriesClampsCursor(t *testing.T) {
	model := New(Colors{Primary: "#ff0000"})
	model.SetFocus(true)
	model.SetSize(80, 10)
	model.SetSeries(series())
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})

	model.SetSeries(series()[:1])

	k, ok := model.Selected()
	be.True(t, ok)
	be.Equal(t, "2025-01", k.String())
}

func TestView(t *testing.T) {
	model := New(Colors{Primary: "#ff0000"})
	model.SetFormat(language.French, "EUR")
	model.SetSize(80, 10)
	model.SetSeries(series())

	label := aggregate.MonthKey{Year: 2025, Month: time.January}.Label(language.French)
	be.True(t, label != "Jan 2025")

	view := model.View()
	if !strings.Contains(view, label) {
		t.Errorf("Expected view to contain %q, got: %s", label, view)
	}
}

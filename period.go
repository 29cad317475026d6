package main

import (
	"golang.org/x/text/language"

	"github.com/Rshep3087/expensemon/aggregate"
	"github.com/Rshep3087/expensemon/transaction"
)

// monthSelector is the month the dashboard series is narrowed to.
// The zero value selects all months.
type monthSelector struct {
	month    aggregate.MonthKey
	selected bool
}

func (p monthSelector) label(locale language.Tag) string {
	if !p.selected {
		return "all months"
	}
	return p.month.Label(locale)
}

func (p monthSelector) key() *aggregate.MonthKey {
	if !p.selected {
		return nil
	}
	k := p.month
	return &k
}

// next moves one month forward. From "all months" it starts at fallback.
func (p monthSelector) next(fallback aggregate.MonthKey) monthSelector {
	if !p.selected {
		return monthSelector{month: fallback, selected: true}
	}
	return monthSelector{month: p.month.Next(), selected: true}
}

// previous moves one month back. From "all months" it starts at fallback.
func (p monthSelector) previous(fallback aggregate.MonthKey) monthSelector {
	if !p.selected {
		return monthSelector{month: fallback, selected: true}
	}
	return monthSelector{month: p.month.Prev(), selected: true}
}

// latestMonth returns the month of the most recent transaction, or the
// current month when there are none.
func latestMonth(ts []transaction.Transaction) aggregate.MonthKey {
	if len(ts) == 0 {
		return aggregate.CurrentMonth()
	}

	latest := aggregate.MonthOf(ts[0].Date)
	for _, t := range ts[1:] {
		if k := aggregate.MonthOf(t.Date); k.Compare(latest) > 0 {
			latest = k
		}
	}
	return latest
}

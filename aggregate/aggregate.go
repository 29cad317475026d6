// Package aggregate derives category totals, a monthly income/expense series
// and a balance summary from a list of transactions.
package aggregate

import (
	"iter"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Rshep3087/expensemon/transaction"
)

// CategoryTotals maps category labels to the sum of their amounts.
// Iteration follows the order in which categories were first seen.
type CategoryTotals struct {
	keys   []string
	totals map[string]decimal.Decimal
}

func newCategoryTotals() *CategoryTotals {
	return &CategoryTotals{totals: make(map[string]decimal.Decimal)}
}

func (c *CategoryTotals) add(category string, amount decimal.Decimal) {
	cur, ok := c.totals[category]
	if !ok {
		c.keys = append(c.keys, category)
	}
	c.totals[category] = cur.Add(amount)
}

// Get returns the total for a category.
func (c *CategoryTotals) Get(category string) (decimal.Decimal, bool) {
	if c == nil {
		return decimal.Zero, false
	}
	d, ok := c.totals[category]
	return d, ok
}

func (c *CategoryTotals) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the categories in first-seen order.
func (c *CategoryTotals) Keys() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.keys)
}

// All iterates categories and totals in first-seen order.
func (c *CategoryTotals) All() iter.Seq2[string, decimal.Decimal] {
	return func(yield func(string, decimal.Decimal) bool) {
		if c == nil {
			return
		}
		for _, k := range c.keys {
			if !yield(k, c.totals[k]) {
				return
			}
		}
	}
}

// Sum returns the total over all categories.
func (c *CategoryTotals) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range c.All() {
		sum = sum.Add(d)
	}
	return sum
}

// Bucket holds one month of the series.
type Bucket struct {
	Month   MonthKey
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net is income minus expense for the month.
func (b Bucket) Net() decimal.Decimal { return b.Income.Sub(b.Expense) }

// Order is the chronological direction a consumer wants the series in.
type Order int

const (
	Ascending Order = iota
	Descending
)

// ParseOrder accepts "asc" or "desc". Anything else is Ascending.
func ParseOrder(s string) Order {
	if s == "desc" {
		return Descending
	}
	return Ascending
}

// MonthlySeries is a list of buckets sorted ascending by month.
type MonthlySeries []Bucket

// Ordered returns a copy of the series in the requested direction.
func (s MonthlySeries) Ordered(o Order) MonthlySeries {
	out := slices.Clone(s)
	if o == Descending {
		slices.Reverse(out)
	}
	return out
}

// Months returns the keys present in the series, in series order.
func (s MonthlySeries) Months() []MonthKey {
	keys := make([]MonthKey, len(s))
	for i, b := range s {
		keys[i] = b.Month
	}
	return keys
}

// Filter keeps only the bucket whose key equals k.
func (s MonthlySeries) Filter(k MonthKey) MonthlySeries {
	out := MonthlySeries{}
	for _, b := range s {
		if b.Month == k {
			out = append(out, b)
		}
	}
	return out
}

// Result is the output of Aggregate.
type Result struct {
	Categories *CategoryTotals
	Series     MonthlySeries
}

type options struct {
	month    MonthKey
	hasMonth bool
}

// Option configures Aggregate.
type Option func(*options)

// WithMonth restricts the monthly series to a single month. Category totals
// are not affected.
func WithMonth(k MonthKey) Option {
	return func(o *options) {
		o.month = k
		o.hasMonth = true
	}
}

// Aggregate computes category totals and the monthly series in one pass.
func Aggregate(ts []transaction.Transaction, opts ...Option) Result {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	categories := newCategoryTotals()
	buckets := make(map[MonthKey]*Bucket)

	for _, t := range ts {
		categories.add(t.Category, t.Amount)

		key := MonthOf(t.Date)
		b, ok := buckets[key]
		if !ok {
			b = &Bucket{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
			buckets[key] = b
		}
		switch t.Type {
		case transaction.Income:
			b.Income = b.Income.Add(t.Amount)
		case transaction.Expense:
			b.Expense = b.Expense.Add(t.Amount)
		}
	}

	series := make(MonthlySeries, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, *b)
	}
	slices.SortFunc(series, func(a, b Bucket) int { return a.Month.Compare(b.Month) })
	if o.hasMonth {
		series = series.Filter(o.month)
	}

	return Result{Categories: categories, Series: series}
}

package aggregate

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Rshep3087/expensemon/transaction"
)

// ErrMismatch is returned by Reconcile when two summaries disagree.
var ErrMismatch = errors.New("balance summaries do not match")

// Summary is the overall balance. Balance is always TotalIncome - TotalExpense.
type Summary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

// NewSummary builds a summary with the balance derived from the totals.
func NewSummary(income, expense decimal.Decimal) Summary {
	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Sub(expense),
	}
}

// Consistent reports whether Balance equals TotalIncome - TotalExpense.
func (s Summary) Consistent() bool {
	return s.Balance.Equal(s.TotalIncome.Sub(s.TotalExpense))
}

// Equal compares by value, so 1.50 equals 1.5.
func (s Summary) Equal(o Summary) bool {
	return s.TotalIncome.Equal(o.TotalIncome) &&
		s.TotalExpense.Equal(o.TotalExpense) &&
		s.Balance.Equal(o.Balance)
}

// Summarize computes the summary over every transaction.
func Summarize(ts []transaction.Transaction) Summary {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range ts {
		switch t.Type {
		case transaction.Income:
			income = income.Add(t.Amount)
		case transaction.Expense:
			expense = expense.Add(t.Amount)
		}
	}
	return NewSummary(income, expense)
}

// Reconcile checks a locally computed summary against the remote one.
func Reconcile(local, remote Summary) error {
	if local.Equal(remote) {
		return nil
	}
	return fmt.Errorf("%w: local income=%s expense=%s balance=%s, remote income=%s expense=%s balance=%s",
		ErrMismatch,
		local.TotalIncome, local.TotalExpense, local.Balance,
		remote.TotalIncome, remote.TotalExpense, remote.Balance,
	)
}

package main

import (
	"errors"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/Rshep3087/expensemon/session"
	"github.com/Rshep3087/expensemon/transaction"
)

// newCategoryOption is the select value that reveals the free text category input.
const newCategoryOption = "+new"

// transactionFormValues backs the create and edit form.
type transactionFormValues struct {
	kind        string
	amount      string
	category    string
	newCategory string
	date        string
	note        string
}

func formValuesFor(t *transaction.Transaction) *transactionFormValues {
	if t == nil {
		return &transactionFormValues{
			kind: string(transaction.Expense),
			date: transaction.Today().String(),
		}
	}

	return &transactionFormValues{
		kind:     string(t.Type),
		amount:   t.Amount.String(),
		category: t.Category,
		date:     t.Date.String(),
		note:     t.Note,
	}
}

func (v transactionFormValues) categoryValue() string {
	if v.category == newCategoryOption {
		return strings.TrimSpace(v.newCategory)
	}
	return v.category
}

func (v transactionFormValues) input() transaction.Input {
	return transaction.Input{
		Amount:   strings.TrimSpace(v.amount),
		Category: v.categoryValue(),
		Type:     v.kind,
		Date:     strings.TrimSpace(v.date),
		Note:     v.note,
	}
}

// patchInput returns only the fields that differ from orig.
func (v transactionFormValues) patchInput(orig transaction.Transaction) transaction.PatchInput {
	var in transaction.PatchInput

	amount := strings.TrimSpace(v.amount)
	if d, err := decimal.NewFromString(amount); err != nil || !d.Equal(orig.Amount) {
		in.Amount = &amount
	}
	if c := v.categoryValue(); c != orig.Category {
		in.Category = &c
	}
	if v.kind != string(orig.Type) {
		kind := v.kind
		in.Type = &kind
	}
	if date := strings.TrimSpace(v.date); date != orig.Date.String() {
		in.Date = &date
	}
	if v.note != orig.Note {
		note := v.note
		in.Note = &note
	}

	return in
}

// categoryOptions lists known categories alphabetically, followed by the
// option to type a new one.
func categoryOptions(known []string, ts []transaction.Transaction, current string) []huh.Option[string] {
	seen := make(map[string]bool, len(known)+1)
	var names []string
	add := func(c string) {
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		names = append(names, c)
	}

	for _, c := range known {
		add(c)
	}
	for _, t := range ts {
		add(t.Category)
	}
	add(current)
	slices.Sort(names)

	opts := make([]huh.Option[string], 0, len(names)+1)
	for _, c := range names {
		opts = append(opts, huh.NewOption(c, c))
	}
	return append(opts, huh.NewOption("+ new category", newCategoryOption))
}

func validateAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("amount is required")
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("amount must be a valid number")
	}
	if d.IsNegative() {
		return errors.New("amount must not be negative")
	}
	return nil
}

func validateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("date is required")
	}
	if _, err := transaction.ParseDate(strings.TrimSpace(s)); err != nil {
		return errors.New("date must be in YYYY-MM-DD format")
	}
	return nil
}

func newTransactionForm(v *transactionFormValues, categories []huh.Option[string]) *huh.Form {
	if v.category == "" && len(categories) > 0 {
		v.category = categories[0].Value
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Expense", string(transaction.Expense)),
					huh.NewOption("Income", string(transaction.Income)),
				).
				Value(&v.kind),

			huh.NewInput().
				Title("Amount").
				Description("Always positive; the type decides the direction").
				Placeholder("12.50").
				Value(&v.amount).
				Validate(validateAmount),

			huh.NewInput().
				Title("Date").
				Description("Transaction date (YYYY-MM-DD)").
				Placeholder("YYYY-MM-DD").
				Value(&v.date).
				Validate(validateDate),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Category").
				Options(categories...).
				Value(&v.category),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("New category").
				Value(&v.newCategory).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("category is required")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return v.category != newCategoryOption }),
		huh.NewGroup(
			huh.NewText().
				Title("Note (Optional)").
				Placeholder("Enter a note...").
				Value(&v.note),
		),
	)
}

// openTransactionForm shows the form for a new transaction, or for editing t.
func (m *model) openTransactionForm(t *transaction.Transaction) tea.Cmd {
	m.editing = t
	m.formValues = formValuesFor(t)

	current := ""
	if t != nil {
		current = t.Category
	}

	m.transactionForm = newTransactionForm(m.formValues, categoryOptions(m.categories, m.snapshot, current))
	m.sessionState = transactionForm

	return tea.Batch(m.transactionForm.Init(), tea.WindowSize())
}

func updateTransactionForm(msg tea.Msg, m *model) (tea.Model, tea.Cmd) {
	form, cmd := m.transactionForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.transactionForm = f
	}

	if m.transactionForm.State != huh.StateCompleted {
		return m, cmd
	}

	nav := m.navigate(session.PathTransactions)

	if m.editing == nil {
		n, err := m.formValues.input().Validate()
		if err != nil {
			log.Debug("transaction form invalid", "error", err)
			return m, tea.Batch(nav, m.transactions.NewStatusMessage(m.styles.errorStyle.Render(err.Error())))
		}
		return m, tea.Batch(nav, m.createTransaction(n))
	}

	p, err := m.formValues.patchInput(*m.editing).Validate()
	if err != nil {
		log.Debug("transaction edit invalid", "error", err)
		return m, tea.Batch(nav, m.transactions.NewStatusMessage(m.styles.errorStyle.Render(err.Error())))
	}
	return m, tea.Batch(nav, m.updateTransaction(m.editing.ID, p))
}

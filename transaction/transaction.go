// Package transaction holds the income/expense record exchanged with the
// remote service, the filter-to-query builder and the boundary validation
// applied before anything is sent or aggregated.
package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Type is the direction of a transaction.
type Type string

const (
	Income  Type = "income"
	Expense Type = "expense"
)

// ErrUnknownType is returned when a type is neither income nor expense.
var ErrUnknownType = errors.New("unknown transaction type")

// ErrNegativeAmount is returned when an amount is below zero.
var ErrNegativeAmount = errors.New("amount must not be negative")

// ParseType returns the Type for s.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Income, Expense:
		return Type(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

func (t Type) String() string { return string(t) }

// UnmarshalJSON rejects anything outside the two-valued enum.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Transaction is a single income or expense record.
type Transaction struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Type     Type            `json:"type"`
	Date     Date            `json:"date"`
	Note     string          `json:"note"`
}

// UnmarshalJSON decodes a remote record, rejecting negative amounts and unknown types.
// The amount may arrive as a JSON number or a string.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type wire Transaction
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type == "" {
		return fmt.Errorf("transaction %q: %w: missing", w.ID, ErrUnknownType)
	}
	if w.Amount.IsNegative() {
		return fmt.Errorf("transaction %q: %w", w.ID, ErrNegativeAmount)
	}
	*t = Transaction(w)
	return nil
}

// MarshalJSON writes the amount as a JSON number without going through float64.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       string      `json:"id"`
		Amount   json.Number `json:"amount"`
		Category string      `json:"category"`
		Type     Type        `json:"type"`
		Date     Date        `json:"date"`
		Note     string      `json:"note"`
	}{
		ID:       t.ID,
		Amount:   json.Number(t.Amount.String()),
		Category: t.Category,
		Type:     t.Type,
		Date:     t.Date,
		Note:     t.Note,
	})
}

// Signed returns the amount with expenses negated.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// New is a transaction that has not been created remotely yet.
type New struct {
	Amount   decimal.Decimal
	Category string
	Type     Type
	Date     Date
	Note     string
}

func (n New) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   json.Number `json:"amount"`
		Category string      `json:"category"`
		Type     Type        `json:"type"`
		Date     Date        `json:"date"`
		Note     string      `json:"note"`
	}{
		Amount:   json.Number(n.Amount.String()),
		Category: n.Category,
		Type:     n.Type,
		Date:     n.Date,
		Note:     n.Note,
	})
}

// Patch is a partial update. Nil fields are left untouched remotely.
type Patch struct {
	Amount   *decimal.Decimal
	Category *string
	Type     *Type
	Date     *Date
	Note     *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Amount == nil && p.Category == nil && p.Type == nil && p.Date == nil && p.Note == nil
}

func (p Patch) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, 5)
	if p.Amount != nil {
		body["amount"] = json.Number(p.Amount.String())
	}
	if p.Category != nil {
		body["category"] = *p.Category
	}
	if p.Type != nil {
		body["type"] = *p.Type
	}
	if p.Date != nil {
		body["date"] = *p.Date
	}
	if p.Note != nil {
		body["note"] = *p.Note
	}
	return json.Marshal(body)
}

// Date is a calendar date without time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// ParseDate parses YYYY-MM-DD. A trailing time part (2025-01-05T00:00:00Z) is ignored.
func ParseDate(s string) (Date, error) {
	if len(s) > len(dateLayout) && s[len(dateLayout)] == 'T' {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the local calendar date.
func Today() Date { return DateOf(time.Now()) }

func (d Date) String() string { return d.Time().Format(dateLayout) }

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time { return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int { return d.Time().Compare(o.Time()) }

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

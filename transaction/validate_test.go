package transaction

import (
	"strings"
	"testing"
	"time"

	"github.com/carlmjohnson/be"

	"github.com/Rshep3087/expensemon/apperr"
)

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name      string
		input     Input
		wantErr   string
		wantCents int64
	}{
		{
			name:      "valid expense",
			input:     Input{Amount: "12.34", Category: "Food", Type: "expense", Date: "2025-01-05", Note: "lunch"},
			wantCents: 1234,
		},
		{
			name:      "zero amount allowed",
			input:     Input{Amount: "0", Category: "Food", Type: "income", Date: "2025-01-05"},
			wantCents: 0,
		},
		{
			name:    "negative amount",
			input:   Input{Amount: "-1", Category: "Food", Type: "expense", Date: "2025-01-05"},
			wantErr: "amount must be a non-negative decimal",
		},
		{
			name:    "not a number",
			input:   Input{Amount: "ten", Category: "Food", Type: "expense", Date: "2025-01-05"},
			wantErr: "amount must be a non-negative decimal",
		},
		{
			name:    "missing category",
			input:   Input{Amount: "1", Type: "expense", Date: "2025-01-05"},
			wantErr: "category is required",
		},
		{
			name:    "bad type",
			input:   Input{Amount: "1", Category: "Food", Type: "refund", Date: "2025-01-05"},
			wantErr: "type must be income or expense",
		},
		{
			name:    "bad date",
			input:   Input{Amount: "1", Category: "Food", Type: "expense", Date: "5 Jan 2025"},
			wantErr: "date must be a date (YYYY-MM-DD)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Validate()
			if tt.wantErr != "" {
				be.True(t, apperr.Is(err, apperr.ValidationFailure))
				be.True(t, strings.Contains(err.Error(), tt.wantErr))
				return
			}
			be.NilErr(t, err)
			be.Equal(t, tt.wantCents, got.Amount.Shift(2).IntPart())
			be.Equal(t, tt.input.Category, got.Category)
			be.Equal(t, Type(tt.input.Type), got.Type)
			be.Equal(t, Date{Year: 2025, Month: time.January, Day: 5}, got.Date)
		})
	}
}

func TestPatchInputValidate(t *testing.T) {
	amount := "9.99"
	typ := "income"
	empty := ""
	bad := "nope"

	p, err := PatchInput{Amount: &amount, Type: &typ}.Validate()
	be.NilErr(t, err)
	be.Equal(t, "9.99", p.Amount.String())
	be.Equal(t, Income, *p.Type)
	be.Zero(t, p.Category)

	_, err = PatchInput{}.Validate()
	be.True(t, apperr.Is(err, apperr.ValidationFailure))
	be.True(t, strings.Contains(err.Error(), "nothing to update"))

	_, err = PatchInput{Category: &empty}.Validate()
	be.True(t, apperr.Is(err, apperr.ValidationFailure))

	_, err = PatchInput{Type: &bad}.Validate()
	be.True(t, apperr.Is(err, apperr.ValidationFailure))
}

func TestFilterValidate(t *testing.T) {
	be.NilErr(t, Filter{}.Validate())
	be.NilErr(t, Filter{StartDate: "2025-01-01", EndDate: "2024-01-01", Type: "income", Category: "anything"}.Validate())

	err := Filter{StartDate: "yesterday", Type: "both"}.Validate()
	be.True(t, apperr.Is(err, apperr.ValidationFailure))
	be.True(t, strings.Contains(err.Error(), "startDate must be a date"))
	be.True(t, strings.Contains(err.Error(), "type must be income or expense"))
}

package transaction

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/carlmjohnson/be"
	"github.com/shopspring/decimal"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Type
		wantErr bool
	}{
		{name: "income", input: "income", want: Income},
		{name: "expense", input: "expense", want: Expense},
		{name: "capitalized is rejected", input: "Income", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "transfer", input: "transfer", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				be.True(t, errors.Is(err, ErrUnknownType))
				return
			}
			be.NilErr(t, err)
			be.Equal(t, tt.want, got)
		})
	}
}

func TestTransactionUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Transaction
		wantErr bool
	}{
		{
			name:  "numeric amount",
			input: `{"id":"t1","amount":100.10,"category":"Food","type":"expense","date":"2025-01-05","note":"lunch"}`,
			want: Transaction{
				ID:       "t1",
				Amount:   decimal.RequireFromString("100.10"),
				Category: "Food",
				Type:     Expense,
				Date:     Date{Year: 2025, Month: time.January, Day: 5},
				Note:     "lunch",
			},
		},
		{
			name:  "string amount and timestamp date",
			input: `{"id":"t2","amount":"500","category":"Salary","type":"income","date":"2025-01-31T00:00:00.000Z","note":""}`,
			want: Transaction{
				ID:       "t2",
				Amount:   decimal.RequireFromString("500"),
				Category: "Salary",
				Type:     Income,
				Date:     Date{Year: 2025, Month: time.January, Day: 31},
			},
		},
		{
			name:    "unknown type",
			input:   `{"id":"t3","amount":1,"category":"x","type":"transfer","date":"2025-01-05"}`,
			wantErr: true,
		},
		{
			name:    "missing type",
			input:   `{"id":"t4","amount":1,"category":"x","date":"2025-01-05"}`,
			wantErr: true,
		},
		{
			name:    "negative amount",
			input:   `{"id":"t5","amount":-1,"category":"x","type":"expense","date":"2025-01-05"}`,
			wantErr: true,
		},
		{
			name:    "bad date",
			input:   `{"id":"t6","amount":1,"category":"x","type":"expense","date":"05/01/2025"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Transaction
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				be.Nonzero(t, err)
				return
			}
			be.NilErr(t, err)
			be.Equal(t, tt.want.ID, got.ID)
			be.True(t, tt.want.Amount.Equal(got.Amount))
			be.Equal(t, tt.want.Category, got.Category)
			be.Equal(t, tt.want.Type, got.Type)
			be.Equal(t, tt.want.Date, got.Date)
			be.Equal(t, tt.want.Note, got.Note)
		})
	}
}

func TestNewMarshalJSONKeepsExactAmount(t *testing.T) {
	n := New{
		Amount:   decimal.RequireFromString("0.1"),
		Category: "Food",
		Type:     Expense,
		Date:     Date{Year: 2025, Month: time.February, Day: 10},
		Note:     "snack",
	}

	data, err := json.Marshal(n)
	be.NilErr(t, err)
	be.Equal(t, `{"amount":0.1,"category":"Food","type":"expense","date":"2025-02-10","note":"snack"}`, string(data))
}

func TestPatchMarshalJSONOnlyChangedFields(t *testing.T) {
	note := "updated"
	amount := decimal.RequireFromString("12.50")
	p := Patch{Amount: &amount, Note: &note}

	data, err := json.Marshal(p)
	be.NilErr(t, err)
	be.Equal(t, `{"amount":12.5,"note":"updated"}`, string(data))
	be.False(t, p.IsEmpty())
	be.True(t, Patch{}.IsEmpty())
}

func TestSigned(t *testing.T) {
	in := Transaction{Amount: decimal.NewFromInt(5), Type: Income}
	out := Transaction{Amount: decimal.NewFromInt(5), Type: Expense}

	be.Equal(t, "5", in.Signed().String())
	be.Equal(t, "-5", out.Signed().String())
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	be.NilErr(t, err)
	be.Equal(t, "2024-02-29", d.String())

	_, err = ParseDate("2023-02-29")
	be.Nonzero(t, err)

	earlier := Date{Year: 2024, Month: time.December, Day: 31}
	later := Date{Year: 2025, Month: time.January, Day: 1}
	be.Equal(t, -1, earlier.Compare(later))
	be.Equal(t, 1, later.Compare(earlier))
	be.Equal(t, 0, later.Compare(later))
	be.True(t, Date{}.IsZero())
}

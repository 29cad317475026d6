package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/carlmjohnson/be"
	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/Rshep3087/expensemon/aggregate"
	"github.com/Rshep3087/expensemon/api/apitest"
	"github.com/Rshep3087/expensemon/apperr"
	"github.com/Rshep3087/expensemon/transaction"
)

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

func tx(id, amount, category string, typ transaction.Type, date string) transaction.Transaction {
	d, err := transaction.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return transaction.Transaction{ID: id, Amount: decimal.RequireFromString(amount), Category: category, Type: typ, Date: d}
}

func seed() []transaction.Transaction {
	return []transaction.Transaction{
		tx("1", "100", "Food", transaction.Expense, "2025-01-05"),
		tx("2", "50", "Food", transaction.Expense, "2025-02-10"),
		tx("3", "500", "Salary", transaction.Income, "2025-01-31"),
	}
}

func newTestClient(t *testing.T, baseURL string, token string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(io.Discard)), WithRateLimit(0, 0)}, opts...)
	c, err := NewClient(baseURL, staticToken(token), opts...)
	be.NilErr(t, err)
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.com", staticToken("x"))
	be.Nonzero(t, err)
	_, err = NewClient("://nope", staticToken("x"))
	be.Nonzero(t, err)
}

func TestListTransactions(t *testing.T) {
	srv := apitest.NewServer(t, seed()...)
	c := newTestClient(t, srv.URL, apitest.Token)

	tests := []struct {
		name      string
		filter    transaction.Filter
		wantIDs   []string
		wantQuery string
	}{
		{name: "no filter", filter: transaction.Filter{}, wantIDs: []string{"1", "2", "3"}, wantQuery: ""},
		{
			name:      "type and category",
			filter:    transaction.Filter{Type: "expense", Category: "Food"},
			wantIDs:   []string{"1", "2"},
			wantQuery: "type=expense&category=Food",
		},
		{
			name:      "date range",
			filter:    transaction.Filter{StartDate: "2025-01-01", EndDate: "2025-01-31"},
			wantIDs:   []string{"1", "3"},
			wantQuery: "startDate=2025-01-01&endDate=2025-01-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ListTransactions(context.Background(), tt.filter)
			be.NilErr(t, err)

			ids := make([]string, len(got))
			for i, tr := range got {
				ids[i] = tr.ID
			}
			be.AllEqual(t, tt.wantIDs, ids)

			reqs := srv.Requests()
			last := reqs[len(reqs)-1]
			be.Equal(t, tt.wantQuery, last.URL.RawQuery)
			be.Equal(t, "Bearer "+apitest.Token, last.Header.Get("Authorization"))
			be.Nonzero(t, last.Header.Get(RequestIDHeader))
		})
	}
}

func TestListTransactionsRejectsBadFilter(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newTestClient(t, srv.URL, apitest.Token)

	_, err := c.ListTransactions(context.Background(), transaction.Filter{Type: "transfer"})
	be.True(t, apperr.Is(err, apperr.ValidationFailure))
	be.Equal(t, 0, len(srv.Requests()))
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    apperr.Kind
		message string
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			want: apperr.AuthRequired,
		},
		{
			name: "forbidden",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			want: apperr.AuthRequired,
		},
		{
			name: "server error with message",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"message":"database down"}`))
			},
			want:    apperr.NetworkFailure,
			message: "database down",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"transactions": [`))
			},
			want:    apperr.NetworkFailure,
			message: "malformed response",
		},
		{
			name: "unknown transaction type",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"transactions":[{"id":"1","amount":1,"category":"x","type":"transfer","date":"2025-01-01"}]}`))
			},
			want:    apperr.NetworkFailure,
			message: "unknown transaction type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := newTestClient(t, srv.URL, "tok")
			_, err := c.ListTransactions(context.Background(), transaction.Filter{})
			be.Equal(t, tt.want, apperr.KindOf(err))
			be.True(t, strings.Contains(err.Error(), tt.message))
		})
	}
}

func TestUnreachableRemote(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, "tok")
	_, err := c.Balance(context.Background())
	be.True(t, apperr.Is(err, apperr.NetworkFailure))
}

func TestAuthRequiredBeforeSending(t *testing.T) {
	srv := apitest.NewServer(t)
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	}).SignedString([]byte("k"))
	be.NilErr(t, err)

	for _, token := range []string{"", expired} {
		c := newTestClient(t, srv.URL, token, withClock(func() time.Time { return now }))
		_, err := c.Categories(context.Background())
		be.True(t, apperr.Is(err, apperr.AuthRequired))
	}
	be.Equal(t, 0, len(srv.Requests()))
}

func TestBalanceMatchesLocalSummary(t *testing.T) {
	sets := [][]transaction.Transaction{
		nil,
		seed(),
		{
			tx("a", "0.10", "Coffee", transaction.Expense, "2025-01-01"),
			tx("b", "0.20", "Coffee", transaction.Expense, "2025-01-02"),
			tx("c", "0.30", "Refund", transaction.Income, "2025-01-03"),
		},
	}

	for _, ts := range sets {
		srv := apitest.NewServer(t, ts...)
		c := newTestClient(t, srv.URL, apitest.Token)

		remote, err := c.Balance(context.Background())
		be.NilErr(t, err)
		be.True(t, remote.Consistent())

		listed, err := c.ListTransactions(context.Background(), transaction.Filter{})
		be.NilErr(t, err)
		be.NilErr(t, aggregate.Reconcile(aggregate.Summarize(listed), remote))
	}
}

func TestBalanceRejectsInconsistentRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"totalIncome":500,"totalExpense":150,"balance":300}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "tok")
	_, err := c.Balance(context.Background())
	be.True(t, apperr.Is(err, apperr.NetworkFailure))
}

func TestTransactionWrites(t *testing.T) {
	srv := apitest.NewServer(t, seed()...)
	c := newTestClient(t, srv.URL, apitest.Token)
	ctx := context.Background()

	created, err := c.CreateTransaction(ctx, transaction.New{
		Amount:   decimal.RequireFromString("12.34"),
		Category: "Books",
		Type:     transaction.Expense,
		Date:     transaction.Date{Year: 2025, Month: time.March, Day: 3},
		Note:     "novel",
	})
	be.NilErr(t, err)
	be.Equal(t, "4", created.ID)
	be.Equal(t, "12.34", created.Amount.String())

	got, err := c.GetTransaction(ctx, created.ID)
	be.NilErr(t, err)
	be.Equal(t, "Books", got.Category)

	note := "paperback"
	updated, err := c.UpdateTransaction(ctx, created.ID, transaction.Patch{Note: &note})
	be.NilErr(t, err)
	be.Equal(t, "paperback", updated.Note)
	be.Equal(t, "Books", updated.Category)

	_, err = c.UpdateTransaction(ctx, created.ID, transaction.Patch{})
	be.True(t, apperr.Is(err, apperr.ValidationFailure))

	be.NilErr(t, c.DeleteTransaction(ctx, created.ID))
	_, err = c.GetTransaction(ctx, created.ID)
	be.True(t, errors.Is(err, ErrNotFound))

	err = c.DeleteTransaction(ctx, "missing")
	be.True(t, apperr.Is(err, apperr.NetworkFailure))
	be.True(t, strings.Contains(err.Error(), "transaction not found"))

	cats, err := c.Categories(ctx)
	be.NilErr(t, err)
	be.AllEqual(t, []string{"Food", "Salary"}, cats)
}

func TestLoginAndRegister(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newTestClient(t, srv.URL, "")
	ctx := context.Background()

	token, err := c.Login(ctx, "me@example.com", "secret")
	be.NilErr(t, err)
	be.Equal(t, apitest.Token, token)

	_, err = c.Login(ctx, "me@example.com", "wrong")
	be.True(t, apperr.Is(err, apperr.AuthRequired))
	be.True(t, strings.Contains(err.Error(), "invalid credentials"))

	_, err = c.Login(ctx, "", "")
	be.True(t, apperr.Is(err, apperr.ValidationFailure))

	be.NilErr(t, c.Register(ctx, Credentials{Name: "Me", Email: "me@example.com", Password: "secret"}))
	be.True(t, apperr.Is(c.Register(ctx, Credentials{Email: "x"}), apperr.ValidationFailure))

	for _, r := range srv.Requests() {
		be.Equal(t, "", r.Header.Get("Authorization"))
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/carlmjohnson/be"
	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Rshep3087/expensemon/aggregate"
	"github.com/Rshep3087/expensemon/api"
	"github.com/Rshep3087/expensemon/api/apitest"
	"github.com/Rshep3087/expensemon/apperr"
	"github.com/Rshep3087/expensemon/session"
	"github.com/Rshep3087/expensemon/transaction"
)

type cliEnv struct {
	srv    *apitest.Server
	store  *session.Store
	client *api.Client
}

func newCLIEnv(t *testing.T, authenticated bool, ts ...transaction.Transaction) cliEnv {
	t.Helper()

	quiet := log.New(io.Discard)
	srv := apitest.NewServer(t, ts...)
	store := session.NewStore(&session.MemoryStorage{}, session.WithLogger(quiet))
	if authenticated {
		be.NilErr(t, store.Login(apitest.Token))
	}

	client, err := api.NewClient(srv.URL, store, api.WithLogger(quiet))
	be.NilErr(t, err)

	return cliEnv{srv: srv, store: store, client: client}
}

func runCommand(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTransactionsList(t *testing.T) {
	env := newCLIEnv(t, true, exampleTransactions()...)
	cmd := newTransactionsCmd(func() transactionsRemote { return env.client })

	out, err := runCommand(cmd, "list", "-o", "json")
	be.NilErr(t, err)

	var ts []transaction.Transaction
	be.NilErr(t, json.Unmarshal([]byte(out), &ts))
	be.Equal(t, 3, len(ts))
	be.Equal(t, "2", ts[0].ID)

	cmd = newTransactionsCmd(func() transactionsRemote { return env.client })
	out, err = runCommand(cmd, "list", "--type", "income")
	be.NilErr(t, err)
	be.True(t, strings.Contains(out, "Salary"))
	be.False(t, strings.Contains(out, "Food"))
}

func TestTransactionsListMonth(t *testing.T) {
	env := newCLIEnv(t, true, exampleTransactions()...)
	cmd := newTransactionsCmd(func() transactionsRemote { return env.client })

	out, err := runCommand(cmd, "list", "--month", "2025-01", "-o", "json")
	be.NilErr(t, err)

	var ts []transaction.Transaction
	be.NilErr(t, json.Unmarshal([]byte(out), &ts))
	be.Equal(t, 2, len(ts))
	be.Equal(t, "3", ts[0].ID)
	be.Equal(t, "1", ts[1].ID)

	req := env.srv.Requests()[0]
	be.Equal(t, "2025-01-01", req.URL.Query().Get("startDate"))
	be.Equal(t, "2025-01-31", req.URL.Query().Get("endDate"))
}

func TestTransactionsListRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown type", args: []string{"list", "--type", "refund"}},
		{name: "bad date", args: []string{"list", "--from", "01/02/2025"}},
		{name: "bad output", args: []string{"list", "-o", "yaml"}},
		{name: "bad month", args: []string{"list", "--month", "January"}},
		{name: "month with from", args: []string{"list", "--month", "2025-01", "--from", "2025-01-02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCLIEnv(t, true, exampleTransactions()...)
			cmd := newTransactionsCmd(func() transactionsRemote { return env.client })

			_, err := runCommand(cmd, tt.args...)
			be.Nonzero(t, err)
			be.Equal(t, 0, len(env.srv.Requests()))
		})
	}
}

func TestTransactionsAdd(t *testing.T) {
	env := newCLIEnv(t, true, exampleTransactions()...)
	cmd := newTransactionsCmd(func() transactionsRemote { return env.client })

	out, err := runCommand(cmd, "add", "--amount", "19.99", "--category", "Books", "--date", "2025-03-04", "--note", "novel")
	be.NilErr(t, err)
	be.Equal(t, "Transaction 4 created\n", out)

	created := env.srv.Transactions()[3]
	be.Equal(t, "Books", created.Category)
	be.Equal(t, transaction.Expense, created.Type)
	be.True(t, created.Amount.Equal(decimal.RequireFromString("19.99")))
	be.Equal(t, "novel", created.Note)
}

func TestTransactionsAddValidation(t *testing.T) {
	env := newCLIEnv(t, true)
	cmd := newTransactionsCmd(func() transactionsRemote { return env.client })

	_, err := runCommand(cmd, "add", "--amount", "-5", "--category", "Books")
	be.True(t, apperr.Is(err, apperr.ValidationFailure))
	be.Equal(t, 0, len(env.srv.Transactions()))
}

func TestTransactionsEdit(t *testing.T) {
	env := newCLIEnv(t, true, exampleTransactions()...)
	cmd := newTransactionsCmd(func() transactionsRemote { return env.client })

	out, err := runCommand(cmd, "edit", "1", "--amount", "120")
	be.NilErr(t, err)
	be.Equal(t, "Transaction 1 updated\n", out)

	edited := env.srv.Transactions()[0]
	be.True(t, edited.Amount.Equal(decimal.RequireFromString("120")))
	be.Equal(t, "Food", edited.Category)

	cmd = newTransactionsCmd(func() transactionsRemote { return env.client })
	_, err = runCommand(cmd, "edit", "1")
	be.True(t, apperr.Is(err, apperr.ValidationFailure))
}

func TestTransactionsDelete(t *testing.T) {
	env := newCLIEnv(t, true, exampleTransactions()...)
	cmd := newTransactionsCmd(func() transactionsRemote { return env.client })

	out, err := runCommand(cmd, "delete", "2", "--yes")
	be.NilErr(t, err)
	be.Equal(t, "Transaction 2 deleted\n", out)
	be.Equal(t, 2, len(env.srv.Transactions()))
}

func TestTransactionsRequireSession(t *testing.T) {
	env := newCLIEnv(t, false, exampleTransactions()...)
	cmd := newTransactionsCmd(func() transactionsRemote { return env.client })

	_, err := runCommand(cmd, "list")
	be.True(t, apperr.Is(err, apperr.AuthRequired))
}

func TestCategoriesList(t *testing.T) {
	env := newCLIEnv(t, true, exampleTransactions()...)
	cmd := newCategoriesCmd(
		func() categoriesRemote { return env.client },
		func() AIProvider { return nil },
	)

	out, err := runCommand(cmd, "list", "-o", "json")
	be.NilErr(t, err)

	var categories []string
	be.NilErr(t, json.Unmarshal([]byte(out), &categories))
	be.AllEqual(t, []string{"Food", "Salary"}, categories)
}

func TestCategoriesSuggest(t *testing.T) {
	env := newCLIEnv(t, true, exampleTransactions()...)

	cmd := newCategoriesCmd(
		func() categoriesRemote { return env.client },
		func() AIProvider { return nil },
	)
	_, err := runCommand(cmd, "suggest", "1")
	be.Nonzero(t, err)

	provider := &fakeProvider{recommendation: &CategoryRecommendation{
		Category:   "Food",
		Confidence: 92,
		Reasoning:  "groceries",
	}}
	cmd = newCategoriesCmd(
		func() categoriesRemote { return env.client },
		func() AIProvider { return provider },
	)
	out, err := runCommand(cmd, "suggest", "1", "-o", "json")
	be.NilErr(t, err)

	var got CategoryRecommendation
	be.NilErr(t, json.Unmarshal([]byte(out), &got))
	be.Equal(t, "Food", got.Category)
	be.AllEqual(t, []string{"Food", "Salary"}, provider.gotCategories)
}

func TestSummary(t *testing.T) {
	env := newCLIEnv(t, true, exampleTransactions()...)
	cmd := newSummaryCmd(func() summaryRemote { return env.client })

	out, err := runCommand(cmd, "-o", "json")
	be.NilErr(t, err)

	var data struct {
		Balance    aggregate.Summary `json:"balance"`
		Categories []categoryTotal   `json:"categories"`
		Months     []monthTotal      `json:"months"`
		Mismatch   string            `json:"mismatch"`
	}
	be.NilErr(t, json.Unmarshal([]byte(out), &data))

	be.True(t, data.Balance.Balance.Equal(decimal.RequireFromString("350")))
	be.Equal(t, "", data.Mismatch)
	be.AllEqual(t, []categoryTotal{
		{Category: "Food", Total: "$150.00"},
		{Category: "Salary", Total: "$500.00"},
	}, data.Categories)
	be.AllEqual(t, []monthTotal{
		{Month: "Jan 2025", Income: "$500.00", Expense: "$100.00", Net: "$400.00"},
		{Month: "Feb 2025", Income: "$0.00", Expense: "$50.00", Net: "-$50.00"},
	}, data.Months)
}

func TestSummaryMonth(t *testing.T) {
	env := newCLIEnv(t, true, exampleTransactions()...)

	cmd := newSummaryCmd(func() summaryRemote { return env.client })
	out, err := runCommand(cmd, "--month", "2025-02")
	be.NilErr(t, err)
	be.True(t, strings.Contains(out, "Feb 2025"))
	be.False(t, strings.Contains(out, "Jan 2025"))

	cmd = newSummaryCmd(func() summaryRemote { return env.client })
	_, err = runCommand(cmd, "--month", "February")
	be.True(t, apperr.Is(err, apperr.ValidationFailure))
}

func TestBuildSummaryDataReportsMismatch(t *testing.T) {
	ts := exampleTransactions()
	remote := aggregate.NewSummary(decimal.RequireFromString("500"), decimal.RequireFromString("100"))

	data := buildSummaryData(ts, remote, aggregate.Descending, "USD", aggregate.ParseLocale("en"))

	be.Nonzero(t, data.Mismatch)
	be.Equal(t, "Feb 2025", data.Months[0].Month)
}

func TestLoginCommand(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantErr   bool
		wantToken string
	}{
		{
			name:      "paste a token",
			args:      []string{"--token", "abc"},
			wantToken: "abc",
		},
		{
			name:      "email and password",
			args:      []string{"--email", "me@example.com", "--password", "secret"},
			wantToken: apitest.Token,
		},
		{
			name:    "wrong password",
			args:    []string{"--email", "me@example.com", "--password", "nope"},
			wantErr: true,
		},
		{
			name:    "no credentials",
			args:    []string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCLIEnv(t, false)
			cmd := newLoginCmd(
				func() authenticator { return env.client },
				func() sessionStore { return env.store },
			)

			_, err := runCommand(cmd, tt.args...)
			if tt.wantErr {
				be.Nonzero(t, err)
				be.False(t, env.store.IsAuthenticated())
				return
			}
			be.NilErr(t, err)
			token, ok := env.store.Token()
			be.True(t, ok)
			be.Equal(t, tt.wantToken, token)
		})
	}
}

func TestRegisterCommand(t *testing.T) {
	env := newCLIEnv(t, false)
	cmd := newRegisterCmd(
		func() authenticator { return env.client },
		func() sessionStore { return env.store },
	)

	out, err := runCommand(cmd, "--name", "Ada", "--email", "ada@example.com", "--password", "secret")
	be.NilErr(t, err)
	be.Equal(t, "Registered ada@example.com and logged in\n", out)
	be.True(t, env.store.IsAuthenticated())
}

func TestLogoutCommand(t *testing.T) {
	env := newCLIEnv(t, true)
	cmd := newLogoutCmd(func() sessionStore { return env.store })

	out, err := runCommand(cmd)
	be.NilErr(t, err)
	be.Equal(t, "Logged out\n", out)
	be.False(t, env.store.IsAuthenticated())
}

func TestSessionStatus(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	signed := func(exp time.Time) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		}).SignedString([]byte("key"))
		if err != nil {
			panic(err)
		}
		return token
	}

	tests := []struct {
		name       string
		token      string
		wantPrefix string
	}{
		{name: "logged out", token: "", wantPrefix: "Not logged in"},
		{name: "opaque token", token: "abc", wantPrefix: "Logged in"},
		{name: "jwt without expiry", token: noExpiryToken(), wantPrefix: "Logged in (token does not expire)"},
		{name: "valid jwt", token: signed(now.Add(time.Hour)), wantPrefix: "Logged in until"},
		{name: "expired jwt", token: signed(now.Add(-time.Hour)), wantPrefix: "Session expired at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewStore(&session.MemoryStorage{}, session.WithLogger(log.New(io.Discard)))
			if tt.token != "" {
				be.NilErr(t, store.Login(tt.token))
			}
			be.True(t, strings.HasPrefix(sessionStatus(store, now), tt.wantPrefix))
		})
	}
}

func noExpiryToken() string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-1",
	}).SignedString([]byte("key"))
	if err != nil {
		panic(err)
	}
	return token
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "table"},
		{value: "json"},
		{value: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cmd := &cobra.Command{}
			addOutputFlag(cmd)
			be.NilErr(t, cmd.Flags().Set("output", tt.value))

			got, err := outputFormat(cmd)
			if tt.wantErr {
				be.Nonzero(t, err)
				return
			}
			be.NilErr(t, err)
			be.Equal(t, tt.value, got)
		})
	}
}

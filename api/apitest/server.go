// Package apitest provides an in-memory remote for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Rshep3087/expensemon/transaction"
)

// Token is the only bearer token the server accepts.
const Token = "test-token"

// Server is a fake remote backed by a slice of transactions. Balances are
// summed on the server from its own records.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	transactions []transaction.Transaction
	nextID       int
	requests     []*http.Request
	fail         int
}

// NewServer starts a server seeded with ts and closes it when the test ends.
func NewServer(t testing.TB, ts ...transaction.Transaction) *Server {
	s := &Server{transactions: slices.Clone(ts), nextID: len(ts) + 1}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /transactions", s.list)
	mux.HandleFunc("GET /transactions/balance", s.balance)
	mux.HandleFunc("GET /transactions/categories", s.categories)
	mux.HandleFunc("POST /transactions", s.create)
	mux.HandleFunc("PUT /transactions/{id}", s.update)
	mux.HandleFunc("DELETE /transactions/{id}", s.delete)
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	s.Server = httptest.NewServer(s.middleware(mux))
	t.Cleanup(s.Close)
	return s
}

// FailWith makes every following request answer with status. Zero restores normal behavior.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	s.fail = status
	s.mu.Unlock()
}

// Requests returns the requests received so far.
func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Transactions returns the server's current records.
func (s *Server) Transactions() []transaction.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.transactions)
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		fail := s.fail
		s.mu.Unlock()

		if fail != 0 {
			writeJSON(w, fail, map[string]string{"message": "server says no"})
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/auth/") && r.Header.Get("Authorization") != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []transaction.Transaction{}
	for _, t := range s.transactions {
		if v := q.Get("id"); v != "" && t.ID != v {
			continue
		}
		if v := q.Get("type"); v != "" && string(t.Type) != v {
			continue
		}
		if v := q.Get("category"); v != "" && t.Category != v {
			continue
		}
		if v := q.Get("startDate"); v != "" && t.Date.String() < v {
			continue
		}
		if v := q.Get("endDate"); v != "" && t.Date.String() > v {
			continue
		}
		out = append(out, t)
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func (s *Server) balance(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	income, expense := decimal.Zero, decimal.Zero
	for _, t := range s.transactions {
		if t.Type == transaction.Income {
			income = income.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
		}
	}
	writeJSON(w, http.StatusOK, map[string]json.Number{
		"totalIncome":  json.Number(income.String()),
		"totalExpense": json.Number(expense.String()),
		"balance":      json.Number(income.Sub(expense).String()),
	})
}

func (s *Server) categories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats := []string{}
	for _, t := range s.transactions {
		if !slices.Contains(cats, t.Category) {
			cats = append(cats, t.Category)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var t transaction.Transaction
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	t.ID = strconv.Itoa(s.nextID)
	s.nextID++
	s.transactions = append(s.transactions, t)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.transactions, func(t transaction.Transaction) bool { return t.ID == r.PathValue("id") })
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "transaction not found"})
		return
	}

	current, _ := json.Marshal(s.transactions[i])
	var merged map[string]json.RawMessage
	_ = json.Unmarshal(current, &merged)
	for k, v := range patch {
		merged[k] = v
	}
	data, _ := json.Marshal(merged)

	var updated transaction.Transaction
	if err := json.Unmarshal(data, &updated); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	s.transactions[i] = updated
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.transactions)
	s.transactions = slices.DeleteFunc(s.transactions, func(t transaction.Transaction) bool { return t.ID == r.PathValue("id") })
	if len(s.transactions) == before {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "transaction not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Password != "secret" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": Token})
}

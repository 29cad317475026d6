// Package api is the client for the remote transaction service.
package api

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/Rshep3087/expensemon/aggregate"
	"github.com/Rshep3087/expensemon/apperr"
	"github.com/Rshep3087/expensemon/session"
	"github.com/Rshep3087/expensemon/transaction"
)

// ErrNotFound is returned when a transaction id matches nothing.
var ErrNotFound = errors.New("transaction not found")

// TokenSource supplies the bearer token. *session.Store implements it.
type TokenSource interface {
	Token() (string, bool)
}

// Client talks to the remote over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	logger  *log.Logger
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is still
// wrapped for request logging.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit limits requests per second. A limit <= 0 disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

func withClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient returns a client for the remote at baseURL.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(10), 5),
		logger:  log.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.http
	hc.Transport = newLoggingTransport(hc.Transport, c.logger)
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.http = &hc

	return c, nil
}

type request struct {
	op     string
	method string
	path   []string
	query  transaction.Query
	body   any
	public bool
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	var token string
	if !r.public {
		tok, ok := c.tokens.Token()
		if !ok {
			return apperr.Errorf(apperr.AuthRequired, r.op, "not logged in")
		}
		if session.TokenExpired(tok, c.now()) {
			return apperr.Errorf(apperr.AuthRequired, r.op, "session expired")
		}
		token = tok
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return apperr.E(apperr.NetworkFailure, r.op, err)
	}

	u := c.baseURL.JoinPath(r.path...)
	u.RawQuery = r.query.Encode()

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return apperr.E(apperr.ValidationFailure, r.op, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return apperr.E(apperr.NetworkFailure, r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.E(apperr.NetworkFailure, r.op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.E(apperr.NetworkFailure, r.op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(r.op, resp, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperr.E(apperr.NetworkFailure, r.op, fmt.Errorf("malformed response: %w", err))
	}
	return nil
}

func statusError(op string, resp *http.Response, data []byte) error {
	var eb errorBody
	_ = json.Unmarshal(data, &eb)
	msg := cmp.Or(eb.Message, eb.Error, http.StatusText(resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return apperr.Errorf(apperr.AuthRequired, op, "%s (%d)", msg, resp.StatusCode)
	}
	return apperr.Errorf(apperr.NetworkFailure, op, "%s (%d)", msg, resp.StatusCode)
}

type transactionsResponse struct {
	Transactions []transaction.Transaction `json:"transactions"`
}

// ListTransactions returns the transactions matching f.
func (c *Client) ListTransactions(ctx context.Context, f transaction.Filter) ([]transaction.Transaction, error) {
	const op = "list transactions"
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var resp transactionsResponse
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   []string{"transactions"},
		query:  transaction.BuildQuery(f),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Transactions == nil {
		return []transaction.Transaction{}, nil
	}
	return resp.Transactions, nil
}

// GetTransaction fetches a single transaction by id.
func (c *Client) GetTransaction(ctx context.Context, id string) (transaction.Transaction, error) {
	const op = "get transaction"
	if id == "" {
		return transaction.Transaction{}, apperr.Errorf(apperr.ValidationFailure, op, "id is required")
	}

	var resp transactionsResponse
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   []string{"transactions"},
		query:  transaction.BuildQuery(transaction.Filter{ID: id}),
	}, &resp)
	if err != nil {
		return transaction.Transaction{}, err
	}

	for _, t := range resp.Transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return transaction.Transaction{}, apperr.E(apperr.Unknown, op, fmt.Errorf("%w: %s", ErrNotFound, id))
}

// Balance returns the remote's balance summary.
func (c *Client) Balance(ctx context.Context) (aggregate.Summary, error) {
	const op = "get balance"

	var s aggregate.Summary
	if err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   []string{"transactions", "balance"},
	}, &s); err != nil {
		return aggregate.Summary{}, err
	}

	if !s.Consistent() {
		return aggregate.Summary{}, apperr.Errorf(apperr.NetworkFailure, op,
			"malformed response: balance %s != %s - %s", s.Balance, s.TotalIncome, s.TotalExpense)
	}
	return s, nil
}

// Categories returns the category labels known to the remote.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var resp struct {
		Categories []string `json:"categories"`
	}
	if err := c.do(ctx, request{
		op:     "list categories",
		method: http.MethodGet,
		path:   []string{"transactions", "categories"},
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Categories == nil {
		return []string{}, nil
	}
	return resp.Categories, nil
}

// CreateTransaction records a new transaction and returns it with its id.
func (c *Client) CreateTransaction(ctx context.Context, n transaction.New) (transaction.Transaction, error) {
	var t transaction.Transaction
	err := c.do(ctx, request{
		op:     "create transaction",
		method: http.MethodPost,
		path:   []string{"transactions"},
		body:   n,
	}, &t)
	return t, err
}

// UpdateTransaction applies p to the transaction with the given id.
func (c *Client) UpdateTransaction(ctx context.Context, id string, p transaction.Patch) (transaction.Transaction, error) {
	const op = "update transaction"
	if id == "" {
		return transaction.Transaction{}, apperr.Errorf(apperr.ValidationFailure, op, "id is required")
	}
	if p.IsEmpty() {
		return transaction.Transaction{}, apperr.Errorf(apperr.ValidationFailure, op, "nothing to update")
	}

	var t transaction.Transaction
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodPut,
		path:   []string{"transactions", url.PathEscape(id)},
		body:   p,
	}, &t)
	return t, err
}

// DeleteTransaction removes the transaction with the given id.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	const op = "delete transaction"
	if id == "" {
		return apperr.Errorf(apperr.ValidationFailure, op, "id is required")
	}
	return c.do(ctx, request{
		op:     op,
		method: http.MethodDelete,
		path:   []string{"transactions", url.PathEscape(id)},
	}, nil)
}

// Credentials identify a user for Login and Register.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	const op = "login"
	if email == "" || password == "" {
		return "", apperr.Errorf(apperr.ValidationFailure, op, "email and password are required")
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   []string{"auth", "login"},
		body:   Credentials{Email: email, Password: password},
		public: true,
	}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", apperr.Errorf(apperr.NetworkFailure, op, "malformed response: no token")
	}
	return resp.Token, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, cred Credentials) error {
	const op = "register"
	if cred.Name == "" || cred.Email == "" || cred.Password == "" {
		return apperr.Errorf(apperr.ValidationFailure, op, "name, email and password are required")
	}
	return c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   []string{"auth", "register"},
		body:   cred,
		public: true,
	}, nil)
}

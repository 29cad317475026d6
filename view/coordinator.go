// Package view fetches transactions and the balance, runs aggregation and
// publishes per-panel state to a renderer.
package view

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/Rshep3087/expensemon/aggregate"
	"github.com/Rshep3087/expensemon/apperr"
	"github.com/Rshep3087/expensemon/transaction"
)

// Fetcher is the remote the coordinator reads from. *api.Client implements it.
type Fetcher interface {
	ListTransactions(ctx context.Context, f transaction.Filter) ([]transaction.Transaction, error)
	Balance(ctx context.Context) (aggregate.Summary, error)
}

// Renderer receives panel updates. Methods are called with the coordinator's
// lock held and must not call back into the Coordinator.
type Renderer interface {
	RenderTransactions(Panel[[]transaction.Transaction])
	RenderCategories(Panel[*aggregate.CategoryTotals])
	RenderSeries(Panel[aggregate.MonthlySeries])
	RenderBalance(Panel[aggregate.Summary])
}

// Logouter ends the session when the remote rejects it. *session.Store implements it.
type Logouter interface {
	Logout() error
}

// Coordinator owns the fetched snapshot for the current activation.
type Coordinator struct {
	fetcher  Fetcher
	renderer Renderer
	session  Logouter
	logger   *log.Logger
	order    aggregate.Order

	mu         sync.Mutex
	generation uint64
	filter     transaction.Filter
	snapshot   []transaction.Transaction
	loaded     bool
	month      aggregate.MonthKey
	hasMonth   bool
	remote     *aggregate.Summary
	mismatch   error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithSession sets the session that is logged out on AuthRequired.
func WithSession(s Logouter) Option {
	return func(c *Coordinator) { c.session = s }
}

// WithOrder sets the direction the monthly series is published in.
func WithOrder(o aggregate.Order) Option {
	return func(c *Coordinator) { c.order = o }
}

// WithMonth starts with a month selected.
func WithMonth(k aggregate.MonthKey) Option {
	return func(c *Coordinator) {
		c.month = k
		c.hasMonth = true
	}
}

func New(fetcher Fetcher, renderer Renderer, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:  fetcher,
		renderer: renderer,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Activate fetches transactions matching filter and the balance in parallel.
// Each result is published as soon as it arrives; results from an older
// activation are discarded. The returned error joins both request errors.
func (c *Coordinator) Activate(ctx context.Context, filter transaction.Filter) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.filter = filter
	c.snapshot = nil
	c.loaded = false
	c.remote = nil
	c.mismatch = nil

	c.renderer.RenderTransactions(LoadingPanel[[]transaction.Transaction]())
	c.renderer.RenderCategories(LoadingPanel[*aggregate.CategoryTotals]())
	c.renderer.RenderSeries(LoadingPanel[aggregate.MonthlySeries]())
	c.renderer.RenderBalance(LoadingPanel[aggregate.Summary]())
	c.mu.Unlock()

	c.logger.Debug("activating view", "generation", gen, "filter", transaction.BuildQuery(filter).Encode())

	var (
		g                   errgroup.Group
		listErr, balanceErr error
	)
	g.Go(func() error {
		ts, err := c.fetcher.ListTransactions(ctx, filter)
		listErr = c.publishTransactions(gen, ts, err)
		return nil
	})
	g.Go(func() error {
		s, err := c.fetcher.Balance(ctx)
		balanceErr = c.publishBalance(gen, s, err)
		return nil
	})
	_ = g.Wait()

	return errors.Join(listErr, balanceErr)
}

// Reset forgets the current activation, its filter and the selected month.
// Requests still in flight are dropped when they complete. Nothing is
// rendered; the next Activate starts from scratch.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.filter = transaction.Filter{}
	c.snapshot = nil
	c.loaded = false
	c.remote = nil
	c.mismatch = nil
	c.month = aggregate.MonthKey{}
	c.hasMonth = false
}

// Reload re-activates with the last filter, e.g. after a remote write.
func (c *Coordinator) Reload(ctx context.Context) error {
	c.mu.Lock()
	filter := c.filter
	c.mu.Unlock()
	return c.Activate(ctx, filter)
}

func (c *Coordinator) publishTransactions(gen uint64, ts []transaction.Transaction, err error) error {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("dropping stale transactions", "generation", gen)
		return nil
	}

	if err != nil {
		c.renderer.RenderTransactions(FailedPanel[[]transaction.Transaction](err))
		c.renderer.RenderCategories(FailedPanel[*aggregate.CategoryTotals](err))
		c.renderer.RenderSeries(FailedPanel[aggregate.MonthlySeries](err))
		c.mu.Unlock()
		return c.fail("transactions", err)
	}

	c.snapshot = ts
	c.loaded = true
	result := aggregate.Aggregate(ts, c.aggregateOptions()...)

	c.renderer.RenderTransactions(LoadedPanel(slices.Clone(ts)))
	c.renderer.RenderCategories(LoadedPanel(result.Categories))
	c.renderer.RenderSeries(LoadedPanel(result.Series.Ordered(c.order)))
	c.reconcileLocked()
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) publishBalance(gen uint64, s aggregate.Summary, err error) error {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("dropping stale balance", "generation", gen)
		return nil
	}

	if err != nil {
		c.renderer.RenderBalance(FailedPanel[aggregate.Summary](err))
		c.mu.Unlock()
		return c.fail("balance", err)
	}

	c.remote = &s
	c.renderer.RenderBalance(LoadedPanel(s))
	c.reconcileLocked()
	c.mu.Unlock()
	return nil
}

// fail logs err and ends the session when the remote rejected it.
func (c *Coordinator) fail(panel string, err error) error {
	if apperr.Is(err, apperr.AuthRequired) {
		c.logger.Warn("session rejected, logging out", "panel", panel, "err", err)
		if c.session != nil {
			if lerr := c.session.Logout(); lerr != nil {
				c.logger.Error("logout failed", "err", lerr)
			}
		}
		return err
	}
	c.logger.Error("could not load panel", "panel", panel, "kind", apperr.KindOf(err), "err", err)
	return err
}

// reconcileLocked compares the local and remote summaries once both are in.
// Filtered lists are a subset of what the balance covers, so they are skipped.
func (c *Coordinator) reconcileLocked() {
	if !c.loaded || c.remote == nil || c.filter != (transaction.Filter{}) {
		return
	}
	c.mismatch = aggregate.Reconcile(aggregate.Summarize(c.snapshot), *c.remote)
	if c.mismatch != nil {
		c.logger.Warn("local and remote balance differ", "err", c.mismatch)
	}
}

func (c *Coordinator) aggregateOptions() []aggregate.Option {
	if c.hasMonth {
		return []aggregate.Option{aggregate.WithMonth(c.month)}
	}
	return nil
}

// SetMonth restricts the series to a month, recomputing from the fetched
// snapshot without contacting the remote.
func (c *Coordinator) SetMonth(k aggregate.MonthKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.month = k
	c.hasMonth = true
	c.republishSeriesLocked()
}

// ClearMonth shows every month again.
func (c *Coordinator) ClearMonth() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.month = aggregate.MonthKey{}
	c.hasMonth = false
	c.republishSeriesLocked()
}

func (c *Coordinator) republishSeriesLocked() {
	if !c.loaded {
		return
	}
	result := aggregate.Aggregate(c.snapshot, c.aggregateOptions()...)
	c.renderer.RenderSeries(LoadedPanel(result.Series.Ordered(c.order)))
}

// Mismatch returns the last reconciliation error, nil when the summaries agree
// or have not both arrived.
func (c *Coordinator) Mismatch() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mismatch
}

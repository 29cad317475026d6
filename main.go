package main

import (
	"cmp"
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"github.com/Rshep3087/expensemon/aggregate"
	"github.com/Rshep3087/expensemon/api"
	"github.com/Rshep3087/expensemon/config"
	"github.com/Rshep3087/expensemon/monthly"
	"github.com/Rshep3087/expensemon/overview"
	"github.com/Rshep3087/expensemon/session"
	"github.com/Rshep3087/expensemon/transaction"
	"github.com/Rshep3087/expensemon/view"
)

// remote is everything the TUI needs from the transactions service.
type remote interface {
	view.Fetcher
	Categories(ctx context.Context) ([]string, error)
	GetTransaction(ctx context.Context, id string) (transaction.Transaction, error)
	CreateTransaction(ctx context.Context, n transaction.New) (transaction.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, p transaction.Patch) (transaction.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, cred api.Credentials) error
}

type model struct {
	config   config.Config
	theme    Theme
	styles   styles
	keys     keyMap
	help     help.Model
	locale   language.Tag
	currency string

	store         *session.Store
	guard         *session.Guard
	client        remote
	coord         *view.Coordinator
	aiRecommender *AIRecommender

	// path is the route currently shown, after the guard has resolved it.
	path                 string
	sessionState         sessionState
	previousSessionState sessionState
	loadingState         loadingState
	loadingSpinner       spinner.Model
	activated            bool
	filter               transaction.Filter
	errorMsg             string
	mismatch             error

	overview             overview.Model
	transactions         list.Model
	transactionsListKeys *transactionListKeyMap
	months               monthly.Model
	configView           config.Model

	authForm        *huh.Form
	auth            *authValues
	transactionForm *huh.Form
	formValues      *transactionFormValues
	editing         *transaction.Transaction
	deleteForm      *huh.Form
	pendingDelete   *transaction.Transaction
	confirmed       *bool

	categories []string
	snapshot   []transaction.Transaction
	month      monthSelector
}

type modelDeps struct {
	config   config.Config
	store    *session.Store
	client   remote
	coord    *view.Coordinator
	provider AIProvider
	filter   transaction.Filter
}

func newModel(deps modelDeps) model {
	theme := newTheme(deps.config.Colors)
	locale := aggregate.ParseLocale(deps.config.Locale)
	currency := cmp.Or(deps.config.Currency, aggregate.DefaultCurrency)

	m := model{
		config:         deps.config,
		theme:          theme,
		styles:         createStyles(theme),
		keys:           initializeKeyMap(),
		help:           createHelpModel(theme),
		locale:         locale,
		currency:       currency,
		store:          deps.store,
		guard:          session.NewGuard(deps.store, nil),
		client:         deps.client,
		coord:          deps.coord,
		aiRecommender:  NewAIRecommender(deps.provider),
		filter:         deps.filter,
		path:           session.PathRoot,
		loadingState:   newLoadingState(transactionsKey, balanceKey),
		loadingSpinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		auth:           &authValues{},
		overview:       newOverview(theme, locale, currency),
		months:         monthly.New(theme.monthlyColors()),
		configView:     config.New(),
	}

	m.months.SetFormat(locale, currency)
	m.configView.SetConfig(deps.config)

	m.transactionsListKeys = newTransactionListKeyMap()
	delegate := m.newItemDelegate(newDelegateKeyMap())
	transactionList := list.New([]list.Item{}, delegate, 0, 0)
	transactionList.SetShowTitle(false)
	transactionList.StatusMessageLifetime = statusMessageLifetime
	transactionList.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{m.transactionsListKeys.newTransaction}
	}
	transactionList.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{
			m.transactionsListKeys.newTransaction,
			m.transactionsListKeys.suggest,
			m.transactionsListKeys.overview,
		}
	}
	m.transactions = transactionList

	return m
}

func newOverview(theme Theme, locale language.Tag, currency string) overview.Model {
	return overview.New(
		overview.WithStyles(theme.overviewStyles()),
		overview.WithLocale(locale),
		overview.WithCurrency(currency),
	)
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.loadingSpinner.Tick, func() tea.Msg {
		return navigateMsg{path: session.PathRoot}
	})
}

// rootAction starts the TUI.
func rootAction(ctx context.Context, cfg config.Config, store *session.Store, client *api.Client, filter transaction.Filter) error {
	f, err := tea.LogToFile("expensemon.log", "expensemon")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	log.SetOutput(f)
	defer log.SetOutput(os.Stderr)

	var p *tea.Program
	send := func(msg tea.Msg) { p.Send(msg) }

	coord := view.New(client, programRenderer{send: send},
		view.WithLogger(log.Default()),
		view.WithSession(store),
		view.WithOrder(aggregate.ParseOrder(cfg.MonthOrder)),
	)

	var provider AIProvider
	if cfg.AnthropicAPIKey != "" {
		provider = NewAnthropicProvider(cfg.AnthropicAPIKey)
	}

	m := newModel(modelDeps{
		config:   cfg,
		store:    store,
		client:   client,
		coord:    coord,
		provider: provider,
		filter:   filter,
	})

	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := watchSession(store, coord, send)
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}

// watchSession forwards session changes to the program. On logout the
// coordinator is reset first so the next session starts without the old
// snapshot or month. Store observers run on the goroutine that called
// Login or Logout, which is never the Update loop.
func watchSession(store *session.Store, coord *view.Coordinator, send func(tea.Msg)) (unsubscribe func()) {
	return store.Subscribe(func(authenticated bool) {
		if !authenticated {
			coord.Reset()
		}
		send(authChangedMsg{authenticated: authenticated})
	})
}

func main() {
	Execute()
}

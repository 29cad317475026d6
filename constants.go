package main

import "time"

const (
	// standardMargin is the horizontal margin around the whole UI.
	standardMargin = 2
	// statusMessageLifetime is how long list status messages stay visible.
	statusMessageLifetime = 3 * time.Second

	activationTimeout       = 30 * time.Second
	authTimeout             = 15 * time.Second
	writeTimeout            = 15 * time.Second
	aiRecommendationTimeout = 30 * time.Second

	anthropicMaxTokens = 300
	maxConfidenceScore = 100.0
)

// Loading keys, one per panel the coordinator publishes asynchronously.
const (
	transactionsKey = "transactions"
	balanceKey      = "balance"
)

// Session states
type sessionState int

const (
	loginState sessionState = iota
	registerState
	overviewState
	transactions
	transactionForm
	confirmDelete
	monthsView
	loading
	configView
	errorState
)

func (ss sessionState) String() string {
	switch ss {
	case loginState:
		return "login"
	case registerState:
		return "register"
	case overviewState:
		return "dashboard"
	case transactions:
		return "transactions"
	case transactionForm:
		return "transaction"
	case confirmDelete:
		return "delete transaction"
	case monthsView:
		return "months"
	case loading:
		return "loading"
	case configView:
		return "configuration"
	case errorState:
		return "error"
	}

	return "unknown"
}

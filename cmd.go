package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rshep3087/expensemon/api"
	"github.com/Rshep3087/expensemon/session"
	"github.com/Rshep3087/expensemon/transaction"
)

const (
	jsonOutputFormat  = "json"
	tableOutputFormat = "table"
)

// Global variables for configuration.
var (
	cfgFile        string
	debug          bool
	apiURL         string
	locale         string
	currency       string
	sessionBackend string
	sessionPath    string
	requestTimeout time.Duration
	rateLimit      float64
	monthOrder     string
	anthropicKey   string

	store        *session.Store
	client       *api.Client
	closeStorage func() error

	rootFilter transaction.Filter
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "A terminal UI and CLI for tracking income and expenses",
	Long: `A terminal-based dashboard and CLI for your income and expenses: ` +
		`category totals, monthly series and the balance reported by the server.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		config := currentConfig()

		// Setup logging
		log.SetLevel(log.InfoLevel)
		if config.Debug {
			log.SetLevel(log.DebugLevel)
		}

		storage, closer, err := openSessionStorage(config)
		if err != nil {
			return err
		}
		closeStorage = closer

		store = session.NewStore(storage, session.WithLogger(log.Default()))
		store.Initialize()

		client, err = api.NewClient(config.APIURL, store,
			api.WithTimeout(config.RequestTimeout),
			api.WithRateLimit(config.RateLimit, rateLimitBurst),
			api.WithLogger(log.Default()),
		)
		if err != nil {
			return fmt.Errorf("failed to create API client: %w", err)
		}

		return nil
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if closeStorage == nil {
			return nil
		}
		return closeStorage()
	},
	RunE: func(c *cobra.Command, _ []string) error {
		// Start TUI when no subcommands are provided
		if err := rootFilter.Validate(); err != nil {
			return err
		}
		return rootAction(c.Context(), currentConfig(), store, client, rootFilter)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./expensemon.toml)")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	flags.StringVar(&apiURL, "api-url", defaultAPIURL, "base URL of the transactions service")
	flags.StringVar(&locale, "locale", "en", "locale for month labels (BCP 47)")
	flags.StringVar(&currency, "currency", "USD", "ISO 4217 currency code for amounts")
	flags.StringVar(&sessionBackend, "session-backend", sessionBackendFile, "where the session token is kept: file or sqlite")
	flags.StringVar(&sessionPath, "session-path", "", "path of the session file or database")
	flags.DurationVar(&requestTimeout, "request-timeout", defaultRequestTimeout, "timeout for each API request")
	flags.Float64Var(&rateLimit, "rate-limit", defaultRateLimit, "maximum API requests per second (0 for unlimited)")
	flags.StringVar(&monthOrder, "month-order", "asc", "order of the monthly series: asc or desc")
	flags.StringVar(&anthropicKey, "anthropic-api-key", "", "Anthropic API key for category suggestions")

	// Bind flags to viper
	for name, flag := range map[string]string{
		"debug":             "debug",
		"api_url":           "api-url",
		"locale":            "locale",
		"currency":          "currency",
		"session_backend":   "session-backend",
		"session_path":      "session-path",
		"request_timeout":   "request-timeout",
		"rate_limit":        "rate-limit",
		"month_order":       "month-order",
		"anthropic_api_key": "anthropic-api-key",
	} {
		_ = viper.BindPFlag(name, flags.Lookup(flag))
	}

	// Bind environment variables
	viper.SetEnvPrefix("EXPENSEMON")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	_ = viper.BindEnv("anthropic_api_key", "EXPENSEMON_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	// TUI filter flags
	rootCmd.Flags().StringVar(&rootFilter.Type, "type", "", "only show income or expense")
	rootCmd.Flags().StringVar(&rootFilter.Category, "category", "", "only show this category")
	rootCmd.Flags().StringVar(&rootFilter.StartDate, "from", "", "first date to show (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&rootFilter.EndDate, "to", "", "last date to show (YYYY-MM-DD)")

	// Add subcommands
	sessionFn := func() sessionStore { return store }
	authFn := func() authenticator { return client }

	rootCmd.AddCommand(newLoginCmd(authFn, sessionFn))
	rootCmd.AddCommand(newLogoutCmd(sessionFn))
	rootCmd.AddCommand(newRegisterCmd(authFn, sessionFn))
	rootCmd.AddCommand(newStatusCmd(sessionFn))
	rootCmd.AddCommand(newTransactionsCmd(func() transactionsRemote { return client }))
	rootCmd.AddCommand(newCategoriesCmd(
		func() categoriesRemote { return client },
		func() AIProvider {
			if key := currentConfig().AnthropicAPIKey; key != "" {
				return NewAnthropicProvider(key)
			}
			return nil
		},
	))
	rootCmd.AddCommand(newSummaryCmd(func() summaryRemote { return client }))
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Error reading .env file", "error", err)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(appName)
		viper.SetConfigType("toml")
		for _, dir := range configDirs() {
			viper.AddConfigPath(dir)
		}
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		log.Debug("Config file not found or error reading", "error", err)
	} else {
		log.Debug("Using config file", "file", viper.ConfigFileUsed())
	}

	// Update global variables from viper
	flags := rootCmd.PersistentFlags()
	if !flags.Changed("debug") {
		debug = viper.GetBool("debug")
	}
	if !flags.Changed("api-url") {
		apiURL = viper.GetString("api_url")
	}
	if !flags.Changed("locale") {
		locale = viper.GetString("locale")
	}
	if !flags.Changed("currency") {
		currency = viper.GetString("currency")
	}
	if !flags.Changed("session-backend") {
		sessionBackend = viper.GetString("session_backend")
	}
	if !flags.Changed("session-path") {
		sessionPath = viper.GetString("session_path")
	}
	if !flags.Changed("request-timeout") {
		requestTimeout = viper.GetDuration("request_timeout")
	}
	if !flags.Changed("rate-limit") {
		rateLimit = viper.GetFloat64("rate_limit")
	}
	if !flags.Changed("month-order") {
		monthOrder = viper.GetString("month_order")
	}
	if !flags.Changed("anthropic-api-key") {
		anthropicKey = viper.GetString("anthropic_api_key")
	}
}

// Utility functions for output formatting.
func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")

	validFormats := []string{tableOutputFormat, jsonOutputFormat}
	if !slices.Contains(validFormats, format) {
		return "", fmt.Errorf("invalid output format: %s (must be one of %v)", format, validFormats)
	}
	return format, nil
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", tableOutputFormat, "Output format: table or json")
}

func outputJSON(w io.Writer, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(w, string(jsonData))
	return nil
}

func createStyledTable(headers ...string) *table.Table {
	var (
		purple    = lipgloss.Color("99")
		gray      = lipgloss.Color("245")
		lightGray = lipgloss.Color("241")

		headerStyle  = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
		cellStyle    = lipgloss.NewStyle().Padding(0, 1)
		oddRowStyle  = cellStyle.Foreground(gray)
		evenRowStyle = cellStyle.Foreground(lightGray)
	)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers(headers...)
}

package main

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/Rshep3087/expensemon/aggregate"
	"github.com/Rshep3087/expensemon/config"
	"github.com/Rshep3087/expensemon/session"
)

const (
	appName = "expensemon"

	defaultAPIURL         = "http://localhost:8080"
	defaultRequestTimeout = 30 * time.Second
	defaultRateLimit      = 10.0
	rateLimitBurst        = 5

	sessionBackendFile   = "file"
	sessionBackendSQLite = "sqlite"
)

// configDirs returns the directories searched for expensemon.toml, in order
// of precedence (first found wins).
func configDirs() []string {
	// Current directory (highest precedence)
	dirs := []string{"."}

	// User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(configDir, appName))
	}

	// User home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, homeDir, filepath.Join(homeDir, ".config", appName))
	}

	// System-wide config directory (lowest precedence)
	return append(dirs, filepath.Join("/etc", appName))
}

// currentConfig collects the effective settings from flags, environment and
// the config file.
func currentConfig() config.Config {
	cfg := config.Config{
		Debug:           debug,
		APIURL:          cmp.Or(apiURL, defaultAPIURL),
		Locale:          locale,
		Currency:        currency,
		SessionBackend:  cmp.Or(sessionBackend, sessionBackendFile),
		SessionPath:     sessionPath,
		RequestTimeout:  cmp.Or(requestTimeout, defaultRequestTimeout),
		RateLimit:       rateLimit,
		MonthOrder:      monthOrder,
		AnthropicAPIKey: anthropicKey,
	}

	if err := viper.UnmarshalKey("colors", &cfg.Colors); err != nil {
		log.Debug("could not read colors from config", "error", err)
	}

	if cfg.SessionPath == "" {
		cfg.SessionPath = defaultSessionPath(cfg.SessionBackend)
	}

	return cfg
}

// currentCurrency is the configured display currency.
func currentCurrency() string {
	return cmp.Or(currency, aggregate.DefaultCurrency)
}

// defaultSessionPath places the session file next to the user's config.
func defaultSessionPath(backend string) string {
	name := "session.toml"
	if backend == sessionBackendSQLite {
		name = "session.db"
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+appName+"-"+name)
	}
	return filepath.Join(dir, appName, name)
}

// openSessionStorage opens the configured backend. The returned func
// releases it.
func openSessionStorage(cfg config.Config) (session.Storage, func() error, error) {
	switch cfg.SessionBackend {
	case sessionBackendFile:
		return session.NewFileStorage(cfg.SessionPath), func() error { return nil }, nil

	case sessionBackendSQLite:
		s, err := session.NewSQLiteStorage(cfg.SessionPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session database: %w", err)
		}
		return s, s.Close, nil
	}

	return nil, nil, fmt.Errorf("invalid session backend: %s (must be %s or %s)",
		cfg.SessionBackend, sessionBackendFile, sessionBackendSQLite)
}

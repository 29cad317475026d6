package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Config represents the application configuration structure.
type Config struct {
	// Debug enables debug logging
	Debug bool `toml:"debug" mapstructure:"debug"`
	// APIURL is the base URL of the transactions service
	APIURL string `toml:"api_url" mapstructure:"api_url"`
	// Locale selects the language used for month labels
	Locale string `toml:"locale" mapstructure:"locale"`
	// Currency is the ISO code amounts are displayed in
	Currency string `toml:"currency" mapstructure:"currency"`
	// SessionBackend is where the session token is kept: file or sqlite
	SessionBackend string `toml:"session_backend" mapstructure:"session_backend"`
	// SessionPath overrides the default location of the session store
	SessionPath string `toml:"session_path" mapstructure:"session_path"`
	// RequestTimeout bounds every remote request
	RequestTimeout time.Duration `toml:"request_timeout" mapstructure:"request_timeout"`
	// RateLimit is the maximum number of remote requests per second
	RateLimit float64 `toml:"rate_limit" mapstructure:"rate_limit"`
	// MonthOrder is asc or desc
	MonthOrder string `toml:"month_order" mapstructure:"month_order"`
	// AnthropicAPIKey enables category suggestions
	AnthropicAPIKey string `toml:"anthropic_api_key" mapstructure:"anthropic_api_key"`
	// Colors overrides the default theme
	Colors Colors `toml:"colors" mapstructure:"colors"`
}

// Colors holds the theme overrides. Values are hex ("#ff0000") or ANSI ("21") colors.
type Colors struct {
	Primary       string `toml:"primary" mapstructure:"primary"`
	Error         string `toml:"error" mapstructure:"error"`
	Success       string `toml:"success" mapstructure:"success"`
	Warning       string `toml:"warning" mapstructure:"warning"`
	Muted         string `toml:"muted" mapstructure:"muted"`
	Income        string `toml:"income" mapstructure:"income"`
	Expense       string `toml:"expense" mapstructure:"expense"`
	Border        string `toml:"border" mapstructure:"border"`
	Background    string `toml:"background" mapstructure:"background"`
	Text          string `toml:"text" mapstructure:"text"`
	SecondaryText string `toml:"secondary_text" mapstructure:"secondary_text"`
}

// Model represents the config view model.
type Model struct {
	configTable table.Model
}

// New creates a new config view model.
func New() Model {
	configTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "Setting", Width: 20},
			{Title: "Value", Width: 40},
			{Title: "Description", Width: 50},
		}),
	)

	tableStyle := table.DefaultStyles()
	tableStyle.Selected = tableStyle.Selected.
		Foreground(lipgloss.Color("#ffd644"))

	configTable.SetStyles(tableStyle)

	return Model{configTable: configTable}
}

// SetFocus sets the focus state of the config table.
func (m *Model) SetFocus(focus bool) {
	if focus {
		m.configTable.Focus()
	} else {
		m.configTable.Blur()
	}
}

// SetSize sets the size of the config table.
func (m *Model) SetSize(width, height int) {
	m.configTable.SetHeight(height)
	m.configTable.SetWidth(width)
}

func maskSensitiveValue(value string) string {
	if value == "" {
		return "(not set)"
	}

	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}

	return value[:4] + strings.Repeat("*", len(value)-4)
}

func orNotSet(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

// Rows returns the table rows for config.
func Rows(config Config) []table.Row {
	rateLimit := "unlimited"
	if config.RateLimit > 0 {
		rateLimit = strconv.FormatFloat(config.RateLimit, 'f', -1, 64) + "/s"
	}

	return []table.Row{
		{"Debug", strconv.FormatBool(config.Debug), "Enable debug logging"},
		{"API URL", orNotSet(config.APIURL), "Base URL of the transactions service"},
		{"Locale", orNotSet(config.Locale), "Language used for month labels"},
		{"Currency", orNotSet(config.Currency), "Currency amounts are displayed in"},
		{"Session Backend", orNotSet(config.SessionBackend), "Where the session token is stored"},
		{"Session Path", orNotSet(config.SessionPath), "Location of the session store"},
		{"Request Timeout", config.RequestTimeout.String(), "Timeout applied to every request"},
		{"Rate Limit", rateLimit, "Maximum requests per second"},
		{"Month Order", orNotSet(config.MonthOrder), "Order of the monthly series"},
		{"Anthropic API Key", maskSensitiveValue(config.AnthropicAPIKey), "Enables category suggestions"},
	}
}

// SetConfig sets the configuration data for the view.
func (m *Model) SetConfig(config Config) {
	m.configTable.SetRows(Rows(config))
}

// Init initializes the config view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles updates to the config view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.configTable, cmd = m.configTable.Update(msg)
	return m, cmd
}

// View renders the config view.
func (m Model) View() string {
	return m.configTable.View()
}

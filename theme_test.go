package main

import (
	"testing"

	"github.com/carlmjohnson/be"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rshep3087/expensemon/config"
)

func TestNewTheme(t *testing.T) {
	colors := config.Colors{
		Primary:       "#ff0000",
		Error:         "21",
		Success:       "#00ff00",
		Warning:       "33",
		Muted:         "#888888",
		Income:        "#00cc00",
		Expense:       "#cc0000",
		Border:        "#0000ff",
		Background:    "#333333",
		Text:          "#ffffff",
		SecondaryText: "245",
	}

	theme := newTheme(colors)

	be.Equal(t, lipgloss.Color("#ff0000"), theme.Primary)
	be.Equal(t, lipgloss.Color("21"), theme.Error)
	be.Equal(t, lipgloss.Color("#00cc00"), theme.Income)
	be.Equal(t, lipgloss.Color("245"), theme.SecondaryText)
}

func TestNewThemeDefaults(t *testing.T) {
	theme := newTheme(config.Colors{})

	be.Equal(t, lipgloss.Color("#ffd644"), theme.Primary)
	be.Equal(t, lipgloss.Color("#00ff00"), theme.Income)
	be.Equal(t, lipgloss.Color("#ff0000"), theme.Expense)
	be.Equal(t, "#ffd644", theme.monthlyColors().Primary)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name         string
		colorStr     string
		defaultColor string
		expected     lipgloss.Color
	}{
		{"hex color", "#ff0000", "#000000", lipgloss.Color("#ff0000")},
		{"ansi color", "21", "#000000", lipgloss.Color("21")},
		{"empty string", "", "#000000", lipgloss.Color("#000000")},
		{"invalid color still accepted", "invalid", "#000000", lipgloss.Color("invalid")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, tt.expected, parseColor(tt.colorStr, tt.defaultColor))
		})
	}
}

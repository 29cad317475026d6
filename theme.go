package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rshep3087/expensemon/config"
	"github.com/Rshep3087/expensemon/monthly"
	"github.com/Rshep3087/expensemon/overview"
)

// Theme contains all the colors used throughout the application.
type Theme struct {
	Primary       lipgloss.Color
	Error         lipgloss.Color
	Success       lipgloss.Color
	Warning       lipgloss.Color
	Muted         lipgloss.Color
	Income        lipgloss.Color
	Expense       lipgloss.Color
	Border        lipgloss.Color
	Background    lipgloss.Color
	Text          lipgloss.Color
	SecondaryText lipgloss.Color
}

// newTheme creates a Theme from config.Colors.
func newTheme(colors config.Colors) Theme {
	return Theme{
		Primary:       parseColor(colors.Primary, "#ffd644"),
		Error:         parseColor(colors.Error, "#ff0000"),
		Success:       parseColor(colors.Success, "#22ba46"),
		Warning:       parseColor(colors.Warning, "#e05951"),
		Muted:         parseColor(colors.Muted, "#7f7d78"),
		Income:        parseColor(colors.Income, "#00ff00"),
		Expense:       parseColor(colors.Expense, "#ff0000"),
		Border:        parseColor(colors.Border, "#7D56F4"),
		Background:    parseColor(colors.Background, "#7D56F4"),
		Text:          parseColor(colors.Text, "#FAFAFA"),
		SecondaryText: parseColor(colors.SecondaryText, "#888888"),
	}
}

// parseColor returns colorStr as a lipgloss.Color, or defaultColor when it is empty.
// lipgloss accepts both hex ("#ff0000") and ANSI ("21") values.
func parseColor(colorStr, defaultColor string) lipgloss.Color {
	if colorStr == "" {
		return lipgloss.Color(defaultColor)
	}
	return lipgloss.Color(colorStr)
}

// overviewStyles applies the theme to the dashboard panels.
func (t Theme) overviewStyles() overview.Styles {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(1, 2)

	return overview.Styles{
		IncomeStyle:  lipgloss.NewStyle().Foreground(t.Income),
		SpentStyle:   lipgloss.NewStyle().Foreground(t.Expense),
		MutedStyle:   lipgloss.NewStyle().Foreground(t.Muted),
		ErrorStyle:   lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		WarningStyle: lipgloss.NewStyle().Foreground(t.Warning),
		SummaryStyle: panel,
		PanelStyle:   panel,
	}
}

func (t Theme) monthlyColors() monthly.Colors {
	return monthly.Colors{Primary: string(t.Primary)}
}

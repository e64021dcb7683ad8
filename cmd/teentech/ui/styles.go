// Package ui provides the terminal interface for the Teen Tech client:
// four pages (registration, login, lesson browser, upload) behind a small
// router, styled with the platform's color palette.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Teen Tech palette
var (
	ColorPrimary = lipgloss.Color("#2196F3") // Blue, headings and focus
	ColorAccent  = lipgloss.Color("#4CAF50") // Green, actions
	ColorError   = lipgloss.Color("#e53935") // Red
	ColorWarning = lipgloss.Color("#FFC107") // Yellow
	ColorMutedL  = lipgloss.Color("#6b7280")
	ColorMutedD  = lipgloss.Color("#9ca3af")
	ColorBorderL = lipgloss.Color("#d1d5db")
	ColorBorderD = lipgloss.Color("#374151")
)

// Theme holds the current color scheme.
type Theme struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
	IsDark  bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Primary: ColorPrimary,
		Accent:  ColorAccent,
		Muted:   ColorMutedL,
		Border:  ColorBorderL,
		Error:   ColorError,
		Warning: ColorWarning,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Primary: ColorPrimary,
		Accent:  ColorAccent,
		Muted:   ColorMutedD,
		Border:  ColorBorderD,
		Error:   ColorError,
		Warning: ColorWarning,
		IsDark:  true,
	}
}

// ThemeByName resolves a configured theme name, defaulting to dark.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

// Styles bundles the lipgloss styles used across pages.
type Styles struct {
	Theme Theme

	Header   lipgloss.Style // page titles
	Label    lipgloss.Style // form field labels
	Focused  lipgloss.Style // focused field marker
	Muted    lipgloss.Style // hints, footers
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Selected lipgloss.Style // highlighted list row
	Item     lipgloss.Style // plain list row
	Box      lipgloss.Style // page content frame
}

// NewStyles builds the style set for a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Theme:    t,
		Header:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:    lipgloss.NewStyle().Foreground(t.Primary),
		Focused:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(t.Muted),
		Error:    lipgloss.NewStyle().Foreground(t.Error),
		Success:  lipgloss.NewStyle().Foreground(t.Accent),
		Warning:  lipgloss.NewStyle().Foreground(t.Warning),
		Selected: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Item:     lipgloss.NewStyle(),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2),
	}
}

// DefaultStyles returns styles for the default theme.
func DefaultStyles() Styles {
	return NewStyles(DarkTheme())
}

package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme and styling
type Theme struct {
	Name string

	// Background colors
	Background lipgloss.Color
	Foreground lipgloss.Color

	// UI elements
	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Cursor        lipgloss.Color
	Muted         lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Number is the color of values printed beside bars
	Number lipgloss.Color

	// Table colors
	TableHeader      lipgloss.Color
	TableRowSelected lipgloss.Color

	// Series is the palette bars are drawn with, cycled per series
	Series []lipgloss.Color
}

// SeriesColor returns the color for the i-th series
func (t Theme) SeriesColor(i int) lipgloss.Color {
	if len(t.Series) == 0 {
		return t.Foreground
	}
	return t.Series[i%len(t.Series)]
}

// Names lists the built-in themes
func Names() []string {
	return []string{"default", "catppuccin-mocha"}
}

// GetTheme returns a theme by name. Unknown names fall back to the default.
func GetTheme(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMochaTheme()
	default:
		return DefaultTheme()
	}
}

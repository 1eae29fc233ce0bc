package theme

import "github.com/charmbracelet/lipgloss"

// CatppuccinMochaTheme returns the Catppuccin Mocha theme
// Based on: https://github.com/catppuccin/catppuccin
func CatppuccinMochaTheme() Theme {
	return Theme{
		Name: "catppuccin-mocha",

		Background: lipgloss.Color("#1e1e2e"), // Base
		Foreground: lipgloss.Color("#cdd6f4"), // Text

		Border:        lipgloss.Color("#45475a"), // Surface1
		BorderFocused: lipgloss.Color("#89b4fa"), // Blue
		Cursor:        lipgloss.Color("#f5e0dc"), // Rosewater
		Muted:         lipgloss.Color("#6c7086"), // Overlay0

		Success: lipgloss.Color("#a6e3a1"), // Green
		Warning: lipgloss.Color("#f9e2af"), // Yellow
		Error:   lipgloss.Color("#f38ba8"), // Red
		Info:    lipgloss.Color("#89dceb"), // Sky

		Number: lipgloss.Color("#fab387"), // Peach

		TableHeader:      lipgloss.Color("#89b4fa"), // Blue
		TableRowSelected: lipgloss.Color("#313244"), // Surface0

		Series: []lipgloss.Color{
			"#89b4fa", // Blue
			"#a6e3a1", // Green
			"#fab387", // Peach
			"#cba6f7", // Mauve
			"#94e2d5", // Teal
			"#f38ba8", // Red
		},
	}
}

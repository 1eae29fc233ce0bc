package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Sunsu-Sulution/bear-vault/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of key bindings
type Section struct {
	Title string
	Keys  []KeyBinding
}

// GetPreviewKeys returns the chart preview key bindings
func GetPreviewKeys() []KeyBinding {
	return []KeyBinding{
		{"s", "Cycle sort key"},
		{"o", "Toggle sort order"},
		{"r", "Reset sort to the chart's own"},
		{"y", "Copy SQL to clipboard"},
		{"tab", "Switch between chart and data"},
	}
}

// GetNavigationKeys returns navigation key bindings
func GetNavigationKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k", "Move up"},
		{"↓/j", "Move down"},
		{"pgup/pgdn", "Page up or down"},
		{"g/G", "Jump to first or last row"},
	}
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, ctrl+c", "Quit"},
	}
}

// Sections lists every help section in display order
func Sections() []Section {
	return []Section{
		{"Preview", GetPreviewKeys()},
		{"Navigation", GetNavigationKeys()},
		{"Global", GetGlobalKeys()},
	}
}

// ShortHelp is the one-line hint shown in the status bar
func ShortHelp() string {
	return "s sort • o order • y copy SQL • ? help • q quit"
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder
	b.WriteString(titleStyle.Render("bearvault - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, s := range Sections() {
		b.WriteString(sectionStyle.Render(s.Title))
		b.WriteString("\n")
		for _, kb := range s.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2)
	if width > 4 && height > 4 {
		boxStyle = boxStyle.Width(width - 4).Height(height - 4)
	}

	return boxStyle.Render(b.String())
}

package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/theme"
)

const (
	maxLabelWidth = 24
	minBarWidth   = 10
	barGlyph      = "█"
)

// BarChart draws an aggregated result as horizontal bars. Grouped results
// stack one colored segment per series.
type BarChart struct {
	Result models.Result
	Width  int
	Theme  theme.Theme
}

// View renders the chart
func (c BarChart) View() string {
	if len(c.Result.Points) == 0 {
		return lipgloss.NewStyle().Foreground(c.Theme.Muted).Render("No data")
	}

	series := c.Result.Series
	if len(series) == 0 {
		series = []string{models.ValueSeries}
	}

	labelW, valueW := 0, 0
	totals := make([]float64, len(c.Result.Points))
	labels := make([]string, len(c.Result.Points))
	var peak float64
	for i, p := range c.Result.Points {
		for _, s := range series {
			if v := p.Values[s]; v > 0 {
				totals[i] += v
			}
		}
		peak = math.Max(peak, totals[i])
		labels[i] = truncate(p.Name, maxLabelWidth)
		labelW = max(labelW, lipgloss.Width(labels[i]))
		valueW = max(valueW, lipgloss.Width(models.AsString(total(p, series))))
	}

	barW := c.Width - labelW - valueW - 2
	if barW < minBarWidth {
		barW = minBarWidth
	}

	labelStyle := lipgloss.NewStyle().Width(labelW).Foreground(c.Theme.Foreground)
	valueStyle := lipgloss.NewStyle().Foreground(c.Theme.Number)

	var b strings.Builder
	for i, p := range c.Result.Points {
		b.WriteString(labelStyle.Render(labels[i]))
		b.WriteString(" ")
		drawn := 0
		for si, s := range series {
			v := p.Values[s]
			if v <= 0 || peak == 0 {
				continue
			}
			n := int(math.Round(v / peak * float64(barW)))
			n = min(n, barW-drawn)
			if n <= 0 {
				continue
			}
			drawn += n
			b.WriteString(lipgloss.NewStyle().Foreground(c.Theme.SeriesColor(si)).Render(strings.Repeat(barGlyph, n)))
		}
		b.WriteString(strings.Repeat(" ", barW-drawn+1))
		b.WriteString(valueStyle.Render(models.AsString(total(p, series))))
		if i < len(c.Result.Points)-1 {
			b.WriteString("\n")
		}
	}

	if c.Result.Grouped {
		b.WriteString("\n\n")
		b.WriteString(c.legend(series))
	}
	return b.String()
}

func (c BarChart) legend(series []string) string {
	items := make([]string, 0, len(series))
	for i, s := range series {
		swatch := lipgloss.NewStyle().Foreground(c.Theme.SeriesColor(i)).Render("■")
		items = append(items, swatch+" "+s)
	}
	return strings.Join(items, "  ")
}

func total(p models.Point, series []string) float64 {
	var sum float64
	for _, s := range series {
		sum += p.Values[s]
	}
	return sum
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

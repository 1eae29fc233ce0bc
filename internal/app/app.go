package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Sunsu-Sulution/bear-vault/internal/chart"
	"github.com/Sunsu-Sulution/bear-vault/internal/dashboard"
	"github.com/Sunsu-Sulution/bear-vault/internal/export"
	"github.com/Sunsu-Sulution/bear-vault/internal/infer"
	"github.com/Sunsu-Sulution/bear-vault/internal/models"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/components"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/help"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/theme"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	maxCellWidth  = 30
	nullText      = "NULL"
)

// Pane identifies which panel receives navigation keys
type Pane int

const (
	ChartPane Pane = iota
	DataPane
)

// CopyFunc places text on the clipboard
type CopyFunc func(string) error

// App is the chart preview: the aggregated chart above the data it came from.
// Sorting is re-applied locally without querying the source again.
type App struct {
	out      *dashboard.Output
	theme    theme.Theme
	pipeline *chart.Pipeline
	copy     CopyFunc

	spec     models.ChartSpec
	sortKeys []string
	sortIdx  int
	types    map[string]models.FieldType

	result *models.Result
	rows   []models.Row
	table  table.Model

	width    int
	height   int
	focus    Pane
	showHelp bool
	status   string
	failed   bool
}

// Option configures the preview
type Option func(*App)

// WithTheme sets the color theme
func WithTheme(th theme.Theme) Option {
	return func(a *App) { a.theme = th }
}

// WithLocation sets the time zone used to bucket and sort dates
func WithLocation(loc *time.Location) Option {
	return func(a *App) {
		if loc != nil {
			a.pipeline = chart.New(loc)
		}
	}
}

// WithClipboard overrides how the SQL is copied
func WithClipboard(fn CopyFunc) Option {
	return func(a *App) {
		if fn != nil {
			a.copy = fn
		}
	}
}

// New creates a preview for a finished chart run
func New(out *dashboard.Output, opts ...Option) *App {
	a := &App{
		out:      out,
		theme:    theme.DefaultTheme(),
		pipeline: chart.New(time.UTC),
		copy:     clipboard.WriteAll,
		spec:     out.Chart.Spec,
		width:    defaultWidth,
		height:   defaultHeight,
	}
	for _, o := range opts {
		o(a)
	}
	if a.isTable() {
		a.focus = DataPane
	}

	a.types = make(map[string]models.FieldType)
	a.sortKeys = a.availableSortKeys()
	for k, t := range infer.NewCache(out.Rows, time.UTC).Types(a.sortKeys[1:]...) {
		a.types[k] = t
	}
	for k, t := range out.Types {
		a.types[k] = t
	}
	a.sortIdx = a.indexOf(a.spec.SortBy)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Foreground(a.theme.TableHeader).
		BorderForeground(a.theme.Border).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(a.theme.Foreground).
		Background(a.theme.TableRowSelected).
		Bold(false)
	a.table = table.New(table.WithFocused(a.focus == DataPane))
	a.table.SetStyles(styles)

	a.rebuild()
	a.layout()
	return a
}

func (a *App) isTable() bool {
	return a.out.Chart.Kind == dashboard.KindTable
}

// availableSortKeys lists what the sort can cycle through. The first entry
// is always "" meaning the natural order.
func (a *App) availableSortKeys() []string {
	keys := []string{""}
	if a.isTable() {
		return append(keys, a.tableColumns()...)
	}
	if g := a.spec.GroupKey(); g != "" {
		keys = append(keys, g)
	}
	if a.out.Result != nil && a.out.Result.Grouped {
		keys = append(keys, a.out.Result.Series...)
		if a.spec.YAxisKey != "" {
			keys = append(keys, a.spec.YAxisKey)
		}
		return keys
	}
	return append(keys, models.ValueSeries)
}

func (a *App) tableColumns() []string {
	if len(a.spec.Columns) > 0 {
		return a.spec.Columns
	}
	return a.out.Columns
}

// indexOf finds key among the sort keys, adding it when the chart sorts by
// something the cycle would not otherwise offer
func (a *App) indexOf(key string) int {
	for i, k := range a.sortKeys {
		if strings.EqualFold(k, key) {
			return i
		}
	}
	a.sortKeys = append(a.sortKeys, key)
	return len(a.sortKeys) - 1
}

// rebuild re-sorts the data under the current spec and refreshes the table
func (a *App) rebuild() {
	var g export.Grid
	switch a.out.Chart.Kind {
	case dashboard.KindTable:
		a.rows = a.pipeline.Table(a.out.Rows, a.spec, a.types)
		g = export.RowsGrid(a.tableColumns(), a.rows, nullText)
	case dashboard.KindPie:
		res := a.pipeline.Pie(a.out.Rows, a.spec, a.types)
		a.result = &res
		g = export.ResultGrid(res)
	default:
		res := a.pipeline.Aggregate(a.out.Rows, a.spec, a.types)
		a.result = &res
		g = export.ResultGrid(res)
	}

	columns := make([]table.Column, len(g.Header))
	for i, h := range g.Header {
		w := lipgloss.Width(h)
		for _, row := range g.Rows {
			w = max(w, lipgloss.Width(row[i]))
		}
		columns[i] = table.Column{Title: h, Width: min(w, maxCellWidth)}
	}
	rows := make([]table.Row, len(g.Rows))
	for i, r := range g.Rows {
		rows[i] = table.Row(r)
	}

	// Rows must never be wider than the columns while they are swapped.
	a.table.SetRows(nil)
	a.table.SetColumns(columns)
	a.table.SetRows(rows)
}

func (a *App) layout() {
	avail := max(a.height-3, 4)
	if a.isTable() {
		a.table.SetHeight(max(avail-3, 1))
		return
	}
	a.table.SetHeight(max(avail-a.chartHeight()-6, 1))
}

// chartHeight is the number of content lines the bar chart gets
func (a *App) chartHeight() int {
	avail := max(a.height-3, 4)
	n := 1
	if a.result != nil {
		n = max(len(a.result.Points), 1)
		if a.result.Grouped {
			n += 2
		}
	}
	return min(n, avail/2)
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.showHelp {
			switch msg.String() {
			case "?", "esc", "q":
				a.showHelp = false
			case "ctrl+c":
				return a, tea.Quit
			}
			return a, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "?":
			a.showHelp = true
			return a, nil
		case "s":
			a.sortIdx = (a.sortIdx + 1) % len(a.sortKeys)
			a.applySort()
			return a, nil
		case "o":
			if a.spec.SortOrder == models.Desc {
				a.spec.SortOrder = models.Asc
			} else {
				a.spec.SortOrder = models.Desc
			}
			a.applySort()
			return a, nil
		case "r":
			a.spec = a.out.Chart.Spec
			a.sortIdx = a.indexOf(a.spec.SortBy)
			a.applySort()
			return a, nil
		case "y":
			a.copySQL()
			return a, nil
		case "tab":
			if !a.isTable() {
				if a.focus == ChartPane {
					a.focus = DataPane
					a.table.Focus()
				} else {
					a.focus = ChartPane
					a.table.Blur()
				}
			}
			return a, nil
		}

		if a.focus == DataPane {
			var cmd tea.Cmd
			a.table, cmd = a.table.Update(msg)
			return a, cmd
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.table.SetWidth(max(a.width-4, 10))
		a.layout()
	}
	return a, nil
}

func (a *App) applySort() {
	a.spec.SortBy = a.sortKeys[a.sortIdx]
	a.rebuild()
	a.layout()
	a.setStatus(false, "Sorted by %s", a.sortLabel())
}

func (a *App) copySQL() {
	sql := a.out.SQL()
	if err := a.copy(sql); err != nil {
		a.setStatus(true, "Copy failed: %v", err)
		return
	}
	a.setStatus(false, "Copied SQL to clipboard")
}

func (a *App) setStatus(failed bool, format string, args ...any) {
	a.failed = failed
	a.status = fmt.Sprintf(format, args...)
}

func (a *App) sortLabel() string {
	if a.spec.SortBy == "" {
		return "natural order"
	}
	order := a.spec.SortOrder
	if order != models.Desc {
		order = models.Asc
	}
	return fmt.Sprintf("%s %s", a.spec.SortBy, order)
}

// Spec returns the chart spec as currently sorted
func (a *App) Spec() models.ChartSpec {
	return a.spec
}

// Result returns the aggregated result on screen. Nil for table charts.
func (a *App) Result() *models.Result {
	return a.result
}

// Rows returns the sorted rows on screen for table charts
func (a *App) Rows() []models.Row {
	return a.rows
}

// Status returns the last status message and whether it reports a failure
func (a *App) Status() (string, bool) {
	return a.status, a.failed
}

// View implements tea.Model
func (a *App) View() string {
	if a.showHelp {
		return help.Render(a.width, a.height, a.theme)
	}

	topBar := lipgloss.NewStyle().
		Bold(true).
		Foreground(a.theme.Background).
		Background(a.theme.BorderFocused).
		Padding(0, 1).
		Width(a.width).
		Render(fmt.Sprintf("%s · %s · %s", a.out.Chart.Title, a.out.Chart.Kind, a.out.Chart.Source.Connection))

	sqlLine := lipgloss.NewStyle().
		Foreground(a.theme.Muted).
		MaxWidth(a.width).
		Render(strings.Join(strings.Fields(a.out.SQL()), " "))

	panelWidth := max(a.width-2, 10)
	var body []string
	if !a.isTable() {
		bars := components.BarChart{Width: panelWidth - 2, Theme: a.theme}
		if a.result != nil {
			bars.Result = *a.result
		}
		chartPanel := components.Panel{
			Title:   "Chart",
			Content: bars.View(),
			Width:   panelWidth,
			Height:  a.chartHeight() + 1,
			Focused: a.focus == ChartPane,
			Theme:   a.theme,
		}
		body = append(body, chartPanel.View())
	}
	dataPanel := components.Panel{
		Title:   "Data",
		Content: a.table.View(),
		Width:   panelWidth,
		Height:  a.table.Height() + 2,
		Focused: a.focus == DataPane,
		Theme:   a.theme,
	}
	body = append(body, dataPanel.View())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		topBar,
		sqlLine,
		lipgloss.JoinVertical(lipgloss.Left, body...),
		a.statusBar(),
	)
}

func (a *App) statusBar() string {
	count := len(a.out.Rows)
	if a.result != nil {
		count = len(a.result.Points)
	}
	left := fmt.Sprintf(" %d rows · %s · sort: %s", count, a.out.Duration.Round(time.Millisecond), a.sortLabel())

	right := lipgloss.NewStyle().Foreground(a.theme.Muted).Render(help.ShortHelp())
	if a.status != "" {
		color := a.theme.Success
		if a.failed {
			color = a.theme.Error
		}
		right = lipgloss.NewStyle().Foreground(color).Render(a.status)
	}

	spacing := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}
	return left + strings.Repeat(" ", spacing) + right
}

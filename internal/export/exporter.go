package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-faster/errors"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/theme"
)

// Format selects an output encoding
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
)

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatTable:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", errors.Errorf("unknown output format %q", s)
	}
}

// Grid is a rectangular text rendering of a result or a row set
type Grid struct {
	Header []string
	Rows   [][]string
}

// ResultGrid lays out an aggregated result: name first, then one column per series
func ResultGrid(res models.Result) Grid {
	g := Grid{Header: append([]string{models.NameKey}, res.Series...)}
	for _, p := range res.Points {
		row := make([]string, 0, len(g.Header))
		row = append(row, p.Name)
		for _, s := range res.Series {
			v, ok := p.Values[s]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, models.AsString(v))
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

// RowsGrid lays out raw rows in column order. Nil cells render as null.
func RowsGrid(columns []string, rows []models.Row, null string) Grid {
	g := Grid{Header: columns}
	for _, r := range rows {
		line := make([]string, len(columns))
		for i, c := range columns {
			v := r.Get(c)
			if v == nil {
				line[i] = null
				continue
			}
			line[i] = models.AsString(v)
		}
		g.Rows = append(g.Rows, line)
	}
	return g
}

// WriteCSV writes the grid with its header row
func WriteCSV(w io.Writer, g Grid) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(g.Header); err != nil {
		return errors.Wrap(err, "write CSV header")
	}
	for _, row := range g.Rows {
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "write CSV row")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "flush CSV")
	}
	return nil
}

// WriteJSON writes v pretty printed
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal JSON")
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write JSON")
	}
	return nil
}

// RenderTable draws the grid as a bordered terminal table
func RenderTable(g Grid, th theme.Theme) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(th.TableHeader).Padding(0, 1)
	even := lipgloss.NewStyle().Foreground(th.Foreground).Padding(0, 1)
	odd := even.Foreground(th.Cursor)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(th.Border)).
		Headers(g.Header...).
		Rows(g.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case row%2 == 0:
				return even
			default:
				return odd
			}
		})
	return t.Render()
}

// ExportToCSV writes the grid to a CSV file
func ExportToCSV(g Grid, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create CSV file")
	}
	defer func() { _ = file.Close() }()
	return WriteCSV(file, g)
}

// ExportToJSON writes v to a JSON file
func ExportToJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal JSON")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write JSON file")
	}
	return nil
}

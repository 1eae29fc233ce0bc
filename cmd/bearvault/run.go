package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sunsu-Sulution/bear-vault/internal/dashboard"
	"github.com/Sunsu-Sulution/bear-vault/internal/export"
	"github.com/Sunsu-Sulution/bear-vault/internal/models"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/theme"
)

type runOptions struct {
	format  string
	output  string
	filters []string
	showSQL bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <dashboard.yaml> [chart]",
		Short: "Run a dashboard's charts and print their data",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			filters, err := parseFilters(opts.filters)
			if err != nil {
				return err
			}
			m, err := dashboard.NewManager(args[0])
			if err != nil {
				return err
			}
			d := m.Dashboard()

			charts := d.Charts
			if len(args) == 2 {
				c, err := d.Chart(args[1])
				if err != nil {
					return err
				}
				charts = []dashboard.Chart{*c}
			}

			e := root.openEnv()
			defer e.Close()

			var outputs []*dashboard.Output
			for _, c := range charts {
				ctx, cancel := e.withTimeout(cmd.Context())
				out, err := e.runner.Run(ctx, dashboard.Request{Dashboard: d.Name, Chart: c, Filters: filters})
				cancel()
				if err != nil {
					return errors.Wrapf(err, "chart %q", c.Title)
				}
				e.lg.Info("Chart ran",
					zap.String("chart", c.Title),
					zap.Int("rows", len(out.Rows)),
					zap.Duration("duration", out.Duration),
				)
				outputs = append(outputs, out)
			}

			if opts.output != "" {
				return writeOutputFile(opts.output, format, outputs)
			}
			return printOutputs(cmd.OutOrStdout(), format, theme.GetTheme(root.cfg.UI.Theme), outputs, opts.showSQL)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format: json, csv or table")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "extra rule as field:operator[:value]; repeatable")
	cmd.Flags().BoolVar(&opts.showSQL, "sql", false, "print each chart's SQL above its data")
	return cmd
}

// chartDocument is the JSON shape of one chart's data
type chartDocument struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Kind   dashboard.Kind `json:"kind"`
	SQL    string         `json:"sql"`
	Result *models.Result `json:"result,omitempty"`
	Rows   []models.Row   `json:"rows,omitempty"`
}

func document(out *dashboard.Output) chartDocument {
	doc := chartDocument{
		ID:     out.Chart.ID,
		Title:  out.Chart.Title,
		Kind:   out.Chart.Kind,
		SQL:    out.SQL(),
		Result: out.Result,
	}
	if out.Result == nil {
		doc.Rows = out.Rows
	}
	return doc
}

func grid(out *dashboard.Output) export.Grid {
	if out.Result != nil {
		return export.ResultGrid(*out.Result)
	}
	columns := out.Chart.Spec.Columns
	if len(columns) == 0 {
		columns = out.Columns
	}
	return export.RowsGrid(columns, out.Rows, "")
}

func printOutputs(w io.Writer, format export.Format, th theme.Theme, outputs []*dashboard.Output, showSQL bool) error {
	if format == export.FormatJSON {
		docs := make([]chartDocument, 0, len(outputs))
		for _, out := range outputs {
			docs = append(docs, document(out))
		}
		if len(docs) == 1 {
			return export.WriteJSON(w, docs[0])
		}
		return export.WriteJSON(w, docs)
	}

	for i, out := range outputs {
		if len(outputs) > 1 {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return errors.Wrap(err, "write")
				}
			}
			if _, err := fmt.Fprintf(w, "# %s\n", out.Chart.Title); err != nil {
				return errors.Wrap(err, "write")
			}
		}
		if showSQL {
			if _, err := fmt.Fprintf(w, "-- %s\n", out.SQL()); err != nil {
				return errors.Wrap(err, "write")
			}
		}
		if format == export.FormatCSV {
			if err := export.WriteCSV(w, grid(out)); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(w, export.RenderTable(grid(out), th)); err != nil {
			return errors.Wrap(err, "write")
		}
	}
	return nil
}

// writeOutputFile exports a single chart to path. JSON files hold every
// chart; CSV needs exactly one.
func writeOutputFile(path string, format export.Format, outputs []*dashboard.Output) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	switch format {
	case export.FormatJSON:
		docs := make([]chartDocument, 0, len(outputs))
		for _, out := range outputs {
			docs = append(docs, document(out))
		}
		if len(docs) == 1 {
			return export.ExportToJSON(docs[0], path)
		}
		return export.ExportToJSON(docs, path)
	case export.FormatCSV:
		if len(outputs) != 1 {
			return errors.Errorf("csv output holds one chart, got %d", len(outputs))
		}
		return export.ExportToCSV(grid(outputs[0]), path)
	default:
		return errors.New("--output needs --format json or csv")
	}
}

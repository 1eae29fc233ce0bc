package main

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sunsu-Sulution/bear-vault/internal/export"
	"github.com/Sunsu-Sulution/bear-vault/internal/history"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/theme"
)

type historyOptions struct {
	limit  int
	search string
	chart  string
	format string
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	opts := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently executed chart queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			store, err := root.openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			var entries []history.HistoryEntry
			switch {
			case opts.chart != "":
				entries, err = store.ForChart(ctx, opts.chart, opts.limit)
			case opts.search != "":
				entries, err = store.Search(ctx, opts.search, opts.limit)
			default:
				entries, err = store.GetRecent(ctx, opts.limit)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch f {
			case export.FormatJSON:
				return export.WriteJSON(w, entries)
			case export.FormatCSV:
				return export.WriteCSV(w, historyGrid(entries, root.loc))
			}
			_, err = w.Write([]byte(export.RenderTable(historyGrid(entries, root.loc), theme.GetTheme(root.cfg.UI.Theme)) + "\n"))
			return err
		},
	}
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "maximum entries")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "only queries containing this text")
	cmd.Flags().StringVar(&opts.chart, "chart", "", "only runs of this chart id")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format: json, csv or table")
	return cmd
}

func historyGrid(entries []history.HistoryEntry, loc *time.Location) export.Grid {
	g := export.Grid{Header: []string{"executed", "dashboard", "chart", "connection", "rows", "duration", "status", "query"}}
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = e.ErrorMessage
		}
		g.Rows = append(g.Rows, []string{
			e.ExecutedAt.In(loc).Format("2006-01-02 15:04:05"),
			e.Dashboard,
			e.ChartID,
			e.ConnectionName,
			strconv.FormatInt(e.RowsReturned, 10),
			e.Duration.Round(time.Millisecond).String(),
			status,
			e.Query,
		})
	}
	return g
}

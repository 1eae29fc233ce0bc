package main

import (
	"github.com/spf13/cobra"

	"github.com/Sunsu-Sulution/bear-vault/internal/dashboard"
	"github.com/Sunsu-Sulution/bear-vault/internal/export"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/theme"
)

func newChartsCmd(root *rootOptions) *cobra.Command {
	var search, format string
	cmd := &cobra.Command{
		Use:   "charts <dashboard.yaml>",
		Short: "List the charts of a dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			m, err := dashboard.NewManager(args[0])
			if err != nil {
				return err
			}
			charts := m.Search(search)

			w := cmd.OutOrStdout()
			if f == export.FormatJSON {
				return export.WriteJSON(w, charts)
			}
			g := chartsGrid(charts)
			if f == export.FormatCSV {
				return export.WriteCSV(w, g)
			}
			_, err = w.Write([]byte(export.RenderTable(g, theme.GetTheme(root.cfg.UI.Theme)) + "\n"))
			return err
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only charts whose title or source contains this text")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: json, csv or table")
	return cmd
}

func chartsGrid(charts []dashboard.Chart) export.Grid {
	g := export.Grid{Header: []string{"id", "title", "kind", "connection", "source"}}
	for _, c := range charts {
		source := c.Source.Table
		if source == "" {
			source = "(sql)"
		}
		g.Rows = append(g.Rows, []string{c.ID, c.Title, string(c.Kind), c.Source.Connection, source})
	}
	return g
}

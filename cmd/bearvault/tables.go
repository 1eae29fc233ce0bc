package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sunsu-Sulution/bear-vault/internal/db/metadata"
	"github.com/Sunsu-Sulution/bear-vault/internal/export"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/theme"
)

func newTablesCmd(root *rootOptions) *cobra.Command {
	var schema string
	cmd := &cobra.Command{
		Use:   "tables <connection> [table]",
		Short: "List tables of a connection, or the columns of one table",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := root.openEnv()
			defer e.Close()

			ctx, cancel := e.withTimeout(cmd.Context())
			defer cancel()
			src, err := e.sources.Get(ctx, args[0])
			if err != nil {
				return err
			}

			var g export.Grid
			if len(args) == 2 {
				columns, err := metadata.GetTableColumns(ctx, src, args[1])
				if err != nil {
					return err
				}
				g.Header = []string{"column", "type"}
				for _, c := range columns {
					g.Rows = append(g.Rows, []string{c.Name, c.DataType})
				}
			} else {
				tables, err := metadata.ListTables(ctx, src, schema)
				if err != nil {
					return err
				}
				g.Header = []string{"table", "type"}
				for _, t := range tables {
					g.Rows = append(g.Rows, []string{t.QualifiedName(), t.Type})
				}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), export.RenderTable(g, theme.GetTheme(root.cfg.UI.Theme)))
			return err
		},
	}
	cmd.Flags().StringVarP(&schema, "schema", "s", "", "schema (PostgreSQL) or database (MySQL) to list")
	return cmd
}

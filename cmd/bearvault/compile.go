package main

import (
	"fmt"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/Sunsu-Sulution/bear-vault/internal/db/query"
	"github.com/Sunsu-Sulution/bear-vault/internal/export"
	"github.com/Sunsu-Sulution/bear-vault/internal/filter"
	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

type compileOptions struct {
	dialect string
	table   string
	limit   int
	now     string
	format  string
	filters []string
}

func newCompileCmd(root *rootOptions) *cobra.Command {
	opts := &compileOptions{}
	cmd := &cobra.Command{
		Use:   "compile [rules.yaml|-]",
		Short: "Compile filter rules into a parameterized WHERE clause",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rules []models.FilterRule
			if len(args) == 1 {
				r, err := readRulesFile(args[0])
				if err != nil {
					return err
				}
				rules = r
			}
			extra, err := parseFilters(opts.filters)
			if err != nil {
				return err
			}
			return runCompile(cmd.OutOrStdout(), root, opts, append(rules, extra...))
		},
	}
	cmd.Flags().StringVarP(&opts.dialect, "dialect", "d", string(models.PostgreSQL), "SQL dialect: postgresql or mysql")
	cmd.Flags().StringVarP(&opts.table, "table", "t", "", "emit a full SELECT against this table")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "LIMIT for the SELECT (0 for none)")
	cmd.Flags().StringVar(&opts.now, "now", "", "evaluate date windows at this RFC 3339 instant")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format: table or json")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "extra rule as field:operator[:value]")
	return cmd
}

func runCompile(w io.Writer, root *rootOptions, opts *compileOptions, rules []models.FilterRule) error {
	dialect, err := models.ParseDialect(opts.dialect)
	if err != nil {
		return err
	}

	fopts := []filter.Option{filter.WithLocation(root.loc), filter.WithLogger(root.lg)}
	if opts.now != "" {
		at, err := time.Parse(time.RFC3339, opts.now)
		if err != nil {
			return errors.Wrap(err, "parse --now")
		}
		fopts = append(fopts, filter.WithClock(func() time.Time { return at }))
	}
	b, err := filter.NewBuilder(dialect, fopts...)
	if err != nil {
		return err
	}
	clause := b.Compile(rules)

	stmt := query.Statement{SQL: clause.String(), Params: clause.Params}
	if opts.table != "" {
		stmt, err = query.BuildSelect(dialect, opts.table, nil, clause, opts.limit)
		if err != nil {
			return err
		}
	}

	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	switch format {
	case export.FormatJSON:
		return export.WriteJSON(w, map[string]any{
			"dialect": dialect,
			"sql":     stmt.SQL,
			"params":  nonNil(stmt.Params),
		})
	case export.FormatCSV:
		return errors.New("compile does not support csv output")
	}

	if _, err := fmt.Fprintln(w, stmt.SQL); err != nil {
		return errors.Wrap(err, "write SQL")
	}
	for i, p := range stmt.Params {
		if _, err := fmt.Fprintf(w, "  %s = %s\n", placeholder(dialect, i+1), models.AsString(p)); err != nil {
			return errors.Wrap(err, "write params")
		}
	}
	return nil
}

func placeholder(d models.Dialect, n int) string {
	if d == models.PostgreSQL {
		return fmt.Sprintf("$%d", n)
	}
	return fmt.Sprintf("?%d", n)
}

func nonNil(params []any) []any {
	if params == nil {
		return []any{}
	}
	return params
}

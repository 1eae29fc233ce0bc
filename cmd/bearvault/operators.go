package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Sunsu-Sulution/bear-vault/internal/export"
	"github.com/Sunsu-Sulution/bear-vault/internal/filter"
	"github.com/Sunsu-Sulution/bear-vault/internal/models"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/theme"
)

// operatorRow is one operator as listed for a field type
type operatorRow struct {
	Type     models.FieldType  `json:"type"`
	Operator models.OperatorID `json:"operator"`
	Arity    int               `json:"arity"`
	Default  bool              `json:"default"`
}

func newOperatorsCmd(root *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "operators [number|date|string]",
		Short: "List the filter operators available for each field type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			types := []models.FieldType{models.TypeString, models.TypeNumber, models.TypeDate}
			if len(args) == 1 {
				t, err := models.ParseFieldType(args[0])
				if err != nil {
					return err
				}
				types = []models.FieldType{t}
			}

			rows := operatorRows(types)
			w := cmd.OutOrStdout()
			switch f {
			case export.FormatJSON:
				return export.WriteJSON(w, rows)
			case export.FormatCSV:
				return export.WriteCSV(w, operatorsGrid(rows))
			}
			_, err = w.Write([]byte(export.RenderTable(operatorsGrid(rows), theme.GetTheme(root.cfg.UI.Theme)) + "\n"))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: json, csv or table")
	return cmd
}

func operatorRows(types []models.FieldType) []operatorRow {
	var rows []operatorRow
	for _, t := range types {
		def := filter.DefaultOperator(t)
		for _, op := range filter.OperatorsFor(t) {
			rows = append(rows, operatorRow{Type: t, Operator: op, Arity: filter.Arity(op), Default: op == def})
		}
	}
	return rows
}

func operatorsGrid(rows []operatorRow) export.Grid {
	g := export.Grid{Header: []string{"type", "operator", "values", "default"}}
	for _, r := range rows {
		def := ""
		if r.Default {
			def = "*"
		}
		g.Rows = append(g.Rows, []string{string(r.Type), string(r.Operator), strconv.Itoa(r.Arity), def})
	}
	return g
}

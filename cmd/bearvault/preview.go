package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/Sunsu-Sulution/bear-vault/internal/app"
	"github.com/Sunsu-Sulution/bear-vault/internal/dashboard"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/theme"
)

func newPreviewCmd(root *rootOptions) *cobra.Command {
	var filters []string
	cmd := &cobra.Command{
		Use:   "preview <dashboard.yaml> <chart>",
		Short: "Run one chart and explore it in the terminal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := parseFilters(filters)
			if err != nil {
				return err
			}
			m, err := dashboard.NewManager(args[0])
			if err != nil {
				return err
			}
			d := m.Dashboard()
			c, err := d.Chart(args[1])
			if err != nil {
				return err
			}

			e := root.openEnv()
			defer e.Close()

			ctx, cancel := e.withTimeout(cmd.Context())
			out, err := e.runner.Run(ctx, dashboard.Request{Dashboard: d.Name, Chart: *c, Filters: rules})
			cancel()
			if err != nil {
				return err
			}

			model := app.New(out,
				app.WithTheme(theme.GetTheme(root.cfg.UI.Theme)),
				app.WithLocation(root.loc),
			)
			popts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(cmd.Context())}
			if root.cfg.UI.MouseEnabled {
				popts = append(popts, tea.WithMouseCellMotion())
			}
			if _, err := tea.NewProgram(model, popts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return errors.Wrap(err, "run preview")
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "extra rule as field:operator[:value]; repeatable")
	return cmd
}

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/Sunsu-Sulution/bear-vault/internal/db/connection"
	"github.com/Sunsu-Sulution/bear-vault/internal/export"
	"github.com/Sunsu-Sulution/bear-vault/internal/models"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/theme"
)

func newConnectionsCmd(root *rootOptions) *cobra.Command {
	var ping bool
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"conn"},
		Short:   "List configured connections",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := root.openEnv()
			defer e.Close()

			if ping {
				for _, c := range root.cfg.Connections {
					if _, err := e.sources.Get(cmd.Context(), c.Name); err != nil {
						continue
					}
					_ = e.sources.Ping(cmd.Context(), c.Name)
				}
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(),
				export.RenderTable(connectionsGrid(e.sources.GetAll()), theme.GetTheme(root.cfg.UI.Theme)))
			return err
		},
	}
	cmd.Flags().BoolVarP(&ping, "ping", "p", false, "open and ping every connection")

	cmd.AddCommand(newSetPasswordCmd(root), newForgetPasswordCmd(root))
	return cmd
}

func connectionsGrid(conns []models.Connection) export.Grid {
	g := export.Grid{Header: []string{"name", "driver", "address", "database", "state", "error"}}
	for _, c := range conns {
		var msg string
		if c.Error != nil {
			msg = c.Error.Error()
		}
		g.Rows = append(g.Rows, []string{
			c.ID,
			string(c.Config.Driver),
			c.Config.Address(),
			c.Config.Database,
			c.State.String(),
			msg,
		})
	}
	return g
}

func newSetPasswordCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-password <name>",
		Short: "Store a connection password in the system keyring (read from stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := root.cfg.Connection(args[0]); !ok {
				return errors.Errorf("connection %q is not configured", args[0])
			}
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.Wrap(err, "read password")
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New("empty password")
			}
			return connection.SavePassword(args[0], password)
		},
	}
}

func newForgetPasswordCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forget-password <name>",
		Short: "Remove a connection password from the system keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := root.cfg.Connection(args[0]); !ok {
				return errors.Errorf("connection %q is not configured", args[0])
			}
			return connection.DeletePassword(args[0])
		},
	}
}

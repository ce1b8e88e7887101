package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/courses-api/pkg/database"
)

func newMigrateCmd(rt *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(database.Up), string(database.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := database.Direction(args[0])
			if dir != database.Up && dir != database.Down {
				return fmt.Errorf("unknown migration direction %q", args[0])
			}
			return database.Migrate(rt.cfg.Database, dir, rt.logger)
		},
	}
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/certflow/core/rollback"
)

func newRollbackCommand(app *appContext) *cobra.Command {
	var checkpoints int

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Undo recent configuration changes",
		Long: `Rollback restores the files recorded in the most recent configuration
checkpoints, newest first, and restarts the server when a restart command is
configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd)
			if err != nil {
				return err
			}

			registry, err := app.newRegistry()
			if err != nil {
				return err
			}
			coordinator, err := rollback.NewCoordinator(registry, cfg, rollback.WithLogger(app.logger))
			if err != nil {
				return err
			}
			if err := coordinator.Rollback(cmd.Context(), checkpoints); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if checkpoints <= 0 {
				fmt.Fprintln(out, "Nothing to roll back.")
				return nil
			}
			plural := "s"
			if checkpoints == 1 {
				plural = ""
			}
			fmt.Fprintf(out, "Rolled back %d checkpoint%s.\n", checkpoints, plural)
			return nil
		},
	}

	cmd.Flags().IntVar(&checkpoints, "checkpoints", 1, "Number of checkpoints to revert")

	return cmd
}

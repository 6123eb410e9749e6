package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/certflow/core/checkpoint"
)

func newCheckpointsCommand(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "List configuration checkpoints, newest first",
		Long: `Checkpoints lists the configuration snapshots taken before certificate
deployments. Sequence 0 is the snapshot a single rollback would restore.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd)
			if err != nil {
				return err
			}

			store, err := checkpoint.NewStore(cfg.CheckpointsDir(), checkpoint.WithLogger(app.logger))
			if err != nil {
				return err
			}
			checkpoints, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(checkpoints) == 0 {
				fmt.Fprintln(out, "No checkpoints.")
				return nil
			}

			for _, cp := range checkpoints {
				note := cp.Note
				if note == "" {
					note = "(no note)"
				}
				fmt.Fprintf(out, "%3d  %s  %s  %s\n", cp.Seq, cp.ID, cp.CreatedAt.Format(time.RFC3339), note)
				for _, file := range cp.Files {
					fmt.Fprintf(out, "     %s\n", file)
				}
			}
			return nil
		},
	}

	return cmd
}

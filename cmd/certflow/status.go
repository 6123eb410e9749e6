package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/certflow/core/renewal"
)

func newStatusCommand(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [name]",
		Short: "Show renewal and deployment settings for stored certificates",
		Long: `Status reads the renewal configuration of every stored certificate, or of
the named one, and reports whether automatic renewal and deployment are
enabled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd)
			if err != nil {
				return err
			}

			dir := cfg.RenewalConfigsDir()
			names := args
			if len(names) == 0 {
				names, err = renewal.List(dir)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No certificates found.")
				return nil
			}

			for i, name := range names {
				rcfg, err := renewal.Load(dir, name)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, rcfg.Name)
				fmt.Fprintf(out, "  domains: %s\n", strings.Join(rcfg.Domains, ", "))
				if rcfg.CertPath != "" {
					fmt.Fprintf(out, "  certificate: %s\n", rcfg.CertPath)
				}
				fmt.Fprintf(out, "  %s\n", renewal.ReportStatus(rcfg))
			}
			return nil
		},
	}

	return cmd
}

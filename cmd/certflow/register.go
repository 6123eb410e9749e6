package main

import (
	"crypto"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/certflow/core/account"
	"github.com/dmitrymomot/certflow/core/ca"
	"github.com/dmitrymomot/certflow/core/config"
	"github.com/dmitrymomot/certflow/core/issuer"
)

func newRegisterCommand(app *appContext) *cobra.Command {
	var agreeTOS bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register an account with the certificate authority",
		Long: `Register generates an account key and signs it up with the configured ACME
authority. When an account is already stored it is reused and no request is
made. The authority's terms of service are shown for confirmation unless
--agree-tos is passed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd)
			if err != nil {
				return err
			}

			acct, err := registerAccount(cmd, cfg, agreeTOS)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account registered: %s\n", acct.Registration.URI)
			return nil
		},
	}

	cmd.Flags().BoolVar(&agreeTOS, "agree-tos", false, "Agree to the authority's terms of service without prompting")

	return cmd
}

// registerAccount returns the stored account or registers a new one. The
// terms prompt only appears for a fresh registration without --agree-tos.
func registerAccount(cmd *cobra.Command, cfg *config.Config, agreeTOS bool) (*account.Account, error) {
	store, err := account.NewFileStore(cfg.AccountsDir())
	if err != nil {
		return nil, err
	}

	factory := func(key crypto.Signer) (issuer.RegistrationClient, error) {
		return ca.New(ca.Config{
			DirectoryURL: cfg.Server,
			Key:          key,
			UserAgent:    userAgent(),
		})
	}

	terms := func(tosURL string) bool {
		if agreeTOS {
			return true
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Terms of service: %s\n", tosURL)
		return confirm(cmd, "Do you agree to the terms of service?", false)
	}

	return issuer.Register(cmd.Context(), cfg, store, factory, terms)
}

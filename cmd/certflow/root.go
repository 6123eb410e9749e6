package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/certflow/core/authz"
	"github.com/dmitrymomot/certflow/core/checkpoint"
	"github.com/dmitrymomot/certflow/core/config"
	"github.com/dmitrymomot/certflow/core/plugin"
	"github.com/dmitrymomot/certflow/integration/installer/command"
	"github.com/dmitrymomot/certflow/integration/solver/dns"
	"github.com/dmitrymomot/certflow/integration/solver/standalone"
	"github.com/dmitrymomot/certflow/integration/solver/webroot"
)

// Version is stamped at build time.
var Version = "dev"

// appContext carries the logger and the persistent flag values shared by all
// commands.
type appContext struct {
	logger *slog.Logger

	server    string
	email     string
	configDir string
	workDir   string
}

func newRootCommand(logger *slog.Logger) *cobra.Command {
	app := &appContext{logger: logger}

	cmd := &cobra.Command{
		Use:   "certflow",
		Short: "Obtain and deploy TLS certificates from an ACME authority",
		Long: `Certflow registers an account with an ACME certificate authority, proves
control of domains through pluggable challenge solvers, and obtains
certificates. Issued material is archived under the configuration directory
and the current certificate is kept under the live directory.

Configuration comes from CERTFLOW_* environment variables (a .env file is
loaded when present); flags override individual settings.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&app.server, "server", "", "ACME directory URL")
	cmd.PersistentFlags().StringVar(&app.email, "email", "", "Contact email for the account")
	cmd.PersistentFlags().StringVar(&app.configDir, "config-dir", "", "Directory for keys, certificates, and accounts")
	cmd.PersistentFlags().StringVar(&app.workDir, "work-dir", "", "Directory for checkpoints and temporary state")

	cmd.AddCommand(
		newRegisterCommand(app),
		newObtainCommand(app),
		newStatusCommand(app),
		newCheckpointsCommand(app),
		newRollbackCommand(app),
	)

	return cmd
}

// loadConfig reads the environment configuration and applies the persistent
// flags the user set on top.
func (a *appContext) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server = a.server
	}
	if flags.Changed("email") {
		cfg.Email = a.email
	}
	if flags.Changed("config-dir") {
		cfg.ConfigDir = a.configDir
	}
	if flags.Changed("work-dir") {
		cfg.WorkDir = a.workDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newRegistry assembles the built-in solvers and the command installer. The
// installer is always registered so rollback can undo checkpoints even when
// no restart command is configured.
func (a *appContext) newRegistry() (*plugin.Registry, error) {
	registry := plugin.NewRegistry()

	solvers := map[string]plugin.SolverFactory{
		"standalone": func(_ context.Context, cfg *config.Config) (authz.Solver, error) {
			opts := []standalone.Option{
				standalone.WithAddress(cfg.HTTPAddress),
				standalone.WithLogger(a.logger),
			}
			if cfg.HTTPProxyHeader != "" {
				opts = append(opts, standalone.WithProxyHeader(cfg.HTTPProxyHeader))
			}
			return standalone.New(opts...)
		},
		"webroot": func(_ context.Context, cfg *config.Config) (authz.Solver, error) {
			return webroot.New(cfg.WebrootDir, webroot.WithLogger(a.logger))
		},
		"dns-cloudflare": func(_ context.Context, cfg *config.Config) (authz.Solver, error) {
			return dns.NewCloudflare(cfg.CloudflareAPIToken,
				dns.WithPropagationWait(cfg.DNSPropagationWait),
				dns.WithLogger(a.logger))
		},
	}
	for name, factory := range solvers {
		if err := registry.RegisterSolver(name, factory); err != nil {
			return nil, err
		}
	}

	if err := registry.RegisterInstaller("command", func(_ context.Context, cfg *config.Config) (plugin.Installer, error) {
		store, err := checkpoint.NewStore(cfg.CheckpointsDir(), checkpoint.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		return command.New(store, cfg.RestartCommand, command.WithLogger(a.logger))
	}); err != nil {
		return nil, err
	}

	return registry, nil
}

func userAgent() string {
	return "certflow/" + Version
}

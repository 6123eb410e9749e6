package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/certflow/core/authz"
	"github.com/dmitrymomot/certflow/core/ca"
	"github.com/dmitrymomot/certflow/core/checkpoint"
	"github.com/dmitrymomot/certflow/core/config"
	"github.com/dmitrymomot/certflow/core/issuer"
	"github.com/dmitrymomot/certflow/core/renewal"
	"github.com/dmitrymomot/certflow/integration/installer/command"
	"github.com/dmitrymomot/certflow/pkg/keyutil"
)

type obtainRequest struct {
	domains    []string
	csrPath    string
	certName   string
	deployPath string
	autoRenew  bool
	autoDeploy bool
	agreeTOS   bool
}

func newObtainCommand(app *appContext) *cobra.Command {
	var (
		req           obtainRequest
		useStandalone bool
		webrootDir    string
		useCloudflare bool
		noAutoRenew   bool
		noAutoDeploy  bool
	)

	cmd := &cobra.Command{
		Use:   "obtain",
		Short: "Obtain a certificate and record its renewal parameters",
		Long: `Obtain proves control of the requested domains through the chosen challenge
solver, asks the authority to issue, archives the certificate under the
configuration directory, and installs the current material under the live
directory.

Domains come either from --domains or from an existing signing request passed
with --csr. Without a stored account one is registered first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(req.domains) == 0 && req.csrPath == "" {
				return fmt.Errorf("either --domains or --csr is required")
			}

			cfg, err := app.loadConfig(cmd)
			if err != nil {
				return err
			}
			switch {
			case useStandalone:
				cfg.Solver = "standalone"
			case webrootDir != "":
				cfg.Solver = "webroot"
				cfg.WebrootDir = webrootDir
			case useCloudflare:
				cfg.Solver = "dns-cloudflare"
			}
			req.autoRenew = !noAutoRenew
			req.autoDeploy = !noAutoDeploy

			return runObtain(cmd, app, cfg, req)
		},
	}

	cmd.Flags().StringSliceVarP(&req.domains, "domains", "d", nil, "Domains to certify, first becomes the certificate name")
	cmd.Flags().StringVar(&req.csrPath, "csr", "", "Path to an existing certificate signing request (PEM or DER)")
	cmd.Flags().StringVar(&req.certName, "cert-name", "", "Certificate lineage name (default: first domain)")
	cmd.Flags().BoolVar(&useStandalone, "standalone", false, "Answer challenges with the built-in listener")
	cmd.Flags().StringVarP(&webrootDir, "webroot", "w", "", "Answer challenges by writing under this site root")
	cmd.Flags().BoolVar(&useCloudflare, "dns-cloudflare", false, "Answer challenges with Cloudflare DNS records")
	cmd.Flags().StringVar(&req.deployPath, "deploy-path", "", "Write the full chain to this path and restart the server")
	cmd.Flags().BoolVar(&noAutoRenew, "no-autorenew", false, "Do not renew the certificate automatically")
	cmd.Flags().BoolVar(&noAutoDeploy, "no-autodeploy", false, "Do not deploy renewed certificates automatically")
	cmd.Flags().BoolVar(&req.agreeTOS, "agree-tos", false, "Agree to the authority's terms of service without prompting")
	cmd.MarkFlagsMutuallyExclusive("domains", "csr")
	cmd.MarkFlagsMutuallyExclusive("standalone", "webroot", "dns-cloudflare")

	return cmd
}

func runObtain(cmd *cobra.Command, app *appContext, cfg *config.Config, req obtainRequest) error {
	ctx := cmd.Context()

	acct, err := registerAccount(cmd, cfg, req.agreeTOS)
	if err != nil {
		return err
	}

	client, err := ca.New(ca.Config{
		DirectoryURL: cfg.Server,
		Key:          acct.Key,
		UserAgent:    userAgent(),
	})
	if err != nil {
		return err
	}

	registry, err := app.newRegistry()
	if err != nil {
		return err
	}
	solver, err := registry.Solver(ctx, cfg, cfg.Solver)
	if err != nil {
		return err
	}

	coordinator, err := authz.NewCoordinator(client, solver,
		authz.WithMaxConcurrent(cfg.AuthzMaxConcurrent),
		authz.WithPollTimeout(cfg.AuthzPollTimeout),
		authz.WithPollInterval(cfg.AuthzPollInterval),
		authz.WithLogger(app.logger))
	if err != nil {
		return err
	}

	iss, err := issuer.New(cfg, client, coordinator, issuer.WithLogger(app.logger))
	if err != nil {
		return err
	}

	result, err := obtainResult(ctx, iss, req)
	if err != nil {
		return err
	}

	domains, err := keyutil.ExtractDomains(result.CSR.DER)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(req.certName)
	if name == "" {
		name = strings.TrimPrefix(domains[0], "*.")
	}

	certPath, chainPath, err := issuer.SaveCertificate(result, cfg.CertDir())
	if err != nil {
		return err
	}
	live, err := issuer.InstallLive(result, cfg.LiveDir(), name)
	if err != nil {
		return err
	}

	rcfg := &renewal.Config{
		Name:              name,
		Domains:           domains,
		AutoRenew:         req.autoRenew,
		AutoDeploy:        req.autoDeploy,
		CertPath:          live.Cert,
		KeyPath:           live.PrivKey,
		ChainPath:         live.Chain,
		RenewalConfigsDir: cfg.RenewalConfigsDir(),
	}
	if err := renewal.Save(rcfg); err != nil {
		return err
	}

	if req.deployPath != "" {
		if err := deployFullChain(ctx, app, cfg, result, name, req.deployPath); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Certificate obtained for %s\n", strings.Join(domains, ", "))
	fmt.Fprintf(out, "  certificate: %s\n", certPath)
	if chainPath != "" {
		fmt.Fprintf(out, "  chain:       %s\n", chainPath)
	}
	fmt.Fprintf(out, "  live:        %s\n", live.FullChain)
	if live.PrivKey != "" {
		fmt.Fprintf(out, "  private key: %s\n", live.PrivKey)
	}
	if req.deployPath != "" {
		fmt.Fprintf(out, "  deployed to: %s\n", req.deployPath)
	}
	fmt.Fprintln(out, renewal.ReportStatus(rcfg))
	return nil
}

func obtainResult(ctx context.Context, iss *issuer.Issuer, req obtainRequest) (*issuer.Result, error) {
	if req.csrPath != "" {
		csr, err := keyutil.LoadCSR(req.csrPath)
		if err != nil {
			return nil, err
		}
		return iss.ObtainCertificateFromCSR(ctx, csr)
	}
	return iss.ObtainCertificate(ctx, req.domains)
}

// deployFullChain writes the issued chain to the server's certificate path
// through the command installer, checkpointing the previous content first so
// rollback can restore it.
func deployFullChain(ctx context.Context, app *appContext, cfg *config.Config, result *issuer.Result, name, path string) error {
	fullChain, err := issuer.FullChainPEM(result)
	if err != nil {
		return err
	}

	store, err := checkpoint.NewStore(cfg.CheckpointsDir(), checkpoint.WithLogger(app.logger))
	if err != nil {
		return err
	}
	inst, err := command.New(store, cfg.RestartCommand, command.WithLogger(app.logger))
	if err != nil {
		return err
	}

	if err := inst.Apply(ctx, "deploy certificate "+name, path, fullChain); err != nil {
		return err
	}
	return inst.Restart(ctx)
}

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certflow/core/checkpoint"
	"github.com/dmitrymomot/certflow/core/config"
	"github.com/dmitrymomot/certflow/core/renewal"
	"github.com/dmitrymomot/certflow/integration/solver/dns"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// execute runs the CLI with args against fresh command state and returns
// everything written to its output streams.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(discardLogger())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ConfigDir = t.TempDir()
	cfg.WorkDir = t.TempDir()
	return &cfg
}

func TestNewRegistryNames(t *testing.T) {
	t.Parallel()

	app := &appContext{logger: discardLogger()}
	registry, err := app.newRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{"dns-cloudflare", "standalone", "webroot"}, registry.SolverNames())
	assert.Equal(t, []string{"command"}, registry.InstallerNames())
}

func TestRegistryBuildsSolvers(t *testing.T) {
	t.Parallel()

	app := &appContext{logger: discardLogger()}
	registry, err := app.newRegistry()
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.WebrootDir = t.TempDir()
	cfg.CloudflareAPIToken = "cf-test-token"

	ctx := context.Background()
	for _, name := range registry.SolverNames() {
		solver, err := registry.Solver(ctx, cfg, name)
		require.NoError(t, err, "solver %s", name)
		require.NotNil(t, solver, "solver %s", name)
	}
}

func TestRegistrySurfacesSolverConfigErrors(t *testing.T) {
	t.Parallel()

	app := &appContext{logger: discardLogger()}
	registry, err := app.newRegistry()
	require.NoError(t, err)

	// No API token configured.
	cfg := testConfig(t)
	_, err = registry.Solver(context.Background(), cfg, "dns-cloudflare")
	assert.ErrorIs(t, err, dns.ErrMissingAPIToken)
}

func TestRegistryBuildsCommandInstaller(t *testing.T) {
	t.Parallel()

	app := &appContext{logger: discardLogger()}
	registry, err := app.newRegistry()
	require.NoError(t, err)

	cfg := testConfig(t)
	installer, err := registry.PickInstaller(context.Background(), cfg, "")
	require.NoError(t, err)
	require.NotNil(t, installer)
}

func TestObtainRequiresDomainsOrCSR(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "obtain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--domains or --csr")
}

func TestObtainSolverFlagsMutuallyExclusive(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "obtain", "-d", "example.com", "--standalone", "--dns-cloudflare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestStatusNoCertificates(t *testing.T) {
	out, err := execute(t, "status",
		"--config-dir", t.TempDir(),
		"--work-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No certificates found.")
}

func TestStatusReportsStoredCertificates(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, renewal.Save(&renewal.Config{
		Name:              "example.com",
		Domains:           []string{"example.com", "www.example.com"},
		AutoRenew:         true,
		AutoDeploy:        false,
		CertPath:          "/live/example.com/cert.pem",
		RenewalConfigsDir: cfg.RenewalConfigsDir(),
	}))
	require.NoError(t, renewal.Save(&renewal.Config{
		Name:              "other.org",
		Domains:           []string{"other.org"},
		AutoRenew:         false,
		AutoDeploy:        false,
		RenewalConfigsDir: cfg.RenewalConfigsDir(),
	}))

	out, err := execute(t, "status",
		"--config-dir", cfg.ConfigDir,
		"--work-dir", cfg.WorkDir)
	require.NoError(t, err)
	assert.Contains(t, out, "example.com")
	assert.Contains(t, out, "domains: example.com, www.example.com")
	assert.Contains(t, out, "Automatic renewal but not automatic deployment has been enabled")
	assert.Contains(t, out, "other.org")
	assert.Contains(t, out, "has not been enabled")
}

func TestStatusSingleCertificate(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, renewal.Save(&renewal.Config{
		Name:              "example.com",
		Domains:           []string{"example.com"},
		AutoRenew:         true,
		AutoDeploy:        true,
		RenewalConfigsDir: cfg.RenewalConfigsDir(),
	}))

	out, err := execute(t, "status", "example.com",
		"--config-dir", cfg.ConfigDir,
		"--work-dir", cfg.WorkDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Automatic renewal and deployment has been enabled")

	_, err = execute(t, "status", "missing.example",
		"--config-dir", cfg.ConfigDir,
		"--work-dir", cfg.WorkDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, renewal.ErrConfigNotFound)
}

func TestCheckpointsEmpty(t *testing.T) {
	out, err := execute(t, "checkpoints",
		"--config-dir", t.TempDir(),
		"--work-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No checkpoints.")
}

func TestCheckpointsListsStack(t *testing.T) {
	cfg := testConfig(t)
	target := filepath.Join(t.TempDir(), "site.conf")
	require.NoError(t, os.WriteFile(target, []byte("server {}\n"), 0o644))

	store, err := checkpoint.NewStore(cfg.CheckpointsDir())
	require.NoError(t, err)
	cp, err := store.Create(context.Background(), "deploy certificate example.com", []string{target})
	require.NoError(t, err)

	out, err := execute(t, "checkpoints",
		"--config-dir", cfg.ConfigDir,
		"--work-dir", cfg.WorkDir)
	require.NoError(t, err)
	assert.Contains(t, out, cp.ID)
	assert.Contains(t, out, "deploy certificate example.com")
	assert.Contains(t, out, target)
}

func TestRollbackZeroIsNoop(t *testing.T) {
	out, err := execute(t, "rollback", "--checkpoints", "0",
		"--config-dir", t.TempDir(),
		"--work-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to roll back.")
}

func TestRollbackRestoresCheckpointedFile(t *testing.T) {
	cfg := testConfig(t)
	target := filepath.Join(t.TempDir(), "site.conf")
	require.NoError(t, os.WriteFile(target, []byte("original\n"), 0o644))

	store, err := checkpoint.NewStore(cfg.CheckpointsDir())
	require.NoError(t, err)
	_, err = store.Create(context.Background(), "deploy", []string{target})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(target, []byte("replaced\n"), 0o644))

	out, err := execute(t, "rollback",
		"--config-dir", cfg.ConfigDir,
		"--work-dir", cfg.WorkDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Rolled back 1 checkpoint.")

	restored, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(restored))
}

func TestRollbackDeeperThanStackFails(t *testing.T) {
	_, err := execute(t, "rollback", "--checkpoints", "3",
		"--config-dir", t.TempDir(),
		"--work-dir", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, checkpoint.ErrInsufficientCheckpoints)
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		defaultYes bool
		want       bool
	}{
		{"yes", "y\n", false, true},
		{"yes word", "yes\n", false, true},
		{"no", "n\n", true, false},
		{"empty default no", "\n", false, false},
		{"empty default yes", "\n", true, true},
		{"eof default no", "", false, false},
		{"eof default yes", "", true, true},
		{"uppercase", "Y\n", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd := newRootCommand(discardLogger())
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetIn(strings.NewReader(tt.input))
			assert.Equal(t, tt.want, confirm(cmd, "Proceed?", tt.defaultYes))
		})
	}
}

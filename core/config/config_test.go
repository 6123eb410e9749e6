package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certflow/core/config"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{
			name:   "valid defaults",
			mutate: func(c *config.Config) {},
		},
		{
			name:    "missing server",
			mutate:  func(c *config.Config) { c.Server = "" },
			wantErr: config.ErrMissingServer,
		},
		{
			name:    "unparseable server",
			mutate:  func(c *config.Config) { c.Server = "http://[::1" },
			wantErr: config.ErrInvalidServer,
		},
		{
			name:    "missing config dir",
			mutate:  func(c *config.Config) { c.ConfigDir = "  " },
			wantErr: config.ErrMissingConfigDir,
		},
		{
			name:    "missing work dir",
			mutate:  func(c *config.Config) { c.WorkDir = "" },
			wantErr: config.ErrMissingWorkDir,
		},
		{
			name:    "key size below minimum",
			mutate:  func(c *config.Config) { c.RSAKeySize = 1024 },
			wantErr: config.ErrKeySizeTooSmall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestServerPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		server string
		want   string
	}{
		{
			name:   "production directory",
			server: "https://acme-v02.api.letsencrypt.org/directory",
			want:   filepath.Join("acme-v02.api.letsencrypt.org", "directory"),
		},
		{
			name:   "staging directory",
			server: "https://acme-staging-v02.api.letsencrypt.org/directory",
			want:   filepath.Join("acme-staging-v02.api.letsencrypt.org", "directory"),
		},
		{
			name:   "trailing slash trimmed",
			server: "https://ca.internal/acme/",
			want:   filepath.Join("ca.internal", "acme"),
		},
		{
			name:   "bare host",
			server: "https://ca.internal",
			want:   "ca.internal",
		},
		{
			name:   "schemeless fallback",
			server: "ca.internal/acme/directory",
			want:   filepath.Join("ca.internal", "acme", "directory"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			cfg.Server = tt.server
			assert.Equal(t, tt.want, cfg.ServerPath())
		})
	}
}

func TestDerivedDirectories(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.ConfigDir = "/etc/certflow"
	cfg.WorkDir = "/var/lib/certflow"
	cfg.Server = "https://acme-v02.api.letsencrypt.org/directory"

	assert.Equal(t, filepath.Join("/etc/certflow", "accounts", "acme-v02.api.letsencrypt.org", "directory"), cfg.AccountsDir())
	assert.Equal(t, filepath.Join("/etc/certflow", "keys"), cfg.KeyDir())
	assert.Equal(t, filepath.Join("/etc/certflow", "certs"), cfg.CertDir())
	assert.Equal(t, filepath.Join("/etc/certflow", "renewal"), cfg.RenewalConfigsDir())
	assert.Equal(t, filepath.Join("/etc/certflow", "archive"), cfg.ArchiveDir())
	assert.Equal(t, filepath.Join("/etc/certflow", "live"), cfg.LiveDir())
	assert.Equal(t, filepath.Join("/var/lib/certflow", "backups"), cfg.CheckpointsDir())
	assert.Equal(t, filepath.Join("/var/lib/certflow", "tmp"), cfg.TempDir())
}

func TestAccountsDirSeparatesAuthorities(t *testing.T) {
	t.Parallel()

	prod := config.DefaultConfig()
	prod.Server = "https://acme-v02.api.letsencrypt.org/directory"

	staging := config.DefaultConfig()
	staging.Server = "https://acme-staging-v02.api.letsencrypt.org/directory"

	assert.NotEqual(t, prod.AccountsDir(), staging.AccountsDir())
}

func TestContact(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	assert.Nil(t, cfg.Contact())

	cfg.Email = " admin@example.com "
	assert.Equal(t, []string{"mailto:admin@example.com"}, cfg.Contact())
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MinRSAKeySize is the smallest RSA key size accepted for account and
// certificate keys. Smaller keys are rejected by public ACME authorities.
const MinRSAKeySize = 2048

// Directory names under ConfigDir and WorkDir. The layout is stable: renewal
// configurations and the checkpoint store reference these paths on disk, so
// changing them invalidates existing installations.
const (
	accountsDirName       = "accounts"
	keysDirName           = "keys"
	certsDirName          = "certs"
	renewalConfigsDirName = "renewal"
	archiveDirName        = "archive"
	liveDirName           = "live"
	backupsDirName        = "backups"
	tempDirName           = "tmp"
)

// Config holds engine configuration with environment variable support.
// Directory accessors derive the full on-disk layout from ConfigDir, WorkDir,
// and the ACME directory URL, so accounts registered against different
// authorities never collide.
type Config struct {
	// Server is the ACME directory URL of the certificate authority.
	Server string `env:"CERTFLOW_SERVER" envDefault:"https://acme-v02.api.letsencrypt.org/directory"`

	// Email is the account contact address sent to the authority on registration.
	Email string `env:"CERTFLOW_EMAIL" envDefault:""`

	// ConfigDir holds long-lived state: accounts, keys, certificates, renewal configs.
	ConfigDir string `env:"CERTFLOW_CONFIG_DIR" envDefault:"/etc/certflow"`

	// WorkDir holds transient state: checkpoint backups and temporary files.
	WorkDir string `env:"CERTFLOW_WORK_DIR" envDefault:"/var/lib/certflow"`

	// RSAKeySize is the bit size for generated account and certificate keys.
	RSAKeySize int `env:"CERTFLOW_RSA_KEY_SIZE" envDefault:"2048"`

	// Installer selects the installer plugin by name. Empty means none configured.
	Installer string `env:"CERTFLOW_INSTALLER" envDefault:""`

	// Solver selects the challenge solver plugin by name.
	Solver string `env:"CERTFLOW_SOLVER" envDefault:"standalone"`

	// WebrootDir is the document root the webroot solver writes challenge
	// responses under. Required only when Solver is "webroot".
	WebrootDir string `env:"CERTFLOW_WEBROOT_DIR" envDefault:""`

	// HTTPAddress is the bind address for the standalone http-01 listener.
	HTTPAddress string `env:"CERTFLOW_HTTP_ADDRESS" envDefault:":80"`

	// HTTPProxyHeader is the header the standalone listener matches hosts on
	// when validation traffic arrives through a proxy.
	HTTPProxyHeader string `env:"CERTFLOW_HTTP_PROXY_HEADER" envDefault:""`

	// CloudflareAPIToken authenticates the Cloudflare dns-01 solver.
	CloudflareAPIToken string `env:"CERTFLOW_CLOUDFLARE_API_TOKEN" envDefault:""`

	// DNSPropagationWait pauses dns-01 presentations until planted records
	// have had time to propagate. Zero relies on the authority's own retries.
	DNSPropagationWait time.Duration `env:"CERTFLOW_DNS_PROPAGATION_WAIT" envDefault:"0s"`

	// RestartCommand reloads the managed server after a deployment or a
	// configuration rollback, e.g. "nginx -s reload".
	RestartCommand string `env:"CERTFLOW_RESTART_COMMAND" envDefault:""`

	// Authorization tunables.
	AuthzMaxConcurrent int           `env:"CERTFLOW_AUTHZ_MAX_CONCURRENT" envDefault:"4"`
	AuthzPollTimeout   time.Duration `env:"CERTFLOW_AUTHZ_POLL_TIMEOUT" envDefault:"90s"`
	AuthzPollInterval  time.Duration `env:"CERTFLOW_AUTHZ_POLL_INTERVAL" envDefault:"2s"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		Server:             "https://acme-v02.api.letsencrypt.org/directory",
		ConfigDir:          "/etc/certflow",
		WorkDir:            "/var/lib/certflow",
		RSAKeySize:         MinRSAKeySize,
		Solver:             "standalone",
		HTTPAddress:        ":80",
		AuthzMaxConcurrent: 4,
		AuthzPollTimeout:   90 * time.Second,
		AuthzPollInterval:  2 * time.Second,
	}
}

// Validate checks that the configuration can drive the engine.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return ErrMissingServer
	}
	if _, err := url.Parse(c.Server); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidServer, c.Server, err)
	}
	if strings.TrimSpace(c.ConfigDir) == "" {
		return ErrMissingConfigDir
	}
	if strings.TrimSpace(c.WorkDir) == "" {
		return ErrMissingWorkDir
	}
	if c.RSAKeySize < MinRSAKeySize {
		return fmt.Errorf("%w: got %d, need at least %d", ErrKeySizeTooSmall, c.RSAKeySize, MinRSAKeySize)
	}
	return nil
}

// ServerPath converts the ACME directory URL into a relative filesystem path
// (host plus URL path, slashes mapped to the OS separator). Account state for
// different authorities lives under different subtrees.
func (c Config) ServerPath() string {
	u, err := url.Parse(c.Server)
	if err != nil || u.Host == "" {
		trimmed := strings.NewReplacer("https://", "", "http://", "").Replace(c.Server)
		return strings.ReplaceAll(strings.Trim(trimmed, "/"), "/", string(os.PathSeparator))
	}
	p := u.Host + strings.TrimSuffix(u.Path, "/")
	return strings.ReplaceAll(p, "/", string(os.PathSeparator))
}

// AccountsDir returns the directory holding registered account material for
// the configured authority.
func (c Config) AccountsDir() string {
	return filepath.Join(c.ConfigDir, accountsDirName, c.ServerPath())
}

// KeyDir returns the directory for generated certificate private keys.
func (c Config) KeyDir() string {
	return filepath.Join(c.ConfigDir, keysDirName)
}

// CertDir returns the directory for generated CSRs and issued certificates.
func (c Config) CertDir() string {
	return filepath.Join(c.ConfigDir, certsDirName)
}

// RenewalConfigsDir returns the directory holding per-certificate renewal
// configuration files.
func (c Config) RenewalConfigsDir() string {
	return filepath.Join(c.ConfigDir, renewalConfigsDirName)
}

// ArchiveDir returns the directory holding historical certificate versions.
func (c Config) ArchiveDir() string {
	return filepath.Join(c.ConfigDir, archiveDirName)
}

// LiveDir returns the directory holding the current certificate material
// referenced by renewal configurations.
func (c Config) LiveDir() string {
	return filepath.Join(c.ConfigDir, liveDirName)
}

// CheckpointsDir returns the directory backing the checkpoint store.
func (c Config) CheckpointsDir() string {
	return filepath.Join(c.WorkDir, backupsDirName)
}

// TempDir returns the scratch directory for in-progress operations.
func (c Config) TempDir() string {
	return filepath.Join(c.WorkDir, tempDirName)
}

// Contact renders the registration contact list from the configured email.
// Returns nil when no email is configured.
func (c Config) Contact() []string {
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return nil
	}
	return []string{"mailto:" + email}
}

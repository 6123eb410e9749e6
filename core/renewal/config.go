package renewal

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	sectionName = "renewalparams"
	fileSuffix  = ".conf"
)

// Config is one certificate's persisted renewal parameters. Boolean flags are
// stored as the strings "True" and "False".
type Config struct {
	// Name identifies the certificate lineage, conventionally its first domain.
	Name    string
	Domains []string

	// AutoRenew schedules unattended renewal; AutoDeploy pushes renewed
	// certificates into the installer without operator action.
	AutoRenew  bool
	AutoDeploy bool

	CertPath  string
	KeyPath   string
	ChainPath string

	// RenewalConfigsDir is the directory this config lives in.
	RenewalConfigsDir string
}

func (c *Config) validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.ContainsRune(c.Name, os.PathSeparator) || strings.ContainsRune(c.Name, '/') {
		return fmt.Errorf("%w: %s", ErrInvalidName, c.Name)
	}
	if strings.TrimSpace(c.RenewalConfigsDir) == "" {
		return ErrMissingDir
	}
	if len(c.Domains) == 0 {
		return ErrNoDomains
	}
	return nil
}

// Path returns the file the config is stored in.
func (c *Config) Path() string {
	return filepath.Join(c.RenewalConfigsDir, c.Name+fileSuffix)
}

// Save writes the config atomically under its renewal configs directory,
// creating the directory if needed.
func Save(cfg *Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.RenewalConfigsDir, 0o700); err != nil {
		return fmt.Errorf("failed to create renewal configs directory: %w", err)
	}

	file := ini.Empty()
	sec, err := file.NewSection(sectionName)
	if err != nil {
		return fmt.Errorf("failed to build renewal config: %w", err)
	}
	sec.Key("domains").SetValue(strings.Join(cfg.Domains, ", "))
	sec.Key("autorenew").SetValue(formatFlag(cfg.AutoRenew))
	sec.Key("autodeploy").SetValue(formatFlag(cfg.AutoDeploy))
	if cfg.CertPath != "" {
		sec.Key("cert").SetValue(cfg.CertPath)
	}
	if cfg.KeyPath != "" {
		sec.Key("privkey").SetValue(cfg.KeyPath)
	}
	if cfg.ChainPath != "" {
		sec.Key("chain").SetValue(cfg.ChainPath)
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode renewal config: %w", err)
	}
	if err := writeFileAtomic(cfg.Path(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write renewal config %s: %w", cfg.Path(), err)
	}
	return nil
}

// Load reads the renewal config stored under name in dir. Flags missing from
// the file count as enabled.
func Load(dir, name string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrMissingDir
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	path := filepath.Join(dir, name+fileSuffix)
	file, err := ini.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return nil, fmt.Errorf("failed to load renewal config %s: %w", path, err)
	}

	sec := file.Section(sectionName)
	autoRenew, err := flagValue(sec, "autorenew")
	if err != nil {
		return nil, fmt.Errorf("renewal config %s: %w", path, err)
	}
	autoDeploy, err := flagValue(sec, "autodeploy")
	if err != nil {
		return nil, fmt.Errorf("renewal config %s: %w", path, err)
	}

	return &Config{
		Name:              name,
		Domains:           sec.Key("domains").Strings(","),
		AutoRenew:         autoRenew,
		AutoDeploy:        autoDeploy,
		CertPath:          sec.Key("cert").String(),
		KeyPath:           sec.Key("privkey").String(),
		ChainPath:         sec.Key("chain").String(),
		RenewalConfigsDir: dir,
	}, nil
}

// List returns the certificate names with a renewal config in dir, sorted. A
// missing directory is an empty list, not an error.
func List(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrMissingDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read renewal configs directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// formatFlag renders a boolean the way the renewal files spell them.
func formatFlag(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// flagValue parses a stored "True"/"False" flag. Absent keys count as enabled.
func flagValue(sec *ini.Section, key string) (bool, error) {
	if !sec.HasKey(key) {
		return true, nil
	}
	v, err := sec.Key(key).Bool()
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return v, nil
}

func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best effort cleanup
		return err
	}
	return nil
}

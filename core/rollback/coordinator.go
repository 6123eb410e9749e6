package rollback

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrymomot/certflow/core/config"
	"github.com/dmitrymomot/certflow/core/plugin"
)

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for rollback operations.
// Default: no-op logger (discards all output).
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Coordinator undoes configuration changes recorded by the active installer.
// The installer is resolved per call so plugins registered after construction
// are picked up.
type Coordinator struct {
	registry *plugin.Registry
	cfg      *config.Config
	logger   *slog.Logger
}

// NewCoordinator creates a rollback coordinator over the plugin registry.
func NewCoordinator(registry *plugin.Registry, cfg *config.Config, opts ...Option) (*Coordinator, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if cfg == nil {
		return nil, ErrNilConfig
	}

	options := &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Coordinator{
		registry: registry,
		cfg:      cfg,
		logger:   options.logger,
	}, nil
}

// Rollback reverts the n most recent installer checkpoints and restarts the
// host service so the reverted configuration is live. n of zero or less is a
// no-op. Running without any installer is a supported mode; rollback then has
// nothing to undo and succeeds quietly.
//
// A failure during restart is reported as ErrInstallerRestart: the
// configuration files were already reverted, but the running service may not
// reflect them until it is restarted by hand.
func (c *Coordinator) Rollback(ctx context.Context, n int) error {
	if n <= 0 {
		c.logger.DebugContext(ctx, "rollback of zero checkpoints requested, nothing to do")
		return nil
	}

	installer, err := c.registry.PickInstaller(ctx, c.cfg, c.cfg.Installer)
	if err != nil {
		return fmt.Errorf("pick installer: %w", err)
	}
	if installer == nil {
		c.logger.InfoContext(ctx, "no installer configured, no configuration changes to roll back")
		return nil
	}

	if err := installer.RollbackCheckpoints(ctx, n); err != nil {
		return fmt.Errorf("roll back %d checkpoints: %w", n, err)
	}
	if err := installer.Restart(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrInstallerRestart, err)
	}

	c.logger.InfoContext(ctx, "configuration rolled back", slog.Int("checkpoints", n))
	return nil
}

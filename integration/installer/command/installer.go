package command

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dmitrymomot/certflow/core/checkpoint"
	"github.com/dmitrymomot/certflow/core/logger"
	"github.com/dmitrymomot/certflow/core/plugin"
)

// Installer deploys configuration files for a server managed outside this
// process. Every write is checkpointed first, so any deployment can be undone
// through the checkpoint stack, and Restart hands control to a shell command
// such as "nginx -s reload" or "systemctl reload apache2".
type Installer struct {
	store      *checkpoint.Store
	restartCmd string
	logger     *slog.Logger
}

var _ plugin.Installer = (*Installer)(nil)

// New returns an Installer recording checkpoints in store before every write.
// restartCmd may be empty when the managed server needs no restart.
func New(store *checkpoint.Store, restartCmd string, opts ...Option) (*Installer, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	cfg := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Installer{
		store:      store,
		restartCmd: strings.TrimSpace(restartCmd),
		logger:     cfg.logger,
	}, nil
}

// Apply snapshots the current state of path and then writes contents in its
// place. Rolling back the resulting checkpoint restores the previous state,
// removing the file entirely when it did not exist before.
func (i *Installer) Apply(ctx context.Context, note string, path string, contents []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}

	cp, err := i.store.Create(ctx, note, []string{path})
	if err != nil {
		return fmt.Errorf("checkpoint %s: %w", path, err)
	}

	// Overwrites keep the file's existing mode.
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := writeFileAtomic(path, contents, perm); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	i.logger.InfoContext(ctx, "config applied",
		slog.String("path", path),
		logger.Checkpoint(cp.ID))
	return nil
}

// RollbackCheckpoints undoes the n most recent configuration checkpoints.
func (i *Installer) RollbackCheckpoints(ctx context.Context, n int) error {
	return i.store.Rollback(ctx, n)
}

// Restart runs the configured restart command so the managed server picks up
// the current configuration. With no command configured it is a no-op.
func (i *Installer) Restart(ctx context.Context) error {
	if i.restartCmd == "" {
		i.logger.DebugContext(ctx, "no restart command configured")
		return nil
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", i.restartCmd)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("restart command failed: %w, output: %s", err, strings.TrimSpace(string(output)))
	}

	i.logger.InfoContext(ctx, "server restarted", slog.String("command", i.restartCmd))
	return nil
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

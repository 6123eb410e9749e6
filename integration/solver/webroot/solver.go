package webroot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrymomot/certflow/core/ca"
	"github.com/dmitrymomot/certflow/core/logger"
)

// Solver satisfies http-01 challenges through a web server that is already
// running: it drops the key authorization under the server's document root
// and lets the existing server deliver it to the authority.
type Solver struct {
	root   string
	logger *slog.Logger
}

// New returns a Solver serving challenge responses out of the given document
// root. The directory must already exist and must be the docroot the target
// domains are served from.
func New(root string, opts ...Option) (*Solver, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, ErrEmptyRoot
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingRoot, root)
		}
		return nil, fmt.Errorf("failed to inspect webroot %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	cfg := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Solver{root: root, logger: cfg.logger}, nil
}

// Supports reports whether the challenge can be answered from the document root.
func (s *Solver) Supports(ch ca.Challenge) bool {
	return ch.Type == ca.ChallengeTypeHTTP01
}

// Present writes the key authorization to the path the authority will fetch
// during validation. Parent directories are created world-readable so the web
// server can serve them.
func (s *Solver) Present(ctx context.Context, domain string, ch ca.Challenge, keyAuth string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ch.Type != ca.ChallengeTypeHTTP01 {
		return fmt.Errorf("%w: %s", ErrUnsupportedChallenge, ch.Type)
	}

	path, err := s.tokenPath(ch.Token)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create challenge directory: %w", err)
	}
	if err := writeFileAtomic(path, []byte(keyAuth), 0o644); err != nil {
		return fmt.Errorf("failed to write challenge response: %w", err)
	}

	s.logger.DebugContext(ctx, "challenge response written",
		logger.Domain(domain),
		slog.String("path", path))
	return nil
}

// CleanUp removes the token file. The .well-known directories stay in place
// for later renewals.
func (s *Solver) CleanUp(ctx context.Context, domain string, ch ca.Challenge, _ string) error {
	path, err := s.tokenPath(ch.Token)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove challenge response: %w", err)
	}

	s.logger.DebugContext(ctx, "challenge response removed",
		logger.Domain(domain),
		slog.String("path", path))
	return nil
}

// tokenPath maps a challenge token to its location under the document root.
// Tokens are base64url per RFC 8555, so anything that does not survive
// filepath.Base unchanged is rejected rather than risking an escape from the
// webroot.
func (s *Solver) tokenPath(token string) (string, error) {
	if token == "" || token != filepath.Base(token) || strings.HasPrefix(token, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	return filepath.Join(s.root, ".well-known", "acme-challenge", token), nil
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

package standalone

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/textproto"
	"strings"

	"github.com/go-acme/lego/v4/challenge/http01"

	"github.com/dmitrymomot/certflow/core/ca"
	"github.com/dmitrymomot/certflow/core/logger"
)

const defaultPort = "80"

// Solver answers http-01 challenges from its own temporary HTTP listener,
// for hosts that run no web server of their own. The listener binds a single
// port, so challenges are served one at a time; concurrent presentations
// block until the port is free or their context is canceled.
type Solver struct {
	provider *http01.ProviderServer
	slot     chan struct{}
	logger   *slog.Logger
}

// New returns a Solver listening on the configured address, port 80 by
// default. Binding low ports usually requires elevated privileges.
func New(opts ...Option) (*Solver, error) {
	cfg := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	host, port, err := parseAddress(cfg.address)
	if err != nil {
		return nil, err
	}
	if port == "" {
		port = defaultPort
	}

	provider := http01.NewProviderServer(host, port)
	if cfg.proxyHeader != "" {
		provider.SetProxyHeader(textproto.CanonicalMIMEHeaderKey(cfg.proxyHeader))
	}

	return &Solver{
		provider: provider,
		slot:     make(chan struct{}, 1),
		logger:   cfg.logger,
	}, nil
}

// Supports reports whether the challenge can be served by the builtin listener.
func (s *Solver) Supports(ch ca.Challenge) bool {
	return ch.Type == ca.ChallengeTypeHTTP01
}

// Present starts the challenge listener for the domain. While another domain
// holds the listener it blocks until that domain's CleanUp runs.
func (s *Solver) Present(ctx context.Context, domain string, ch ca.Challenge, keyAuth string) error {
	if ch.Type != ca.ChallengeTypeHTTP01 {
		return fmt.Errorf("%w: %s", ErrUnsupportedChallenge, ch.Type)
	}

	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := s.provider.Present(domain, ch.Token, keyAuth); err != nil {
		<-s.slot
		return fmt.Errorf("start challenge listener: %w", err)
	}

	s.logger.DebugContext(ctx, "challenge listener started", logger.Domain(domain))
	return nil
}

// CleanUp stops the challenge listener and frees the port for the next domain.
func (s *Solver) CleanUp(ctx context.Context, domain string, ch ca.Challenge, keyAuth string) error {
	err := s.provider.CleanUp(domain, ch.Token, keyAuth)

	select {
	case <-s.slot:
	default:
	}

	if err != nil {
		return fmt.Errorf("stop challenge listener: %w", err)
	}

	s.logger.DebugContext(ctx, "challenge listener stopped", logger.Domain(domain))
	return nil
}

func parseAddress(addr string) (string, string, error) {
	if strings.TrimSpace(addr) == "" {
		return "", "", nil
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q: %w", ErrInvalidAddress, addr, err)
	}

	return host, port, nil
}

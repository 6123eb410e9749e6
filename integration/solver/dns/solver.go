package dns

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/providers/dns/cloudflare"

	"github.com/dmitrymomot/certflow/core/ca"
	"github.com/dmitrymomot/certflow/core/logger"
)

// Solver satisfies dns-01 challenges by planting TXT records through a lego
// challenge.Provider. Any provider from the lego ecosystem plugs in directly.
type Solver struct {
	provider        challenge.Provider
	propagationWait time.Duration
	logger          *slog.Logger
}

// New wraps a lego DNS provider as a dns-01 solver.
func New(provider challenge.Provider, opts ...Option) (*Solver, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	cfg := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Solver{
		provider:        provider,
		propagationWait: cfg.propagationWait,
		logger:          cfg.logger,
	}, nil
}

// NewCloudflare returns a dns-01 solver backed by the Cloudflare API. The
// token needs Zone:Read and DNS:Edit permissions for the zones being
// validated.
func NewCloudflare(apiToken string, opts ...Option) (*Solver, error) {
	if strings.TrimSpace(apiToken) == "" {
		return nil, ErrMissingAPIToken
	}

	cfg := cloudflare.NewDefaultConfig()
	cfg.AuthToken = apiToken

	provider, err := cloudflare.NewDNSProviderConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create cloudflare provider: %w", err)
	}

	return New(provider, opts...)
}

// Supports reports whether the challenge can be satisfied with a DNS record.
func (s *Solver) Supports(ch ca.Challenge) bool {
	return ch.Type == ca.ChallengeTypeDNS01
}

// Present plants the validation TXT record and waits out the configured
// propagation window, if any.
func (s *Solver) Present(ctx context.Context, domain string, ch ca.Challenge, keyAuth string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ch.Type != ca.ChallengeTypeDNS01 {
		return fmt.Errorf("%w: %s", ErrUnsupportedChallenge, ch.Type)
	}

	if err := s.provider.Present(recordDomain(domain), ch.Token, keyAuth); err != nil {
		return fmt.Errorf("plant dns record for %s: %w", domain, err)
	}

	s.logger.DebugContext(ctx, "dns record planted", logger.Domain(domain))

	if s.propagationWait <= 0 {
		return nil
	}

	timer := time.NewTimer(s.propagationWait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CleanUp removes the validation TXT record.
func (s *Solver) CleanUp(ctx context.Context, domain string, ch ca.Challenge, keyAuth string) error {
	if err := s.provider.CleanUp(recordDomain(domain), ch.Token, keyAuth); err != nil {
		return fmt.Errorf("remove dns record for %s: %w", domain, err)
	}

	s.logger.DebugContext(ctx, "dns record removed", logger.Domain(domain))
	return nil
}

// recordDomain strips a wildcard prefix: the validation record for
// *.example.com lives at _acme-challenge.example.com.
func recordDomain(domain string) string {
	return strings.TrimPrefix(domain, "*.")
}

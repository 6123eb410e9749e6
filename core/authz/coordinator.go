package authz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dmitrymomot/certflow/core/ca"
	"github.com/dmitrymomot/certflow/core/logger"
)

// Client is the subset of the protocol client the coordinator drives. All
// methods must be safe for concurrent use.
type Client interface {
	Authorize(ctx context.Context, domain string) (*ca.Authorization, error)
	AcceptChallenge(ctx context.Context, ch ca.Challenge) (ca.Challenge, error)
	GetAuthorization(ctx context.Context, uri string) (*ca.Authorization, error)
	KeyAuthorization(token string) (string, error)
}

// Solver provisions and removes challenge responses on the host. Present and
// CleanUp are invoked concurrently for different domains.
type Solver interface {
	Supports(ch ca.Challenge) bool
	Present(ctx context.Context, domain string, ch ca.Challenge, keyAuth string) error
	CleanUp(ctx context.Context, domain string, ch ca.Challenge, keyAuth string) error
}

// Authorization is one domain's completed validation. The value is only
// meaningful for the issuance request that follows; nothing in it is persisted.
type Authorization struct {
	Domain string
	Status ca.Status

	// Challenge is the mechanism that validated the domain; zero when the
	// authority reported the domain valid without a challenge round.
	Challenge ca.Challenge

	// Response is the key authorization presented for the challenge.
	Response string

	// Wire is the authority's authorization object in its final state.
	Wire *ca.Authorization
}

// Coordinator validates domains with the authority, all-or-nothing: either
// every requested domain ends valid or the whole call fails and no
// authorizations are returned.
type Coordinator struct {
	client        Client
	solver        Solver
	maxConcurrent int
	pollTimeout   time.Duration
	pollInterval  time.Duration
	logger        *slog.Logger
}

// NewCoordinator creates a coordinator that validates domains through client
// and answers challenges with solver.
func NewCoordinator(client Client, solver Solver, opts ...Option) (*Coordinator, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if solver == nil {
		return nil, ErrNilSolver
	}

	options := &options{
		maxConcurrent: DefaultMaxConcurrent,
		pollTimeout:   DefaultPollTimeout,
		pollInterval:  DefaultPollInterval,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Coordinator{
		client:        client,
		solver:        solver,
		maxConcurrent: options.maxConcurrent,
		pollTimeout:   options.pollTimeout,
		pollInterval:  options.pollInterval,
		logger:        options.logger,
	}, nil
}

// presented records a challenge response placed on the host so it can be
// removed after the run, success or failure.
type presented struct {
	domain    string
	challenge ca.Challenge
	keyAuth   string
}

// GetAuthorizations validates every domain and returns one authorization per
// domain in input order. A failed domain does not cancel in-flight siblings;
// their results are discarded and the call returns an error that matches
// ErrAuthorizationFailed or ErrAuthorizationTimeout per failing domain.
// Challenge responses placed on the host are cleaned up in every outcome.
func (c *Coordinator) GetAuthorizations(ctx context.Context, domains []string) ([]Authorization, error) {
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}
	seen := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		if strings.TrimSpace(domain) == "" {
			return nil, ErrEmptyDomain
		}
		if _, dup := seen[domain]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDomain, domain)
		}
		seen[domain] = struct{}{}
	}

	start := time.Now()
	c.logger.InfoContext(ctx, "acquiring authorizations",
		logger.Domains(domains),
		slog.Int("max_concurrent", c.maxConcurrent))

	results := make([]Authorization, len(domains))
	errs := make([]error, len(domains))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		cleanups []presented
		sem      = make(chan struct{}, c.maxConcurrent)
	)

	dispatched := len(domains)
dispatch:
	for i := range domains {
		if ctx.Err() != nil {
			dispatched = i
			break dispatch
		}
		select {
		case <-ctx.Done():
			dispatched = i
			break dispatch
		case sem <- struct{}{}:
			wg.Add(1)
			go func(idx int, domain string) {
				defer wg.Done()
				defer func() { <-sem }()

				authz, pres, err := c.authorizeDomain(ctx, domain)
				if pres != nil {
					mu.Lock()
					cleanups = append(cleanups, *pres)
					mu.Unlock()
				}
				if err != nil {
					errs[idx] = err
					return
				}
				results[idx] = *authz
			}(i, domains[i])
		}
	}
	for j := dispatched; j < len(domains); j++ {
		errs[j] = fmt.Errorf("%w: %s: %w", ErrAuthorizationFailed, domains[j], ctx.Err())
	}
	wg.Wait()

	// Remove every challenge response placed during the run, including those
	// for domains that validated successfully. Cleanup still runs when the
	// caller's context is already canceled.
	cleanupCtx := context.WithoutCancel(ctx)
	for _, entry := range cleanups {
		if err := c.solver.CleanUp(cleanupCtx, entry.domain, entry.challenge, entry.keyAuth); err != nil {
			c.logger.WarnContext(cleanupCtx, "challenge cleanup failed",
				logger.Domain(entry.domain),
				logger.Error(err))
		}
	}

	var failures []error
	for _, err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 {
		c.logger.ErrorContext(ctx, "authorization run failed",
			slog.Int("failed", len(failures)),
			slog.Int("requested", len(domains)),
			logger.Errors(failures...))
		return nil, fmt.Errorf("%d of %d domains failed authorization: %w",
			len(failures), len(domains), errors.Join(failures...))
	}

	c.logger.InfoContext(ctx, "authorizations acquired",
		logger.Domains(domains),
		logger.Elapsed(start))
	return results, nil
}

// authorizeDomain runs one domain through the validation pipeline. The
// returned presented entry is non-nil once a challenge response reached the
// host, whether or not the pipeline succeeded afterwards.
func (c *Coordinator) authorizeDomain(ctx context.Context, domain string) (*Authorization, *presented, error) {
	wire, err := c.client.Authorize(ctx, domain)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrAuthorizationFailed, domain, err)
	}

	// Nothing to prove when the authority already holds a valid authorization.
	if wire.Status == ca.StatusValid {
		c.logger.DebugContext(ctx, "authorization already valid", logger.Domain(domain))
		return &Authorization{Domain: domain, Status: wire.Status, Wire: wire}, nil, nil
	}

	ch, ok := c.pickChallenge(wire)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s offers [%s]", ErrNoViableChallenge, domain, challengeTypes(wire))
	}

	keyAuth, err := c.client.KeyAuthorization(ch.Token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrAuthorizationFailed, domain, err)
	}

	if err := c.solver.Present(ctx, domain, ch, keyAuth); err != nil {
		return nil, nil, fmt.Errorf("%w: present %s challenge for %s: %w", ErrAuthorizationFailed, ch.Type, domain, err)
	}
	pres := &presented{domain: domain, challenge: ch, keyAuth: keyAuth}

	if _, err := c.client.AcceptChallenge(ctx, ch); err != nil {
		return nil, pres, fmt.Errorf("%w: accept %s challenge for %s: %w", ErrAuthorizationFailed, ch.Type, domain, err)
	}

	final, err := c.pollAuthorization(ctx, domain, wire.URI)
	if err != nil {
		return nil, pres, err
	}

	c.logger.InfoContext(ctx, "authorization valid",
		logger.Domain(domain),
		slog.String("challenge", string(ch.Type)))
	return &Authorization{
		Domain:    domain,
		Status:    final.Status,
		Challenge: ch,
		Response:  keyAuth,
		Wire:      final,
	}, pres, nil
}

// pickChallenge returns the first offered challenge the solver supports,
// keeping the authority's preference order.
func (c *Coordinator) pickChallenge(az *ca.Authorization) (ca.Challenge, bool) {
	for _, ch := range az.Challenges {
		if c.solver.Supports(ch) {
			return ch, true
		}
	}
	return ca.Challenge{}, false
}

// pollAuthorization re-fetches the authorization with exponential backoff
// until it leaves the pending state or the poll timeout elapses.
func (c *Coordinator) pollAuthorization(ctx context.Context, domain, uri string) (*ca.Authorization, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.pollInterval
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = c.pollTimeout

	var final *ca.Authorization
	operation := func() error {
		az, err := c.client.GetAuthorization(ctx, uri)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %s: %w", ErrAuthorizationFailed, domain, err))
		}
		switch az.Status {
		case ca.StatusValid:
			final = az
			return nil
		case ca.StatusInvalid, ca.StatusDeactivated, ca.StatusRevoked, ca.StatusExpired:
			return backoff.Permanent(fmt.Errorf("%w: %s ended %s", ErrAuthorizationFailed, domain, az.Status))
		default:
			return fmt.Errorf("authorization for %s still %s", domain, az.Status)
		}
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		if errors.Is(err, ErrAuthorizationFailed) {
			return nil, err
		}
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %s: %w", ErrAuthorizationFailed, domain, err)
		}
		return nil, fmt.Errorf("%w: %s after %s: %w", ErrAuthorizationTimeout, domain, c.pollTimeout, err)
	}
	return final, nil
}

func challengeTypes(az *ca.Authorization) string {
	if az == nil || len(az.Challenges) == 0 {
		return "none"
	}
	types := make([]string, 0, len(az.Challenges))
	for _, ch := range az.Challenges {
		types = append(types, string(ch.Type))
	}
	return strings.Join(types, " ")
}

package dns_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certflow/core/ca"
	"github.com/dmitrymomot/certflow/integration/solver/dns"
)

type stubProvider struct {
	mu         sync.Mutex
	presented  []string
	cleaned    []string
	presentErr error
	cleanUpErr error
}

func (p *stubProvider) Present(domain, token, keyAuth string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.presentErr != nil {
		return p.presentErr
	}
	p.presented = append(p.presented, fmt.Sprintf("%s/%s/%s", domain, token, keyAuth))
	return nil
}

func (p *stubProvider) CleanUp(domain, token, keyAuth string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cleanUpErr != nil {
		return p.cleanUpErr
	}
	p.cleaned = append(p.cleaned, fmt.Sprintf("%s/%s/%s", domain, token, keyAuth))
	return nil
}

func dnsChallenge(token string) ca.Challenge {
	return ca.Challenge{
		Type:  ca.ChallengeTypeDNS01,
		URI:   "https://acme.test/chall/" + token,
		Token: token,
	}
}

func TestNewRequiresProvider(t *testing.T) {
	t.Parallel()

	_, err := dns.New(nil)
	require.ErrorIs(t, err, dns.ErrNilProvider)
}

func TestNewCloudflare(t *testing.T) {
	t.Parallel()

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()

		_, err := dns.NewCloudflare("   ")
		require.ErrorIs(t, err, dns.ErrMissingAPIToken)
	})

	t.Run("token accepted", func(t *testing.T) {
		t.Parallel()

		solver, err := dns.NewCloudflare("cf-test-token")
		require.NoError(t, err)
		assert.True(t, solver.Supports(ca.Challenge{Type: ca.ChallengeTypeDNS01}))
	})
}

func TestSupports(t *testing.T) {
	t.Parallel()

	solver, err := dns.New(&stubProvider{})
	require.NoError(t, err)

	assert.True(t, solver.Supports(ca.Challenge{Type: ca.ChallengeTypeDNS01}))
	assert.False(t, solver.Supports(ca.Challenge{Type: ca.ChallengeTypeHTTP01}))
}

func TestPresentPlantsRecord(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	solver, err := dns.New(provider)
	require.NoError(t, err)

	ch := dnsChallenge("token-1")
	require.NoError(t, solver.Present(context.Background(), "example.com", ch, "auth"))
	assert.Equal(t, []string{"example.com/token-1/auth"}, provider.presented)
}

func TestPresentStripsWildcardPrefix(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	solver, err := dns.New(provider)
	require.NoError(t, err)

	ch := dnsChallenge("token-1")
	ctx := context.Background()
	require.NoError(t, solver.Present(ctx, "*.example.com", ch, "auth"))
	require.NoError(t, solver.CleanUp(ctx, "*.example.com", ch, "auth"))

	assert.Equal(t, []string{"example.com/token-1/auth"}, provider.presented)
	assert.Equal(t, []string{"example.com/token-1/auth"}, provider.cleaned)
}

func TestPresentRejectsOtherChallengeTypes(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	solver, err := dns.New(provider)
	require.NoError(t, err)

	ch := ca.Challenge{Type: ca.ChallengeTypeHTTP01, Token: "token-1"}
	err = solver.Present(context.Background(), "example.com", ch, "auth")
	require.ErrorIs(t, err, dns.ErrUnsupportedChallenge)
	assert.Empty(t, provider.presented)
}

func TestPresentWrapsProviderError(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{presentErr: errors.New("zone not found")}
	solver, err := dns.New(provider)
	require.NoError(t, err)

	err = solver.Present(context.Background(), "example.com", dnsChallenge("token-1"), "auth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "example.com")
	assert.Contains(t, err.Error(), "zone not found")
}

func TestPresentWaitsForPropagation(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	solver, err := dns.New(provider, dns.WithPropagationWait(30*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, solver.Present(context.Background(), "example.com", dnsChallenge("token-1"), "auth"))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestPresentPropagationWaitHonorsContext(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	solver, err := dns.New(provider, dns.WithPropagationWait(time.Minute))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = solver.Present(ctx, "example.com", dnsChallenge("token-1"), "auth")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The record was planted before the wait, so CleanUp still has work to do.
	assert.Len(t, provider.presented, 1)
}

func TestCleanUpRemovesRecord(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	solver, err := dns.New(provider)
	require.NoError(t, err)

	ch := dnsChallenge("token-1")
	require.NoError(t, solver.CleanUp(context.Background(), "example.com", ch, "auth"))
	assert.Equal(t, []string{"example.com/token-1/auth"}, provider.cleaned)
}

func TestCleanUpWrapsProviderError(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{cleanUpErr: errors.New("api unavailable")}
	solver, err := dns.New(provider)
	require.NoError(t, err)

	err = solver.CleanUp(context.Background(), "example.com", dnsChallenge("token-1"), "auth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api unavailable")
}

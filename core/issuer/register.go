package issuer

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/certflow/core/account"
	"github.com/dmitrymomot/certflow/core/ca"
	"github.com/dmitrymomot/certflow/core/config"
	"github.com/dmitrymomot/certflow/pkg/keyutil"
)

// RegistrationClient is the protocol surface account registration needs.
type RegistrationClient interface {
	Register(ctx context.Context, contact []string, prompt func(tosURL string) bool) (*ca.Registration, error)
}

// ClientFactory builds a protocol client bound to a freshly generated account
// key.
type ClientFactory func(key crypto.Signer) (RegistrationClient, error)

// TermsCallback decides whether to accept the authority's terms of service,
// given their URL. A nil callback auto-accepts.
type TermsCallback func(tosURL string) bool

// Register creates and persists an account with the authority. When an
// account is already stored it is returned as-is and no network call is made.
//
// If the authority presents terms of service and a callback is supplied, the
// callback decides: declining aborts with ErrTermsDeclined and persists
// nothing. Accepting, or registering without a callback, persists exactly one
// account.
func Register(ctx context.Context, cfg *config.Config, store account.Store, newClient ClientFactory, terms TermsCallback) (*account.Account, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if store == nil {
		return nil, ErrNilStore
	}
	if newClient == nil {
		return nil, ErrNilClientFactory
	}

	existing, err := store.Load(ctx)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, account.ErrNoAccount) {
		return nil, fmt.Errorf("load stored account: %w", err)
	}

	key, err := keyutil.GenerateKey(cfg.RSAKeySize)
	if err != nil {
		return nil, fmt.Errorf("generate account key: %w", err)
	}
	client, err := newClient(key)
	if err != nil {
		return nil, fmt.Errorf("build protocol client: %w", err)
	}

	// The protocol layer sends the callback's verdict to the authority, which
	// rejects unagreed registrations; the flag keeps the local decision
	// distinguishable from other registration failures.
	declined := false
	var prompt func(tosURL string) bool
	if terms != nil {
		prompt = func(tosURL string) bool {
			if terms(tosURL) {
				return true
			}
			declined = true
			return false
		}
	}

	reg, err := client.Register(ctx, cfg.Contact(), prompt)
	if declined {
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTermsDeclined, err)
		}
		return nil, ErrTermsDeclined
	}
	if err != nil {
		return nil, fmt.Errorf("register account: %w", err)
	}

	acct := &account.Account{
		Key:          key,
		Registration: reg,
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.Save(ctx, acct); err != nil {
		return nil, fmt.Errorf("persist account: %w", err)
	}
	return acct, nil
}

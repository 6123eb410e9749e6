package account

import (
	"context"
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"time"

	"github.com/dmitrymomot/certflow/core/ca"
)

// Account pairs the ACME account key with the registration the authority
// issued for it. Apart from contact details inside the registration, the
// record never changes after a successful registration.
type Account struct {
	// Key signs every request sent to the authority.
	Key crypto.Signer

	// Registration is the authority's account object.
	Registration *ca.Registration

	// CreatedAt records when the account was first persisted.
	CreatedAt time.Time
}

// ID derives a stable identifier from the account's public key. The same key
// always maps to the same directory on disk, regardless of registration URI.
func (a *Account) ID() string {
	if a == nil || a.Key == nil {
		return ""
	}
	der, err := x509.MarshalPKIXPublicKey(a.Key.Public())
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:8])
}

// Contact returns the registered contact URIs, nil when unregistered.
func (a *Account) Contact() []string {
	if a == nil || a.Registration == nil {
		return nil
	}
	return a.Registration.Contact
}

// Store persists exactly one account per authority. Save is the new-account
// hook the registration workflow invokes once per successful registration.
type Store interface {
	Save(ctx context.Context, acct *Account) error
	Load(ctx context.Context) (*Account, error)
	Exists(ctx context.Context) bool
}

func validate(acct *Account) error {
	if acct == nil {
		return ErrNilAccount
	}
	if acct.Key == nil {
		return ErrMissingKey
	}
	if acct.Registration == nil {
		return ErrMissingRegistration
	}
	return nil
}

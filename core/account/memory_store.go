package account

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the account in process memory. Useful for tests and for
// embedders that manage persistence themselves.
type MemoryStore struct {
	mu    sync.RWMutex
	acct  *Account
	saves int
}

// NewMemoryStore creates an empty in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save stores the account, replacing any previous one.
func (s *MemoryStore) Save(ctx context.Context, acct *Account) error {
	if err := validate(acct); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}
	s.acct = acct
	s.saves++
	return nil
}

// Load returns the stored account or ErrNoAccount.
func (s *MemoryStore) Load(ctx context.Context) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.acct == nil {
		return nil, ErrNoAccount
	}
	return s.acct, nil
}

// Exists reports whether an account is stored.
func (s *MemoryStore) Exists(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.acct != nil
}

// SaveCount returns how many times Save succeeded. The registration workflow
// promises exactly one persistence per new account; this makes that checkable.
func (s *MemoryStore) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

package account

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrymomot/certflow/core/ca"
)

const (
	keyFileName = "private_key.pem"
	regFileName = "registration.json"

	pemBlockPrivateKey = "PRIVATE KEY"
)

// registrationRecord is the on-disk JSON shape of an account.
type registrationRecord struct {
	URI            string    `json:"uri"`
	Status         string    `json:"status,omitempty"`
	Contact        []string  `json:"contact,omitempty"`
	TermsOfService string    `json:"terms_of_service,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FileStore persists accounts on disk, one directory per account id holding
// the private key (PKCS#8 PEM, 0600) and the registration record (JSON).
type FileStore struct {
	dir string
}

// NewFileStore creates an account store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create accounts directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the account key and registration atomically. Saving the same
// account again overwrites its files in place.
func (s *FileStore) Save(ctx context.Context, acct *Account) error {
	if err := validate(acct); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	id := acct.ID()
	if id == "" {
		return fmt.Errorf("%w: cannot derive account id", ErrMissingKey)
	}

	accountDir := filepath.Join(s.dir, id)
	if err := os.MkdirAll(accountDir, 0700); err != nil {
		return fmt.Errorf("failed to create account directory: %w", err)
	}

	keyPEM, err := encodeKey(acct.Key)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(accountDir, keyFileName), keyPEM, 0600); err != nil {
		return err
	}

	created := acct.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	record := registrationRecord{
		URI:            acct.Registration.URI,
		Status:         string(acct.Registration.Status),
		Contact:        acct.Registration.Contact,
		TermsOfService: acct.Registration.TermsOfService,
		CreatedAt:      created,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registration: %w", err)
	}

	return writeFileAtomic(filepath.Join(accountDir, regFileName), append(data, '\n'), 0600)
}

// Load returns the stored account. With several accounts on disk the first in
// directory order wins; certflow registers at most one per authority.
func (s *FileStore) Load(ctx context.Context) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoAccount
		}
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			return s.load(entry.Name())
		}
	}
	return nil, ErrNoAccount
}

// Exists reports whether any account key is present on disk.
func (s *FileStore) Exists(ctx context.Context) bool {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dir, entry.Name(), keyFileName)); err == nil {
			return true
		}
	}
	return false
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) load(id string) (*Account, error) {
	dir := filepath.Join(s.dir, id)

	keyData, err := os.ReadFile(filepath.Join(dir, keyFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoAccount
		}
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	key, err := decodeKey(keyData)
	if err != nil {
		return nil, err
	}

	regData, err := os.ReadFile(filepath.Join(dir, regFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoAccount
		}
		return nil, fmt.Errorf("failed to read registration: %w", err)
	}
	var record registrationRecord
	if err := json.Unmarshal(regData, &record); err != nil {
		return nil, fmt.Errorf("failed to parse registration: %w", err)
	}

	return &Account{
		Key: key,
		Registration: &ca.Registration{
			URI:            record.URI,
			Status:         ca.Status(record.Status),
			Contact:        record.Contact,
			TermsOfService: record.TermsOfService,
		},
		CreatedAt: record.CreatedAt,
	}, nil
}

func encodeKey(key crypto.Signer) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemBlockPrivateKey, Bytes: der}), nil
}

func decodeKey(data []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("key file contains no PEM block")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	signer, ok := parsed.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("key type %T cannot sign", parsed)
	}
	return signer, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}

	return nil
}

package keyutil

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-acme/lego/v4/certcrypto"
)

const (
	keyFileSuffix = "key-certflow.pem"
	csrFileSuffix = "csr-certflow.pem"

	pemBlockCSR = "CERTIFICATE REQUEST"
)

// Key is a generated private key and where it lives on disk.
type Key struct {
	Path   string
	PEM    []byte
	Signer crypto.Signer
}

// CSR is a certificate signing request in both wire (DER) and file (PEM) form.
type CSR struct {
	Path string
	PEM  []byte
	DER  []byte
}

// GenerateKey creates a fresh RSA private key of the given bit size without
// persisting it. Account keys use this; their storage is the account store's
// concern.
func GenerateKey(keySize int) (crypto.Signer, error) {
	keyType, err := keyTypeForSize(keySize)
	if err != nil {
		return nil, err
	}

	privateKey, err := certcrypto.GeneratePrivateKey(keyType)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	signer, ok := privateKey.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("generated key type %T cannot sign", privateKey)
	}
	return signer, nil
}

// InitSaveKey generates a fresh RSA private key of the given bit size and
// saves it under keyDir with a collision-free name and 0600 permissions.
func InitSaveKey(keySize int, keyDir string) (*Key, error) {
	signer, err := GenerateKey(keySize)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	pemBytes := certcrypto.PEMEncode(signer)
	path, err := WriteUnique(keyDir, keyFileSuffix, pemBytes, 0600)
	if err != nil {
		return nil, err
	}

	return &Key{Path: path, PEM: pemBytes, Signer: signer}, nil
}

// InitSaveCSR builds a certificate signing request for the domains, signed by
// key, and saves it under certDir. The first domain becomes the subject common
// name; all domains appear as subject alternative names.
func InitSaveCSR(key *Key, domains []string, certDir string) (*CSR, error) {
	if key == nil || key.Signer == nil {
		return nil, ErrNilKey
	}
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}

	template := &x509.CertificateRequest{
		Subject:  pkix.Name{CommonName: domains[0]},
		DNSNames: domains,
	}
	der, err := x509.CreateCertificateRequest(rand.Reader, template, key.Signer)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate request: %w", err)
	}

	if err := os.MkdirAll(certDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create certificate directory: %w", err)
	}

	pemBytes := pem.EncodeToMemory(&pem.Block{Type: pemBlockCSR, Bytes: der})
	path, err := WriteUnique(certDir, csrFileSuffix, pemBytes, 0644)
	if err != nil {
		return nil, err
	}

	return &CSR{Path: path, PEM: pemBytes, DER: der}, nil
}

// ExtractDomains returns the domain list a CSR covers: the common name first,
// then subject alternative names with duplicates dropped in encounter order.
func ExtractDomains(csrDER []byte) ([]string, error) {
	req, err := x509.ParseCertificateRequest(csrDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate request: %w", err)
	}
	return certcrypto.ExtractDomainsCSR(req), nil
}

// LoadCSR reads a certificate signing request from disk, accepting PEM or raw
// DER encoding.
func LoadCSR(path string) (*CSR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read csr: %w", err)
	}

	if block, _ := pem.Decode(data); block != nil {
		req, err := certcrypto.PemDecodeTox509CSR(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode csr: %w", err)
		}
		return &CSR{Path: path, PEM: data, DER: req.Raw}, nil
	}

	req, err := x509.ParseCertificateRequest(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse csr: %w", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: pemBlockCSR, Bytes: req.Raw})
	return &CSR{Path: path, PEM: pemBytes, DER: req.Raw}, nil
}

// ParsePrivateKey loads a PEM-encoded private key previously written by
// InitSaveKey or any PEM key the caller supplies.
func ParsePrivateKey(pemBytes []byte) (crypto.Signer, error) {
	privateKey, err := certcrypto.ParsePEMPrivateKey(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	signer, ok := privateKey.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("key type %T cannot sign", privateKey)
	}
	return signer, nil
}

func keyTypeForSize(bits int) (certcrypto.KeyType, error) {
	switch bits {
	case 2048:
		return certcrypto.RSA2048, nil
	case 3072:
		return certcrypto.RSA3072, nil
	case 4096:
		return certcrypto.RSA4096, nil
	case 8192:
		return certcrypto.RSA8192, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnsupportedKeySize, bits)
	}
}

// WriteUnique saves data under dir with an indexed name (0000_suffix,
// 0001_suffix, ...) that never overwrites an existing file. Key, CSR, and
// certificate artifacts all go through it so issued material is never
// clobbered.
func WriteUnique(dir, suffix string, data []byte, perm os.FileMode) (string, error) {
	for i := 0; i < 10000; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%04d_%s", i, suffix))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return "", fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
		}

		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s in %s", suffix, dir)
}

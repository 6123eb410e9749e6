package issuer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-acme/lego/v4/certcrypto"

	"github.com/dmitrymomot/certflow/pkg/keyutil"
)

const (
	certFileSuffix  = "cert-certflow.pem"
	chainFileSuffix = "chain-certflow.pem"

	liveCertName      = "cert.pem"
	liveChainName     = "chain.pem"
	liveFullChainName = "fullchain.pem"
	livePrivKeyName   = "privkey.pem"
)

// LivePaths lists the stable file locations InstallLive maintains for one
// certificate name. Chain and PrivKey are empty when the issuance produced
// no intermediates or no key.
type LivePaths struct {
	Cert      string
	Chain     string
	FullChain string
	PrivKey   string
}

// CertificatePEM renders the issued end-entity certificate as PEM.
func CertificatePEM(result *Result) ([]byte, error) {
	if result == nil || result.Resource == nil || len(result.Resource.Certificate) == 0 {
		return nil, ErrNoCertificate
	}
	return certcrypto.PEMEncode(certcrypto.DERCertificateBytes(result.Resource.Certificate)), nil
}

// ChainPEM renders the issuer chain as concatenated PEM blocks, leaf's
// issuer first. Nil when the authority returned no intermediates.
func ChainPEM(result *Result) []byte {
	if result == nil {
		return nil
	}
	var chain []byte
	for _, cert := range result.Chain {
		chain = append(chain, certcrypto.PEMEncode(certcrypto.DERCertificateBytes(cert.Raw))...)
	}
	return chain
}

// FullChainPEM renders the leaf certificate followed by its chain, the
// bundle most servers are configured with.
func FullChainPEM(result *Result) ([]byte, error) {
	leaf, err := CertificatePEM(result)
	if err != nil {
		return nil, err
	}
	return append(leaf, ChainPEM(result)...), nil
}

// SaveCertificate archives the issued certificate and its chain under
// certDir with indexed names, the same never-overwrite discipline keys and
// signing requests get. chainPath is empty when the authority returned no
// intermediates.
func SaveCertificate(result *Result, certDir string) (certPath, chainPath string, err error) {
	leaf, err := CertificatePEM(result)
	if err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(certDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create certificate directory: %w", err)
	}

	certPath, err = keyutil.WriteUnique(certDir, certFileSuffix, leaf, 0o644)
	if err != nil {
		return "", "", err
	}

	chain := ChainPEM(result)
	if len(chain) == 0 {
		return certPath, "", nil
	}

	chainPath, err = keyutil.WriteUnique(certDir, chainFileSuffix, chain, 0o644)
	if err != nil {
		return "", "", err
	}
	return certPath, chainPath, nil
}

// InstallLive replaces the current certificate material for name under
// liveDir: cert.pem, chain.pem, fullchain.pem and, when the result carries a
// generated key, privkey.pem. Each file is swapped in atomically so a server
// reading mid-renewal never observes a partial certificate.
func InstallLive(result *Result, liveDir, name string) (*LivePaths, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	leaf, err := CertificatePEM(result)
	if err != nil {
		return nil, err
	}
	chain := ChainPEM(result)
	fullChain := append(append([]byte(nil), leaf...), chain...)

	dir := filepath.Join(liveDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create live directory: %w", err)
	}

	paths := &LivePaths{
		Cert:      filepath.Join(dir, liveCertName),
		FullChain: filepath.Join(dir, liveFullChainName),
	}
	if err := writeLiveFile(paths.Cert, leaf, 0o644); err != nil {
		return nil, err
	}

	if len(chain) > 0 {
		paths.Chain = filepath.Join(dir, liveChainName)
		if err := writeLiveFile(paths.Chain, chain, 0o644); err != nil {
			return nil, err
		}
	}

	if err := writeLiveFile(paths.FullChain, fullChain, 0o644); err != nil {
		return nil, err
	}

	if result.Key != nil && len(result.Key.PEM) > 0 {
		paths.PrivKey = filepath.Join(dir, livePrivKeyName)
		if err := writeLiveFile(paths.PrivKey, result.Key.PEM, 0o600); err != nil {
			return nil, err
		}
	}

	return paths, nil
}

func writeLiveFile(path string, data []byte, perm fs.FileMode) error {
	if err := writeFileAtomic(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
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

package issuer

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/idna"

	"github.com/dmitrymomot/certflow/core/authz"
	"github.com/dmitrymomot/certflow/core/ca"
	"github.com/dmitrymomot/certflow/core/config"
	"github.com/dmitrymomot/certflow/core/logger"
	"github.com/dmitrymomot/certflow/pkg/keyutil"
)

// ProtocolClient is the issuance surface of the protocol client.
type ProtocolClient interface {
	RequestIssuance(ctx context.Context, csrDER []byte, authz []*ca.Authorization) (*ca.CertificateResource, error)
	FetchChain(ctx context.Context, res *ca.CertificateResource) ([]*x509.Certificate, error)
}

// AuthorizationGetter validates domain control before issuance.
type AuthorizationGetter interface {
	GetAuthorizations(ctx context.Context, domains []string) ([]authz.Authorization, error)
}

// KeySource generates and persists certificate keys and signing requests.
type KeySource interface {
	InitSaveKey(keySize int, keyDir string) (*keyutil.Key, error)
	InitSaveCSR(key *keyutil.Key, domains []string, certDir string) (*keyutil.CSR, error)
}

// fileKeySource is the production KeySource backed by pkg/keyutil.
type fileKeySource struct{}

func (fileKeySource) InitSaveKey(keySize int, keyDir string) (*keyutil.Key, error) {
	return keyutil.InitSaveKey(keySize, keyDir)
}

func (fileKeySource) InitSaveCSR(key *keyutil.Key, domains []string, certDir string) (*keyutil.CSR, error) {
	return keyutil.InitSaveCSR(key, domains, certDir)
}

// Result is everything one issuance produces. Key is nil when the caller
// supplied its own CSR.
type Result struct {
	Resource *ca.CertificateResource
	Chain    []*x509.Certificate
	Key      *keyutil.Key
	CSR      *keyutil.CSR
}

// Issuer obtains certificates: it turns a domain list into a key and CSR,
// proves control of every domain through the authorization getter, and asks
// the authority to issue.
type Issuer struct {
	cfg    *config.Config
	client ProtocolClient
	authz  AuthorizationGetter
	keys   KeySource
	logger *slog.Logger
}

// New creates an issuer bound to a protocol client and an authorization
// getter.
func New(cfg *config.Config, client ProtocolClient, authzGetter AuthorizationGetter, opts ...Option) (*Issuer, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if client == nil {
		return nil, ErrNilClient
	}
	if authzGetter == nil {
		return nil, ErrNilAuthorizer
	}

	options := &options{
		keys:   fileKeySource{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Issuer{
		cfg:    cfg,
		client: client,
		authz:  authzGetter,
		keys:   options.keys,
		logger: options.logger,
	}, nil
}

// ObtainCertificate generates a key of the configured RSA size, builds a CSR
// for the domains, and issues a certificate for them. Domains are lowercased
// and IDNA-normalized first; duplicates after normalization are a caller
// error. The generated key and CSR ride along in the result so the caller can
// persist or deploy them.
func (i *Issuer) ObtainCertificate(ctx context.Context, domains []string) (*Result, error) {
	normalized, err := normalizeDomains(domains)
	if err != nil {
		return nil, err
	}

	key, err := i.keys.InitSaveKey(i.cfg.RSAKeySize, i.cfg.KeyDir())
	if err != nil {
		return nil, fmt.Errorf("generate certificate key: %w", err)
	}
	csr, err := i.keys.InitSaveCSR(key, normalized, i.cfg.CertDir())
	if err != nil {
		return nil, fmt.Errorf("build csr: %w", err)
	}

	result, err := i.ObtainCertificateFromCSR(ctx, csr)
	if err != nil {
		return nil, err
	}
	result.Key = key
	return result, nil
}

// ObtainCertificateFromCSR issues a certificate for the exact domain set
// embedded in the signing request. The common name comes first, then the
// subject alternative names in encounter order; authorizations are requested
// for precisely that list.
func (i *Issuer) ObtainCertificateFromCSR(ctx context.Context, csr *keyutil.CSR) (*Result, error) {
	if csr == nil || len(csr.DER) == 0 {
		return nil, ErrNilCSR
	}

	domains, err := keyutil.ExtractDomains(csr.DER)
	if err != nil {
		return nil, fmt.Errorf("extract csr domains: %w", err)
	}
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}

	start := time.Now()
	i.logger.InfoContext(ctx, "obtaining certificate", logger.Domains(domains))

	auths, err := i.authz.GetAuthorizations(ctx, domains)
	if err != nil {
		return nil, fmt.Errorf("authorize domains: %w", err)
	}

	wires := make([]*ca.Authorization, len(auths))
	for idx := range auths {
		wires[idx] = auths[idx].Wire
	}

	res, err := i.client.RequestIssuance(ctx, csr.DER, wires)
	if err != nil {
		return nil, fmt.Errorf("request issuance: %w", err)
	}
	chain, err := i.client.FetchChain(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("fetch chain: %w", err)
	}

	i.logger.InfoContext(ctx, "certificate obtained",
		logger.Domains(domains),
		slog.Int("chain", len(chain)),
		logger.Elapsed(start))

	return &Result{Resource: res, Chain: chain, CSR: csr}, nil
}

// normalizeDomains lowercases and IDNA-normalizes the requested names,
// keeping input order. Wildcard prefixes are preserved.
func normalizeDomains(domains []string) ([]string, error) {
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}

	out := make([]string, 0, len(domains))
	seen := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		name := strings.ToLower(strings.TrimSpace(domain))
		if name == "" {
			return nil, ErrEmptyDomain
		}

		wildcard := strings.HasPrefix(name, "*.")
		if wildcard {
			name = name[2:]
		}
		ascii, err := idna.Lookup.ToASCII(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDomain, domain, err)
		}
		if wildcard {
			ascii = "*." + ascii
		}

		if _, dup := seen[ascii]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDomain, ascii)
		}
		seen[ascii] = struct{}{}
		out = append(out, ascii)
	}
	return out, nil
}

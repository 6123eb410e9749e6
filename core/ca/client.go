package ca

import (
	"context"
	"crypto"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/acme"
)

// Config holds the protocol client configuration.
type Config struct {
	// DirectoryURL is the ACME directory endpoint of the authority.
	DirectoryURL string

	// Key is the account key all requests are signed with.
	Key crypto.Signer

	// HTTPClient overrides the transport. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// UserAgent is appended to the client's user agent string.
	UserAgent string
}

// Client speaks the ACME protocol to a certificate authority on behalf of a
// single account key. It is safe for concurrent use; the authorization
// coordinator drives several domains through it at once.
type Client struct {
	ac *acme.Client
}

// New creates a protocol client bound to the account key in cfg.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.DirectoryURL) == "" {
		return nil, ErrMissingDirectoryURL
	}
	if cfg.Key == nil {
		return nil, ErrMissingAccountKey
	}

	return &Client{
		ac: &acme.Client{
			Key:          cfg.Key,
			DirectoryURL: cfg.DirectoryURL,
			HTTPClient:   cfg.HTTPClient,
			UserAgent:    cfg.UserAgent,
		},
	}, nil
}

// Register creates the account for the client's key. When the authority
// publishes a terms-of-service URI, prompt decides whether to accept it; a nil
// prompt accepts automatically. Registering an already-registered key resolves
// to the existing account.
func (c *Client) Register(ctx context.Context, contact []string, prompt func(tosURL string) bool) (*Registration, error) {
	if prompt == nil {
		prompt = acme.AcceptTOS
	}

	acct, err := c.ac.Register(ctx, &acme.Account{Contact: contact}, prompt)
	if errors.Is(err, acme.ErrAccountAlreadyExists) {
		acct, err = c.ac.GetReg(ctx, "")
	}
	if err != nil {
		return nil, fmt.Errorf("register account: %w", err)
	}

	reg := &Registration{
		URI:     acct.URI,
		Status:  Status(acct.Status),
		Contact: acct.Contact,
	}
	if dir, derr := c.ac.Discover(ctx); derr == nil {
		reg.TermsOfService = dir.Terms
	}
	return reg, nil
}

// Authorize obtains a fresh authorization for the domain. Authorities that
// advertise pre-authorization get a newAuthz request; otherwise a
// single-identifier order supplies the authorization.
func (c *Client) Authorize(ctx context.Context, domain string) (*Authorization, error) {
	dir, err := c.ac.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover directory: %w", err)
	}

	if dir.AuthzURL != "" {
		az, err := c.ac.Authorize(ctx, domain)
		if err != nil {
			return nil, fmt.Errorf("authorize %s: %w", domain, err)
		}
		return fromWireAuthorization(az), nil
	}

	order, err := c.ac.AuthorizeOrder(ctx, acme.DomainIDs(domain))
	if err != nil {
		return nil, fmt.Errorf("order authorization for %s: %w", domain, err)
	}
	if len(order.AuthzURLs) == 0 {
		return nil, fmt.Errorf("order for %s carries no authorizations", domain)
	}

	az, err := c.ac.GetAuthorization(ctx, order.AuthzURLs[0])
	if err != nil {
		return nil, fmt.Errorf("fetch authorization for %s: %w", domain, err)
	}
	return fromWireAuthorization(az), nil
}

// AcceptChallenge tells the authority the challenge response is in place.
func (c *Client) AcceptChallenge(ctx context.Context, ch Challenge) (Challenge, error) {
	accepted, err := c.ac.Accept(ctx, toWireChallenge(ch))
	if err != nil {
		return Challenge{}, fmt.Errorf("accept %s challenge: %w", ch.Type, err)
	}
	return fromWireChallenge(accepted), nil
}

// GetAuthorization re-fetches authorization state from the authority.
func (c *Client) GetAuthorization(ctx context.Context, uri string) (*Authorization, error) {
	az, err := c.ac.GetAuthorization(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("fetch authorization: %w", err)
	}
	return fromWireAuthorization(az), nil
}

// KeyAuthorization computes the challenge response for a token: the token
// concatenated with the account key thumbprint. The same value serves every
// challenge type; solvers transform it as their mechanism requires.
func (c *Client) KeyAuthorization(token string) (string, error) {
	ka, err := c.ac.HTTP01ChallengeResponse(token)
	if err != nil {
		return "", fmt.Errorf("compute key authorization: %w", err)
	}
	return ka, nil
}

// RequestIssuance submits the CSR for the domains covered by authz and returns
// the issued end-entity certificate. All authorizations must already be valid;
// the authority's order is finalized without re-validation.
func (c *Client) RequestIssuance(ctx context.Context, csrDER []byte, authz []*Authorization) (*CertificateResource, error) {
	if len(csrDER) == 0 {
		return nil, ErrEmptyCSR
	}

	domains := make([]string, 0, len(authz))
	for _, az := range authz {
		if az == nil || az.Domain == "" {
			continue
		}
		domains = append(domains, az.Domain)
	}
	if len(domains) == 0 {
		return nil, ErrNoAuthorizations
	}

	order, err := c.ac.AuthorizeOrder(ctx, acme.DomainIDs(domains...))
	if err != nil {
		return nil, issuanceError("create order", err)
	}
	if order.Status != acme.StatusReady {
		order, err = c.ac.WaitOrder(ctx, order.URI)
		if err != nil {
			return nil, issuanceError("wait for order", err)
		}
	}

	der, certURL, err := c.ac.CreateOrderCert(ctx, order.FinalizeURL, csrDER, false)
	if err != nil {
		return nil, issuanceError("finalize order", err)
	}
	if len(der) == 0 || len(der[0]) == 0 {
		return nil, fmt.Errorf("%w: authority returned an empty certificate", ErrIssuanceRejected)
	}

	return &CertificateResource{
		Domains:     domains,
		CertURL:     certURL,
		Certificate: der[0],
	}, nil
}

// FetchChain downloads the bundled certificate from the authority and returns
// the issuer chain, leaf excluded. A nil chain means the authority supplied no
// intermediates.
func (c *Client) FetchChain(ctx context.Context, res *CertificateResource) ([]*x509.Certificate, error) {
	if res == nil || res.CertURL == "" {
		return nil, ErrMissingCertificateURL
	}

	der, err := c.ac.FetchCert(ctx, res.CertURL, true)
	if err != nil {
		return nil, fmt.Errorf("fetch certificate chain: %w", err)
	}

	chain := make([]*x509.Certificate, 0, len(der))
	for i, b := range der {
		cert, err := x509.ParseCertificate(b)
		if err != nil {
			return nil, fmt.Errorf("parse chain certificate %d: %w", i, err)
		}
		chain = append(chain, cert)
	}
	if len(chain) <= 1 {
		return nil, nil
	}
	return chain[1:], nil
}

// issuanceError classifies authority responses: a 4xx problem document means
// the request was rejected and retrying the same input will not help.
func issuanceError(op string, err error) error {
	var ae *acme.Error
	if errors.As(err, &ae) && ae.StatusCode >= 400 && ae.StatusCode < 500 {
		return fmt.Errorf("%s: %w: %w", op, ErrIssuanceRejected, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

package ca

import (
	"time"

	"golang.org/x/crypto/acme"
)

// Status reflects the ACME object lifecycle states shared by authorizations,
// challenges, and orders.
type Status string

const (
	StatusUnknown     Status = ""
	StatusPending     Status = "pending"
	StatusProcessing  Status = "processing"
	StatusValid       Status = "valid"
	StatusInvalid     Status = "invalid"
	StatusDeactivated Status = "deactivated"
	StatusExpired     Status = "expired"
	StatusRevoked     Status = "revoked"
)

// ChallengeType identifies a domain-validation challenge mechanism.
type ChallengeType string

const (
	ChallengeTypeHTTP01    ChallengeType = "http-01"
	ChallengeTypeDNS01     ChallengeType = "dns-01"
	ChallengeTypeTLSALPN01 ChallengeType = "tls-alpn-01"
)

// Registration is the account object returned by the authority.
type Registration struct {
	// URI is the account URL assigned by the authority.
	URI string

	// Status is the account status reported by the authority.
	Status Status

	// Contact holds the registered contact URIs (mailto: addresses).
	Contact []string

	// TermsOfService is the terms URI from the authority's directory metadata,
	// empty when the authority publishes none.
	TermsOfService string
}

// Challenge is a single domain-validation challenge offered by the authority.
type Challenge struct {
	Type   ChallengeType
	URI    string
	Token  string
	Status Status
}

// Authorization is the per-domain validation state held by the authority.
type Authorization struct {
	// Domain is the identifier value this authorization covers.
	Domain string

	// URI is the authorization URL used for polling.
	URI string

	Status   Status
	Wildcard bool
	Expires  time.Time

	// Challenges lists the validation mechanisms the authority offers for this
	// domain. Exactly one is attempted per authorization.
	Challenges []Challenge
}

// CertificateResource describes an issued certificate as known to the
// authority: the end-entity certificate in DER form, the domains it was
// requested for, and the authority URL the chain can be re-fetched from.
type CertificateResource struct {
	Domains     []string
	CertURL     string
	Certificate []byte
}

func fromWireChallenge(ch *acme.Challenge) Challenge {
	if ch == nil {
		return Challenge{}
	}
	return Challenge{
		Type:   ChallengeType(ch.Type),
		URI:    ch.URI,
		Token:  ch.Token,
		Status: Status(ch.Status),
	}
}

func toWireChallenge(ch Challenge) *acme.Challenge {
	return &acme.Challenge{
		Type:  string(ch.Type),
		URI:   ch.URI,
		Token: ch.Token,
	}
}

func fromWireAuthorization(az *acme.Authorization) *Authorization {
	if az == nil {
		return nil
	}
	out := &Authorization{
		Domain:   az.Identifier.Value,
		URI:      az.URI,
		Status:   Status(az.Status),
		Wildcard: az.Wildcard,
		Expires:  az.Expires,
	}
	if len(az.Challenges) > 0 {
		out.Challenges = make([]Challenge, 0, len(az.Challenges))
		for _, ch := range az.Challenges {
			out.Challenges = append(out.Challenges, fromWireChallenge(ch))
		}
	}
	return out
}

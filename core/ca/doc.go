// Package ca implements the ACME protocol exchange with a certificate
// authority. It is the only package in certflow that talks to the authority;
// everything above it treats certificate issuance as a black box over these
// operations:
//
//   - Register: create or resolve the account for the bound key
//   - Authorize / AcceptChallenge / GetAuthorization / KeyAuthorization:
//     the per-domain validation primitives driven by the authorization
//     coordinator
//   - RequestIssuance: submit a CSR for already-authorized domains
//   - FetchChain: download the issuer chain for an issued certificate
//
// # Usage
//
//	client, err := ca.New(ca.Config{
//		DirectoryURL: cfg.Server,
//		Key:          accountKey,
//	})
//	if err != nil {
//		return err
//	}
//
//	reg, err := client.Register(ctx, cfg.Contact(), func(tosURL string) bool {
//		fmt.Println("terms:", tosURL)
//		return true
//	})
//
// # Errors
//
//   - ErrIssuanceRejected: the authority refused issuance (4xx problem);
//     retrying the same input will not succeed
//   - ErrMissingDirectoryURL, ErrMissingAccountKey: construction errors
//   - ErrNoAuthorizations, ErrEmptyCSR, ErrMissingCertificateURL: caller errors
//
// Authorization acquisition prefers the authority's pre-authorization endpoint
// and falls back to single-identifier orders when the directory does not
// advertise one, so the coordinator sees the same Authorization shape either
// way.
package ca

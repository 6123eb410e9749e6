// Package authz validates domain control with the certificate authority
// before issuance.
//
// The coordinator runs every requested domain through the same pipeline:
// fetch the authorization, pick the first offered challenge the solver
// supports, place the challenge response on the host, tell the authority to
// verify it, and poll until the authorization settles. Domains are processed
// in parallel up to a configured bound, and the outcome is all-or-nothing:
// one slice with an authorization per domain in input order, or an error and
// no authorizations at all.
//
// # Usage
//
//	coord, err := authz.NewCoordinator(client, solver,
//		authz.WithMaxConcurrent(8),
//		authz.WithPollTimeout(2*time.Minute),
//	)
//	if err != nil {
//		return err
//	}
//
//	auths, err := coord.GetAuthorizations(ctx, []string{"example.com", "www.example.com"})
//	if err != nil {
//		return err
//	}
//
// # Failure handling
//
// A domain that fails does not cancel its siblings; they run to completion so
// their challenge responses can be removed cleanly. The returned error wraps
// one error per failed domain and matches ErrAuthorizationFailed or
// ErrAuthorizationTimeout with errors.Is depending on how each domain ended.
//
// # Cleanup
//
// Every challenge response placed during a run is removed through the
// solver's CleanUp before GetAuthorizations returns, on success and on
// failure alike. Cleanup errors are logged and do not change the outcome.
package authz

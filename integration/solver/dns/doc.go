// Package dns solves dns-01 challenges by planting TXT records through any
// DNS provider from the lego ecosystem.
//
// dns-01 is the only challenge type public authorities accept for wildcard
// names. The solver takes a lego challenge.Provider, so every provider lego
// ships works unchanged; NewCloudflare wires the Cloudflare one from an API
// token.
//
// # Usage
//
//	solver, err := dns.NewCloudflare(os.Getenv("CLOUDFLARE_API_TOKEN"),
//		dns.WithPropagationWait(30*time.Second))
//	if err != nil {
//		return err
//	}
//
//	coordinator, err := authz.NewCoordinator(client, solver)
//	if err != nil {
//		return err
//	}
//
// # Propagation
//
// Authorities retry DNS lookups during validation, so a propagation wait is
// usually unnecessary with fast providers. Configure WithPropagationWait for
// backends with slow zone transfers, and size the coordinator's poll timeout
// to cover it.
package dns

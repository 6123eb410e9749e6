// Package standalone solves http-01 challenges with a short-lived HTTP
// listener of its own, for hosts that do not run a web server.
//
// The listener wraps lego's http01.ProviderServer: Present binds the
// configured port and serves the key authorization, CleanUp shuts the
// listener down. Because a single port backs every challenge, presentations
// are serialized internally; with a parallel authorization coordinator the
// extra domains simply queue.
//
// # Usage
//
//	solver, err := standalone.New(standalone.WithAddress(":8080"))
//	if err != nil {
//		return err
//	}
//
//	coordinator, err := authz.NewCoordinator(client, solver)
//	if err != nil {
//		return err
//	}
//
// The default address is ":80", which public authorities require for http-01
// validation. Use WithAddress only when a proxy or firewall forwards port 80
// to the alternate port, and WithProxyHeader when that proxy rewrites the
// Host header.
package standalone

// Package webroot solves http-01 challenges by writing key authorizations
// under the document root of a web server that is already running.
//
// During validation the authority fetches
// http://<domain>/.well-known/acme-challenge/<token>. Present writes that
// file atomically so a concurrent fetch never observes a partial response;
// CleanUp removes it and leaves the .well-known directories in place for
// later renewals.
//
// # Usage
//
//	solver, err := webroot.New("/var/www/html")
//	if err != nil {
//		return err
//	}
//
//	coordinator, err := authz.NewCoordinator(client, solver)
//	if err != nil {
//		return err
//	}
//
// The web server must serve the document root over plain HTTP on port 80 for
// every domain being validated. Tokens that do not survive filepath.Base
// unchanged are rejected with ErrInvalidToken before any file is touched.
package webroot

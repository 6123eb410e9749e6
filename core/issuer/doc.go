// Package issuer is the engine's entry point for accounts and certificates.
//
// Register creates the account the authority will associate issued
// certificates with, honoring a terms-of-service decision callback.
// Issuer.ObtainCertificate turns an ordered domain list into a private key, a
// CSR, and an issued certificate with its chain; ObtainCertificateFromCSR
// does the same for a caller-supplied CSR, deriving the domain list from the
// request itself.
//
// # Usage
//
//	acct, err := issuer.Register(ctx, cfg, store, newClient, func(tosURL string) bool {
//		fmt.Println("Terms:", tosURL)
//		return true
//	})
//	if err != nil {
//		return err
//	}
//
//	iss, err := issuer.New(cfg, client, coordinator)
//	if err != nil {
//		return err
//	}
//	res, err := iss.ObtainCertificate(ctx, []string{"example.com", "www.example.com"})
//	if err != nil {
//		return err
//	}
//	// res.Resource, res.Chain, res.Key, res.CSR
//
// SaveCertificate archives issued material under the certificate directory
// with indexed, never-reused names; InstallLive maintains the stable
// cert.pem, chain.pem, fullchain.pem, and privkey.pem paths a server is
// configured against:
//
//	if _, _, err := issuer.SaveCertificate(res, cfg.CertDir()); err != nil {
//		return err
//	}
//	paths, err := issuer.InstallLive(res, cfg.LiveDir(), "example.com")
//	if err != nil {
//		return err
//	}
//	// paths.FullChain, paths.PrivKey
//
// Failures keep their origin: authorization problems match the authz package
// sentinels, authority rejections match ca.ErrIssuanceRejected, and a
// declined terms callback is always ErrTermsDeclined.
package issuer

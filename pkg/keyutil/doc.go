// Package keyutil generates and persists the private keys and certificate
// signing requests the issuance workflow consumes. Files are written with
// indexed, collision-free names so repeated runs never clobber earlier
// material:
//
//	keys/0000_key-certflow.pem   (0600)
//	certs/0000_csr-certflow.pem  (0644)
//
// Domain extraction follows the authority's view of a CSR: common name first,
// then subject alternative names, duplicates dropped in encounter order.
package keyutil

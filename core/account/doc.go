// Package account persists ACME account material: the private key requests
// are signed with and the registration object the authority issued for it.
//
// # Types
//
//   - Account: key plus registration, identified by a key-derived id
//   - Store: the persistence interface the registration workflow saves through
//   - FileStore: one directory per account with atomic writes
//   - MemoryStore: in-process store for tests and embedders
//
// # Storage Layout
//
// FileStore keeps each account in its own directory named after the key id:
//
//	accounts/<server-path>/
//	└── 1a2b3c4d5e6f7081/
//	    ├── private_key.pem     # PKCS#8, 0600
//	    └── registration.json   # authority account object
//
// The <server-path> segment comes from config.Config.AccountsDir, so accounts
// registered against different authorities never share directories.
//
// # Usage
//
//	store, err := account.NewFileStore(cfg.AccountsDir())
//	if err != nil {
//		return err
//	}
//
//	acct, err := store.Load(ctx)
//	switch {
//	case errors.Is(err, account.ErrNoAccount):
//		// register a new account
//	case err != nil:
//		return err
//	}
package account

// Package config provides type-safe environment variable loading with caching
// and the engine configuration with its derived on-disk layout.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/certflow/core/config"
//
//	func main() {
//		var cfg config.Config
//		config.MustLoad(&cfg)
//
//		if err := cfg.Validate(); err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Println(cfg.AccountsDir()) // /etc/certflow/accounts/acme-v02.api.letsencrypt.org/directory
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 config.Config
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 config.Config
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Custom configuration structs are cached independently by type, so embedders
// can load their own env-tagged structs through the same helpers.
//
// # Directory Layout
//
// All paths are derived, never stored, so a Config is a single source of truth:
//
//	ConfigDir/
//	├── accounts/<server-path>/   account keys and registration data
//	├── keys/                     generated certificate private keys
//	├── certs/                    generated CSRs and issued certificates
//	├── renewal/                  per-certificate renewal configuration files
//	├── archive/                  historical certificate versions
//	└── live/                     current certificate material
//	WorkDir/
//	├── backups/                  checkpoint store
//	└── tmp/                      in-progress scratch space
//
// The <server-path> segment is the authority's host plus URL path, which keeps
// accounts registered against staging and production endpoints separate.
package config

package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// dotenvOnce guards the one-time .env autoload. A missing .env file is not
	// an error; explicit environment variables always take precedence.
	dotenvOnce sync.Once

	// cache stores one parsed value per configuration type.
	cache sync.Map // reflect.Type -> parsed struct value
)

// Load parses environment variables into cfg. The first successful load of a
// given type is cached; subsequent calls for the same type return the cached
// value without re-reading the environment.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	typ := reflect.TypeOf(*cfg)
	if cached, ok := cache.Load(typ); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to parse environment for %s: %w", typ, err)
	}

	actual, _ := cache.LoadOrStore(typ, *cfg)
	*cfg = actual.(T)
	return nil
}

// MustLoad is Load that panics on failure. Intended for application startup
// where a broken environment should halt the process immediately.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

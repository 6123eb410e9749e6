// Package logger provides structured logging attribute helpers built on Go's
// standard slog package. Components across certflow accept a *slog.Logger and
// use these helpers to keep attribute keys consistent between the issuance
// workflow, the authorization coordinator, and the checkpoint store.
//
// # Nil Safety
//
// All helpers return an empty slog.Attr for nil or empty input, so call sites
// never need explicit nil checks:
//
//	log.Info("authorization complete",
//		logger.Domain("example.com"),
//		logger.Error(err), // safe when err is nil
//	)
//
// # Attribute Keys
//
//   - Error/Errors: "error" / "errors"
//   - Duration/Elapsed: "duration" / "elapsed"
//   - Domain/Domains: "domain" / "domains"
//   - Checkpoint: "checkpoint"
//
// # Usage
//
//	import (
//		"log/slog"
//		"os"
//
//		"github.com/dmitrymomot/certflow/core/logger"
//	)
//
//	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	log.Info("certificate obtained",
//		logger.Domains([]string{"example.com", "www.example.com"}),
//		logger.Elapsed(start),
//	)
//
// Components default to a discard handler when no logger is supplied, so
// logging is always opt-in.
package logger

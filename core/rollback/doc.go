// Package rollback reverts installer configuration changes through the
// checkpoint stack and restarts the affected service.
//
// The coordinator is deliberately lenient about missing installers: an
// engine run that only obtains certificates records no configuration
// changes, so rolling back succeeds without doing anything. A restart
// failure after a successful revert is surfaced as ErrInstallerRestart so
// callers can tell "nothing changed" apart from "files reverted but the
// service still runs the old configuration".
package rollback

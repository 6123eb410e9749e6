// Package plugin wires challenge solvers and certificate installers into the
// engine by name.
//
// Solvers answer domain-validation challenges (webroot files, a standalone
// listener, DNS records). Installers push issued certificates into a host
// service and can undo their own configuration changes. Both are registered
// as factories so construction can read the engine configuration at the
// moment they are picked.
//
// Installers are optional: resolving an empty installer name against an
// empty registry yields no installer, and the engine runs in obtain-only
// mode.
package plugin

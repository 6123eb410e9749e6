// Package command installs configuration for servers this process does not
// manage directly: nginx, apache, haproxy, anything reloaded from a shell.
//
// Apply checkpoints the target file before writing it, so every deployment
// can be undone in order through RollbackCheckpoints. Restart shells out to
// the configured reload command and reports its combined output on failure.
//
// # Usage
//
//	store, err := checkpoint.NewStore(cfg.CheckpointsDir())
//	if err != nil {
//		return err
//	}
//
//	inst, err := command.New(store, "nginx -s reload")
//	if err != nil {
//		return err
//	}
//
//	if err := inst.Apply(ctx, "deploy fullchain", "/etc/nginx/certs/site.pem", pem); err != nil {
//		return err
//	}
//	if err := inst.Restart(ctx); err != nil {
//		return err
//	}
//
// The installer satisfies plugin.Installer, so it can be registered and then
// driven by the rollback coordinator.
package command

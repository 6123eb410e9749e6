// Package checkpoint keeps an on-disk stack of configuration snapshots so
// changes made to host files can be undone in reverse order.
//
// A checkpoint archives the content and permissions of a set of files before
// they are mutated. Rolling back N checkpoints restores the N most recent
// snapshots newest-first and pops them off the stack; files recorded as
// absent at snapshot time are removed again. Checkpoints are committed with
// a single directory rename, so a crashed create never leaves a half
// checkpoint on the stack.
//
// # Usage
//
//	store, err := checkpoint.NewStore(cfg.CheckpointsDir())
//	if err != nil {
//		return err
//	}
//
//	// Snapshot before touching the vhost config.
//	if _, err := store.Create(ctx, "install example.com cert", []string{vhostPath}); err != nil {
//		return err
//	}
//
//	// Later: undo the last two changes.
//	if err := store.Rollback(ctx, 2); err != nil {
//		return err
//	}
//
// Concurrent use within a process is serialized by the store; a file lock in
// the checkpoint directory serializes access across processes sharing it.
package checkpoint

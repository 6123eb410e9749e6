package command_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certflow/core/checkpoint"
	"github.com/dmitrymomot/certflow/integration/installer/command"
)

func newInstaller(t *testing.T, restartCmd string) *command.Installer {
	t.Helper()

	store, err := checkpoint.NewStore(t.TempDir())
	require.NoError(t, err)

	inst, err := command.New(store, restartCmd)
	require.NoError(t, err)
	return inst
}

func TestNewRequiresStore(t *testing.T) {
	t.Parallel()

	_, err := command.New(nil, "")
	require.ErrorIs(t, err, command.ErrNilStore)
}

func TestApplyEmptyPath(t *testing.T) {
	t.Parallel()

	inst := newInstaller(t, "")
	err := inst.Apply(context.Background(), "note", "   ", []byte("conf"))
	require.ErrorIs(t, err, command.ErrEmptyPath)
}

func TestApplyCheckpointsBeforeWrite(t *testing.T) {
	t.Parallel()

	inst := newInstaller(t, "")
	path := filepath.Join(t.TempDir(), "site.conf")
	require.NoError(t, os.WriteFile(path, []byte("server v1"), 0o644))

	ctx := context.Background()
	require.NoError(t, inst.Apply(ctx, "upgrade to v2", path, []byte("server v2")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "server v2", string(data))

	require.NoError(t, inst.RollbackCheckpoints(ctx, 1))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "server v1", string(data))
}

func TestApplyNewFileRollbackRemoves(t *testing.T) {
	t.Parallel()

	inst := newInstaller(t, "")
	path := filepath.Join(t.TempDir(), "fresh.conf")

	ctx := context.Background()
	require.NoError(t, inst.Apply(ctx, "first deploy", path, []byte("server v1")))
	require.FileExists(t, path)

	require.NoError(t, inst.RollbackCheckpoints(ctx, 1))
	assert.NoFileExists(t, path)
}

func TestApplyPreservesFileMode(t *testing.T) {
	t.Parallel()

	inst := newInstaller(t, "")
	path := filepath.Join(t.TempDir(), "secret.conf")
	require.NoError(t, os.WriteFile(path, []byte("token v1"), 0o600))

	require.NoError(t, inst.Apply(context.Background(), "rotate", path, []byte("token v2")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRollbackCheckpointsInsufficientStack(t *testing.T) {
	t.Parallel()

	inst := newInstaller(t, "")
	path := filepath.Join(t.TempDir(), "site.conf")

	ctx := context.Background()
	require.NoError(t, inst.Apply(ctx, "deploy", path, []byte("server v1")))

	err := inst.RollbackCheckpoints(ctx, 5)
	require.ErrorIs(t, err, checkpoint.ErrInsufficientCheckpoints)
}

func TestRestartRunsCommand(t *testing.T) {
	t.Parallel()

	marker := filepath.Join(t.TempDir(), "restarted")
	inst := newInstaller(t, "echo reloaded > "+marker)

	require.NoError(t, inst.Restart(context.Background()))
	assert.FileExists(t, marker)
}

func TestRestartNoCommandIsNoop(t *testing.T) {
	t.Parallel()

	inst := newInstaller(t, "   ")
	require.NoError(t, inst.Restart(context.Background()))
}

func TestRestartFailureIncludesOutput(t *testing.T) {
	t.Parallel()

	inst := newInstaller(t, "echo config test failed >&2; exit 3")

	err := inst.Restart(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config test failed")
}

func TestRestartCanceledContext(t *testing.T) {
	t.Parallel()

	inst := newInstaller(t, "sleep 5")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, inst.Restart(ctx))
}

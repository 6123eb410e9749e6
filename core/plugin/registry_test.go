package plugin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certflow/core/authz"
	"github.com/dmitrymomot/certflow/core/ca"
	"github.com/dmitrymomot/certflow/core/config"
	"github.com/dmitrymomot/certflow/core/plugin"
)

type fakeSolver struct{ name string }

func (fakeSolver) Supports(ca.Challenge) bool { return true }
func (fakeSolver) Present(context.Context, string, ca.Challenge, string) error {
	return nil
}
func (fakeSolver) CleanUp(context.Context, string, ca.Challenge, string) error {
	return nil
}

type fakeInstaller struct{ name string }

func (fakeInstaller) RollbackCheckpoints(context.Context, int) error { return nil }
func (fakeInstaller) Restart(context.Context) error                  { return nil }

func solverFactory(name string) plugin.SolverFactory {
	return func(context.Context, *config.Config) (authz.Solver, error) {
		return fakeSolver{name: name}, nil
	}
}

func installerFactory(name string) plugin.InstallerFactory {
	return func(context.Context, *config.Config) (plugin.Installer, error) {
		return fakeInstaller{name: name}, nil
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	reg := plugin.NewRegistry()

	require.ErrorIs(t, reg.RegisterSolver("  ", solverFactory("x")), plugin.ErrEmptyName)
	require.ErrorIs(t, reg.RegisterSolver("webroot", nil), plugin.ErrNilFactory)
	require.ErrorIs(t, reg.RegisterInstaller("", installerFactory("x")), plugin.ErrEmptyName)
	require.ErrorIs(t, reg.RegisterInstaller("apache", nil), plugin.ErrNilFactory)

	require.NoError(t, reg.RegisterSolver("webroot", solverFactory("webroot")))
	err := reg.RegisterSolver("webroot", solverFactory("again"))
	require.ErrorIs(t, err, plugin.ErrDuplicateName)
}

func TestSolverLookup(t *testing.T) {
	t.Parallel()

	reg := plugin.NewRegistry()
	require.NoError(t, reg.RegisterSolver("webroot", solverFactory("webroot")))
	require.NoError(t, reg.RegisterSolver("standalone", solverFactory("standalone")))

	solver, err := reg.Solver(context.Background(), &config.Config{}, "webroot")
	require.NoError(t, err)
	assert.Equal(t, fakeSolver{name: "webroot"}, solver)

	_, err = reg.Solver(context.Background(), &config.Config{}, "dns")
	require.ErrorIs(t, err, plugin.ErrUnknownSolver)
	assert.Contains(t, err.Error(), "standalone webroot")
}

func TestPickInstaller(t *testing.T) {
	t.Parallel()

	t.Run("named lookup", func(t *testing.T) {
		t.Parallel()
		reg := plugin.NewRegistry()
		require.NoError(t, reg.RegisterInstaller("apache", installerFactory("apache")))
		require.NoError(t, reg.RegisterInstaller("nginx", installerFactory("nginx")))

		inst, err := reg.PickInstaller(context.Background(), &config.Config{}, "nginx")
		require.NoError(t, err)
		assert.Equal(t, fakeInstaller{name: "nginx"}, inst)
	})

	t.Run("named lookup unknown", func(t *testing.T) {
		t.Parallel()
		reg := plugin.NewRegistry()
		_, err := reg.PickInstaller(context.Background(), &config.Config{}, "apache")
		require.ErrorIs(t, err, plugin.ErrUnknownInstaller)
	})

	t.Run("empty name picks sole installer", func(t *testing.T) {
		t.Parallel()
		reg := plugin.NewRegistry()
		require.NoError(t, reg.RegisterInstaller("apache", installerFactory("apache")))

		inst, err := reg.PickInstaller(context.Background(), &config.Config{}, "")
		require.NoError(t, err)
		assert.Equal(t, fakeInstaller{name: "apache"}, inst)
	})

	t.Run("empty name with none registered is not an error", func(t *testing.T) {
		t.Parallel()
		reg := plugin.NewRegistry()
		inst, err := reg.PickInstaller(context.Background(), &config.Config{}, "")
		require.NoError(t, err)
		assert.Nil(t, inst)
	})

	t.Run("empty name with several registered is ambiguous", func(t *testing.T) {
		t.Parallel()
		reg := plugin.NewRegistry()
		require.NoError(t, reg.RegisterInstaller("apache", installerFactory("apache")))
		require.NoError(t, reg.RegisterInstaller("nginx", installerFactory("nginx")))

		_, err := reg.PickInstaller(context.Background(), &config.Config{}, "")
		require.ErrorIs(t, err, plugin.ErrAmbiguousInstaller)
		assert.Contains(t, err.Error(), "apache nginx")
	})
}

func TestNames(t *testing.T) {
	t.Parallel()

	reg := plugin.NewRegistry()
	require.NoError(t, reg.RegisterSolver("webroot", solverFactory("w")))
	require.NoError(t, reg.RegisterSolver("dns", solverFactory("d")))
	require.NoError(t, reg.RegisterInstaller("nginx", installerFactory("n")))

	assert.Equal(t, []string{"dns", "webroot"}, reg.SolverNames())
	assert.Equal(t, []string{"nginx"}, reg.InstallerNames())
}

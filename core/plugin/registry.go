package plugin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrymomot/certflow/core/authz"
	"github.com/dmitrymomot/certflow/core/config"
)

// Installer deploys issued certificates into a host service and can undo its
// own configuration changes through the checkpoint stack.
type Installer interface {
	// RollbackCheckpoints undoes the n most recent configuration checkpoints.
	RollbackCheckpoints(ctx context.Context, n int) error

	// Restart reloads the host service so reverted configuration takes effect.
	Restart(ctx context.Context) error
}

// InstallerFactory constructs a named installer from the engine configuration.
type InstallerFactory func(ctx context.Context, cfg *config.Config) (Installer, error)

// SolverFactory constructs a challenge solver from the engine configuration.
type SolverFactory func(ctx context.Context, cfg *config.Config) (authz.Solver, error)

// Registry holds the solver and installer implementations available to the
// engine, keyed by name. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	solvers    map[string]SolverFactory
	installers map[string]InstallerFactory
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		solvers:    make(map[string]SolverFactory),
		installers: make(map[string]InstallerFactory),
	}
}

// RegisterSolver adds a solver factory under name.
func (r *Registry) RegisterSolver(name string, factory SolverFactory) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if factory == nil {
		return fmt.Errorf("%w: solver %s", ErrNilFactory, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.solvers[name]; exists {
		return fmt.Errorf("%w: solver %s", ErrDuplicateName, name)
	}
	r.solvers[name] = factory
	return nil
}

// RegisterInstaller adds an installer factory under name.
func (r *Registry) RegisterInstaller(name string, factory InstallerFactory) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if factory == nil {
		return fmt.Errorf("%w: installer %s", ErrNilFactory, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.installers[name]; exists {
		return fmt.Errorf("%w: installer %s", ErrDuplicateName, name)
	}
	r.installers[name] = factory
	return nil
}

// Solver constructs the solver registered under name.
func (r *Registry) Solver(ctx context.Context, cfg *config.Config, name string) (authz.Solver, error) {
	r.mu.RLock()
	factory, ok := r.solvers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s (registered: %s)", ErrUnknownSolver, name, strings.Join(r.SolverNames(), " "))
	}
	return factory(ctx, cfg)
}

// PickInstaller resolves the installer to use. A non-empty name must match a
// registered installer. An empty name picks the sole registered installer,
// and resolves to no installer at all when none are registered; deployments
// then stop at obtaining certificates, which is a supported mode, not an
// error.
func (r *Registry) PickInstaller(ctx context.Context, cfg *config.Config, name string) (Installer, error) {
	r.mu.RLock()
	factory, ok := r.installers[name]
	count := len(r.installers)
	r.mu.RUnlock()

	if name != "" {
		if !ok {
			return nil, fmt.Errorf("%w: %s (registered: %s)", ErrUnknownInstaller, name, strings.Join(r.InstallerNames(), " "))
		}
		return factory(ctx, cfg)
	}

	switch count {
	case 0:
		return nil, nil
	case 1:
		r.mu.RLock()
		for _, f := range r.installers {
			factory = f
		}
		r.mu.RUnlock()
		return factory(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w (registered: %s)", ErrAmbiguousInstaller, strings.Join(r.InstallerNames(), " "))
	}
}

// SolverNames lists registered solver names in sorted order.
func (r *Registry) SolverNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.solvers))
	for name := range r.solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InstallerNames lists registered installer names in sorted order.
func (r *Registry) InstallerNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.installers))
	for name := range r.installers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

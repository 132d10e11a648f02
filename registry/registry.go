// Package registry maps plan-file locations to agent factories. Locations
// are opaque strings (the built-ins use "builtin/<name>"); a factory is
// invoked fresh on every resolution, so repeated use of one agent in a run
// constructs it each time.
package registry

import (
	"fmt"
	"sync"
)

// Factory builds one unit instance. The returned value is type-asserted
// against the contract the caller needs (see ResolveAs).
type Factory func() (any, error)

// NotFoundError reports a location with no registered factory.
type NotFoundError struct {
	Location string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no agent registered at %q", e.Location)
}

// ContractError reports a resolved unit that lacks the required entry point.
type ContractError struct {
	Location string
	Want     string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("agent at %q does not implement %s", e.Location, e.Want)
}

type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func New() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register installs a factory, replacing any previous one at the location.
func (r *Registry) Register(location string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[location] = f
}

// Resolve invokes the factory registered at the location.
func (r *Registry) Resolve(location string) (any, error) {
	r.mu.RLock()
	f, ok := r.factories[location]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Location: location}
	}

	unit, err := f()
	if err != nil {
		return nil, fmt.Errorf("failed to construct agent at %q: %w", location, err)
	}
	return unit, nil
}

// Locations lists the registered locations (for diagnostics).
func (r *Registry) Locations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.factories))
	for loc := range r.factories {
		out = append(out, loc)
	}
	return out
}

// ResolveAs resolves a location and checks the unit satisfies the
// contract T. want names the missing entry point in the error.
func ResolveAs[T any](r *Registry, location, want string) (T, error) {
	var zero T

	unit, err := r.Resolve(location)
	if err != nil {
		return zero, err
	}

	typed, ok := unit.(T)
	if !ok {
		return zero, &ContractError{Location: location, Want: want}
	}
	return typed, nil
}

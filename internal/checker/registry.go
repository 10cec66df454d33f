package checker

import (
	"fmt"
	"sync"
)

// CheckFactory builds a fresh Check value for one registered class path.
type CheckFactory func() Check

// ServiceCheckerFactory builds a fresh ServiceChecker for one registered
// service key.
type ServiceCheckerFactory func() ServiceChecker

// Registry is a process-wide mapping from symbolic path/service key to
// constructor. It replaces the source's dynamic dotted-path import (spec
// REDESIGN FLAGS §9): nothing here ever imports a module at runtime, it
// only looks up functions registered ahead of time. A Registry is safe
// for concurrent use; processes fill it once at start (see
// samples.RegisterAll) and only read it afterwards.
type Registry struct {
	mu       sync.RWMutex
	checks   map[string]CheckFactory
	services map[string]ServiceCheckerFactory
}

// NewRegistry returns an empty Registry. samples.RegisterAll fills one
// with the sample checks and service checkers.
func NewRegistry() *Registry {
	return &Registry{
		checks:   make(map[string]CheckFactory),
		services: make(map[string]ServiceCheckerFactory),
	}
}

// RegisterCheck associates a class path with a Check constructor. Called
// at process start (samples.RegisterAll), never at request time.
func (r *Registry) RegisterCheck(classPath string, factory CheckFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[classPath] = factory
}

// RegisterServiceChecker associates a service key with a ServiceChecker
// constructor.
func (r *Registry) RegisterServiceChecker(serviceKey string, factory ServiceCheckerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[serviceKey] = factory
}

// ResolveCheck returns the registered Check constructor for classPath.
// The registry never instantiates on the caller's behalf — it returns
// the factory so the caller can build (and then mutate, e.g. copying
// TimeoutSeconds/Weight from the owning ServiceCheck row) its own value.
func (r *Registry) ResolveCheck(classPath string) (CheckFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.checks[classPath]
	if !ok {
		return nil, fmt.Errorf("checker: no Check registered for class path %q", classPath)
	}
	return factory, nil
}

// ResolveServiceChecker returns the registered ServiceChecker constructor
// for serviceKey.
func (r *Registry) ResolveServiceChecker(serviceKey string) (ServiceCheckerFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.services[serviceKey]
	if !ok {
		return nil, fmt.Errorf("checker: no ServiceChecker registered for service key %q", serviceKey)
	}
	return factory, nil
}

// ServiceKeys returns every registered service key, in no particular
// order.
func (r *Registry) ServiceKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.services))
	for k := range r.services {
		keys = append(keys, k)
	}
	return keys
}

package typedesc

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sort"
	"sync"
)

// Ref names a registered type: its module spec, base name, and optional
// version.
type Ref struct {
	Module  string
	Name    string
	Version string
}

// Registration pairs a name with the concrete type it denotes inside a
// module, plus an optional version string carried into descriptors.
type Registration struct {
	Name    string
	Type    reflect.Type
	Version string
}

// Reg is a convenience constructor for a Registration.
func Reg(name string, t reflect.Type) Registration {
	return Registration{Name: name, Type: t}
}

type moduleEntry struct {
	names map[string]Registration
	order []string
}

// Registry is the closed, explicitly-built set of types a descriptor may
// resolve to. Modules are registered once from an ordered list at startup;
// re-registering an identical entry is a no-op and a conflicting
// re-registration is an error, so registration order cannot silently
// change resolution.
//
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*moduleEntry
	byType  map[reflect.Type]Ref
	loaded  map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]*moduleEntry),
		byType:  make(map[reflect.Type]Ref),
		loaded:  make(map[string]bool),
	}
}

// RegisterType adds one type under module/name. Idempotent for identical
// registrations; registering a different type under an existing name
// fails.
func (r *Registry) RegisterType(module, name string, t reflect.Type) error {
	return r.register(module, Registration{Name: name, Type: t})
}

// RegisterVersioned is RegisterType with a version string that descriptors
// computed from t will carry.
func (r *Registry) RegisterVersioned(module, name, version string, t reflect.Type) error {
	return r.register(module, Registration{Name: name, Type: t, Version: version})
}

func (r *Registry) register(module string, reg Registration) error {
	if reg.Type == nil {
		return fmt.Errorf("typedesc: cannot register nil type as %s:%s", module, reg.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.modules[module]
	if !ok {
		m = &moduleEntry{names: make(map[string]Registration)}
		r.modules[module] = m
	}
	if existing, ok := m.names[reg.Name]; ok {
		if existing.Type == reg.Type && existing.Version == reg.Version {
			return nil
		}
		return fmt.Errorf("typedesc: %s:%s already registered as %v", module, reg.Name, existing.Type)
	}
	m.names[reg.Name] = reg
	m.order = append(m.order, reg.Name)

	// First registration wins for reverse lookup so aliases do not flip
	// the identity recorded in new documents.
	if _, ok := r.byType[reg.Type]; !ok {
		r.byType[reg.Type] = Ref{Module: module, Name: reg.Name, Version: reg.Version}
	}
	return nil
}

// RegisterModule registers an ordered list of types under one module spec.
func (r *Registry) RegisterModule(module string, regs ...Registration) error {
	for _, reg := range regs {
		if err := r.register(module, reg); err != nil {
			return err
		}
	}
	return nil
}

// LoadModule runs load exactly once for the given module key and registers
// the returned list. Repeat calls with the same key reuse the loaded
// module without invoking load again. This is the file-backed-module
// analog: the key stands in for the file, derived stably from its path.
func (r *Registry) LoadModule(key string, load func() ([]Registration, error)) error {
	r.mu.RLock()
	done := r.loaded[key]
	r.mu.RUnlock()
	if done {
		return nil
	}

	regs, err := load()
	if err != nil {
		return fmt.Errorf("typedesc: loading module %q: %w", key, err)
	}
	if err := r.RegisterModule(key, regs...); err != nil {
		return err
	}

	r.mu.Lock()
	r.loaded[key] = true
	r.mu.Unlock()
	return nil
}

// ModuleKeyForPath derives a stable module key from a filesystem path, so
// repeated loads of the same path share one module.
func ModuleKeyForPath(path string) string {
	h := fnv.New32a()
	h.Write([]byte(path))
	return fmt.Sprintf("module_%08x", h.Sum32())
}

// Lookup returns the Ref for a registered type.
func (r *Registry) Lookup(t reflect.Type) (Ref, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.byType[t]
	return ref, ok
}

// Type resolves module/name to the registered type. A missing module or
// name yields a ResolutionError.
func (r *Registry) Type(module, name string) (reflect.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[module]
	if !ok {
		return nil, &ResolutionError{Module: module}
	}
	reg, ok := m.names[name]
	if !ok {
		return nil, &ResolutionError{Module: module, Name: name}
	}
	return reg.Type, nil
}

// Names returns the registered names of a module in registration order.
func (r *Registry) Names(module string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[module]
	if !ok {
		return nil
	}
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Modules returns the registered module specs, sorted.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.modules))
	for module := range r.modules {
		out = append(out, module)
	}
	sort.Strings(out)
	return out
}

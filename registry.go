package fncache

import (
	"fmt"
	"sort"
	"sync"
)

// Registered is the part of a Manager a Registry needs.
type Registered interface {
	Name() string
	Config() Config
	InvalidateAll()
	Enable()
	Disable()
	Enabled() bool
}

var _ Registered = (*Manager[int])(nil)

// Registry tracks managers by name so operators can enumerate and flush
// them. It is optional and injected through Options.Registry.
type Registry struct {
	mu sync.RWMutex
	m  map[string]Registered
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[string]Registered)}
}

// Register fails with ErrDuplicateName when the name is taken.
func (r *Registry) Register(c Registered) error {
	name := c.Name()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.m[name] = c
	return nil
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.m, name)
	r.mu.Unlock()
}

func (r *Registry) Get(name string) (Registered, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.m[name]
	return c, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.m))
	for n := range r.m {
		out = append(out, n)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (r *Registry) snapshot() []Registered {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cs := make([]Registered, 0, len(r.m))
	for _, c := range r.m {
		cs = append(cs, c)
	}
	return cs
}

// EnableAll enables every registered manager and returns how many it reached.
func (r *Registry) EnableAll() int {
	cs := r.snapshot()
	for _, c := range cs {
		c.Enable()
	}
	return len(cs)
}

// DisableAll disables every registered manager and returns how many it
// reached. Managers registered later start enabled.
func (r *Registry) DisableAll() int {
	cs := r.snapshot()
	for _, c := range cs {
		c.Disable()
	}
	return len(cs)
}

// Status maps each registered name to whether that manager is enabled.
func (r *Registry) Status() map[string]bool {
	cs := r.snapshot()
	out := make(map[string]bool, len(cs))
	for _, c := range cs {
		out[c.Name()] = c.Enabled()
	}
	return out
}

// InvalidateAll bumps the global version of every registered manager and
// returns how many it reached.
func (r *Registry) InvalidateAll() int {
	cs := r.snapshot()
	for _, c := range cs {
		c.InvalidateAll()
	}
	return len(cs)
}

package keyspace

import (
	"sync"
	"sync/atomic"
)

// Versions holds the global register and one register per subject.
// Registers start at 0, only go up and are never reset or pruned: dropping
// a subject register would bring back entries written before its last bump.
type Versions struct {
	global atomic.Uint64

	mu       sync.RWMutex
	subjects map[string]*atomic.Uint64
}

func NewVersions() *Versions {
	return &Versions{subjects: make(map[string]*atomic.Uint64)}
}

func (v *Versions) Global() uint64 { return v.global.Load() }

// BumpGlobal atomically increments and returns the global register.
func (v *Versions) BumpGlobal() uint64 { return v.global.Add(1) }

// Subject returns the subject's register; unknown subjects read 0 and are not
// materialized, so reads never grow the map.
func (v *Versions) Subject(id string) uint64 {
	v.mu.RLock()
	r, ok := v.subjects[id]
	v.mu.RUnlock()
	if !ok {
		return 0
	}
	return r.Load()
}

// BumpSubject atomically increments and returns the subject's register.
func (v *Versions) BumpSubject(id string) uint64 {
	v.mu.RLock()
	r, ok := v.subjects[id]
	v.mu.RUnlock()
	if !ok {
		v.mu.Lock()
		if r, ok = v.subjects[id]; !ok {
			r = new(atomic.Uint64)
			v.subjects[id] = r
		}
		v.mu.Unlock()
	}
	return r.Add(1)
}

// Subjects counts materialized subject registers.
func (v *Versions) Subjects() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.subjects)
}

// Package locks provides the per-key lock table used to collapse concurrent
// cache misses into a single computation.
//
// Usage at a call site:
//
//	err := table.Do(ctx, physicalKey, func() error {
//	    if v, ok := store.Get(ctx, physicalKey); ok {
//	        result = v
//	        return nil
//	    }
//	    v, err := compute(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    store.Set(ctx, physicalKey, v, ttl)
//	    result = v
//	    return nil
//	})
//
// Locks serialize goroutines of one process only.
package locks

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const defaultShards = 32

// Mutex is a mutual-exclusion lock whose Lock can be abandoned through a
// context. The zero value is not usable; obtain one from Table.Acquire.
type Mutex struct {
	ch chan struct{}
}

func newMutex() *Mutex { return &Mutex{ch: make(chan struct{}, 1)} }

// Lock blocks until the lock is held or ctx is done.
func (m *Mutex) Lock(ctx context.Context) error {
	select {
	case m.ch <- struct{}{}:
		return nil
	default:
	}
	select {
	case m.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryLock acquires the lock only if it is free.
func (m *Mutex) TryLock() bool {
	select {
	case m.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock releases the lock. Unlocking an unlocked Mutex panics.
func (m *Mutex) Unlock() {
	select {
	case <-m.ch:
	default:
		panic("locks: unlock of unlocked mutex")
	}
}

type shard struct {
	mu    sync.Mutex // meta-lock; never held while waiting on a key lock
	locks map[string]*Mutex
}

// Table maps keys to Mutexes. Entries are created on first Acquire and never
// removed, so a handle stays valid for the table's lifetime.
type Table struct {
	shards []shard
}

// NewTable creates a table with n meta-lock shards; n <= 0 picks a default.
func NewTable(n int) *Table {
	if n <= 0 {
		n = defaultShards
	}
	t := &Table{shards: make([]shard, n)}
	for i := range t.shards {
		t.shards[i].locks = make(map[string]*Mutex)
	}
	return t
}

func (t *Table) shardFor(key string) *shard {
	return &t.shards[xxhash.Sum64String(key)%uint64(len(t.shards))]
}

// Acquire returns the Mutex for key, creating it on first request. Two
// concurrent first requests for the same key get the same Mutex.
func (t *Table) Acquire(key string) *Mutex {
	s := t.shardFor(key)
	s.mu.Lock()
	m, ok := s.locks[key]
	if !ok {
		m = newMutex()
		s.locks[key] = m
	}
	s.mu.Unlock()
	return m
}

// Do runs fn while holding key's lock. The lock is released on every exit
// path, including a panic in fn, which is re-raised after release.
// If ctx ends before the lock is obtained, fn is not run and ctx.Err() is
// returned.
func (t *Table) Do(ctx context.Context, key string, fn func() error) error {
	m := t.Acquire(key)
	if err := m.Lock(ctx); err != nil {
		return err
	}
	defer m.Unlock()
	return fn()
}

// Len counts keys that ever had a lock.
func (t *Table) Len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		n += len(s.locks)
		s.mu.Unlock()
	}
	return n
}

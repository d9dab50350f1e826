package fncache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/fncache/keyspace"
	"github.com/unkn0wn-root/fncache/locks"
	"github.com/unkn0wn-root/fncache/store"
)

// Manager owns one store, its version registers and its lock table.
// It is safe for concurrent use.
type Manager[V any] struct {
	name   string
	cfg    Config
	remote bool

	store    store.Store[V]
	versions *keyspace.Versions
	keys     *keyspace.Composer
	locks    *locks.Table
	flight   singleflight.Group
	writer   *writer

	log      Logger
	hooks    Hooks
	registry *Registry

	disabled atomic.Bool

	closeOnce sync.Once
	closeErr  error
}

func (m *Manager[V]) Name() string   { return m.name }
func (m *Manager[V]) Config() Config { return m.cfg }

// Disable turns the manager into a pass-through: reads miss, writes and
// deletes report false without touching the store, and GetOrCompute runs
// fn every time. Stored entries and versions are kept.
func (m *Manager[V]) Disable() {
	if !m.disabled.Swap(true) {
		m.log.Info("cache disabled", Fields{"cache": m.name})
	}
}

// Enable undoes Disable. Entries written before Disable are visible again
// unless they expired or were invalidated meanwhile.
func (m *Manager[V]) Enable() {
	if m.disabled.Swap(false) {
		m.log.Info("cache enabled", Fields{"cache": m.name})
	}
}

func (m *Manager[V]) Enabled() bool { return !m.disabled.Load() }

// PhysicalKey renders the storage key for key under the current versions.
func (m *Manager[V]) PhysicalKey(key string, scope Scope) string {
	return m.keys.Key(key, scope)
}

// Lock returns the lock guarding key's current physical key. Callers that
// hold it across get-compute-set get the same collapsing GetOrCompute uses
// on memory storage.
func (m *Manager[V]) Lock(key string, scope Scope) *locks.Mutex {
	return m.locks.Acquire(m.keys.Key(key, scope))
}

// ----------------------------------------------------------------------------
// Get / Set / Delete
// ----------------------------------------------------------------------------

func (m *Manager[V]) Get(ctx context.Context, key string, scope Scope) (V, bool) {
	if m.disabled.Load() {
		var zero V
		return zero, false
	}
	return m.get(ctx, m.keys.Key(key, scope))
}

// Set stores value for ttl; ttl 0 uses Config.TTL. Returns false when the
// store rejected the write or failed.
func (m *Manager[V]) Set(ctx context.Context, key string, value V, ttl time.Duration, scope Scope) bool {
	if m.disabled.Load() {
		return false
	}
	return m.set(ctx, m.keys.Key(key, scope), value, ttl)
}

func (m *Manager[V]) Delete(ctx context.Context, key string, scope Scope) bool {
	if m.disabled.Load() {
		return false
	}
	pk := m.keys.Key(key, scope)
	start := time.Now()
	ok := m.store.Delete(ctx, pk)
	m.hooks.Delete(Event{Cache: m.name, Key: pk, Elapsed: time.Since(start)}, ok)
	return ok
}

func (m *Manager[V]) get(ctx context.Context, pk string) (V, bool) {
	start := time.Now()
	v, ok := m.store.Get(ctx, pk)
	ev := Event{Cache: m.name, Key: pk, Elapsed: time.Since(start)}
	if ok {
		m.hooks.Hit(ev)
	} else {
		m.hooks.Miss(ev)
	}
	return v, ok
}

func (m *Manager[V]) set(ctx context.Context, pk string, value V, ttl time.Duration) bool {
	ttl = coalesce(ttl, m.cfg.TTL)
	start := time.Now()
	ok := m.store.Set(ctx, pk, value, ttl)
	m.hooks.Set(Event{Cache: m.name, Key: pk, Elapsed: time.Since(start)}, ok)
	return ok
}

// ----------------------------------------------------------------------------
// Blocking path
// ----------------------------------------------------------------------------

// GetSync reads without a context. Remote storage fails with
// ErrSyncUnsupported, enabled or not.
func (m *Manager[V]) GetSync(key string, scope Scope) (V, bool, error) {
	if m.disabled.Load() && !m.remote {
		var zero V
		return zero, false, nil
	}
	pk := m.keys.Key(key, scope)
	start := time.Now()
	v, ok, err := m.store.GetSync(pk)
	if err != nil {
		var zero V
		return zero, false, fmt.Errorf("fncache %s: get: %w", m.name, err)
	}
	ev := Event{Cache: m.name, Key: pk, Elapsed: time.Since(start)}
	if ok {
		m.hooks.Hit(ev)
	} else {
		m.hooks.Miss(ev)
	}
	return v, ok, nil
}

func (m *Manager[V]) SetSync(key string, value V, ttl time.Duration, scope Scope) (bool, error) {
	if m.disabled.Load() && !m.remote {
		return false, nil
	}
	pk := m.keys.Key(key, scope)
	start := time.Now()
	ok, err := m.store.SetSync(pk, value, coalesce(ttl, m.cfg.TTL))
	if err != nil {
		return false, fmt.Errorf("fncache %s: set: %w", m.name, err)
	}
	m.hooks.Set(Event{Cache: m.name, Key: pk, Elapsed: time.Since(start)}, ok)
	return ok, nil
}

func (m *Manager[V]) DeleteSync(key string, scope Scope) (bool, error) {
	if m.disabled.Load() && !m.remote {
		return false, nil
	}
	pk := m.keys.Key(key, scope)
	start := time.Now()
	ok, err := m.store.DeleteSync(pk)
	if err != nil {
		return false, fmt.Errorf("fncache %s: delete: %w", m.name, err)
	}
	m.hooks.Delete(Event{Cache: m.name, Key: pk, Elapsed: time.Since(start)}, ok)
	return ok, nil
}

// ----------------------------------------------------------------------------
// Versions
// ----------------------------------------------------------------------------

func (m *Manager[V]) GlobalVersion() uint64             { return m.versions.Global() }
func (m *Manager[V]) UserVersion(subject string) uint64 { return m.versions.Subject(subject) }

// IncrementGlobalVersion makes every global-scope key unreachable, and every
// subject-scope key too when Config.SubjectFollowsGlobal is set.
func (m *Manager[V]) IncrementGlobalVersion() uint64 {
	v := m.versions.BumpGlobal()
	m.log.Debug("global version bumped", Fields{"cache": m.name, "version": v})
	return v
}

// IncrementUserVersion makes every key scoped to subject unreachable.
func (m *Manager[V]) IncrementUserVersion(subject string) uint64 {
	v := m.versions.BumpSubject(subject)
	m.log.Debug("subject version bumped", Fields{"cache": m.name, "subject": subject, "version": v})
	return v
}

// InvalidateAll is IncrementGlobalVersion. Old entries are never deleted;
// they age out through the store's own eviction.
func (m *Manager[V]) InvalidateAll() { m.IncrementGlobalVersion() }

// InvalidateUserCache is IncrementUserVersion.
func (m *Manager[V]) InvalidateUserCache(subject string) { m.IncrementUserVersion(subject) }

// ----------------------------------------------------------------------------
// Compute
// ----------------------------------------------------------------------------

// GetOrCompute returns the cached value for key or computes, stores and
// returns it. Concurrent callers missing on the same key run fn once.
//
// Memory storage serializes callers on the key's lock; a cancelled ctx
// abandons the wait with ctx.Err(). Remote storage collapses in-process
// callers through a singleflight group and each caller may stop waiting on
// its own ctx.
//
// An error from fn is returned as-is and nothing is written. A panic in fn
// is re-raised in every caller waiting on it.
func (m *Manager[V]) GetOrCompute(ctx context.Context, key string, scope Scope, ttl time.Duration, fn func(context.Context) (V, error)) (V, error) {
	return m.GetOrComputeTTL(ctx, key, scope, func(ctx context.Context) (V, time.Duration, error) {
		v, err := fn(ctx)
		return v, ttl, err
	})
}

// GetOrComputeTTL is GetOrCompute with the ttl chosen by fn from the value it
// computed; 0 uses Config.TTL.
func (m *Manager[V]) GetOrComputeTTL(ctx context.Context, key string, scope Scope, fn func(context.Context) (V, time.Duration, error)) (V, error) {
	if m.disabled.Load() {
		v, _, err := fn(ctx)
		return v, err
	}
	pk := m.keys.Key(key, scope)
	if m.remote {
		return m.computeShared(ctx, pk, fn)
	}
	return m.computeLocked(ctx, pk, fn)
}

func (m *Manager[V]) computeLocked(ctx context.Context, pk string, fn func(context.Context) (V, time.Duration, error)) (V, error) {
	var out V
	err := m.locks.Do(ctx, pk, func() error {
		if v, ok := m.get(ctx, pk); ok {
			out = v
			return nil
		}
		v, ttl, err := fn(ctx)
		if err != nil {
			m.log.Debug("compute failed", Fields{"cache": m.name, "key": pk, "err": err})
			return err
		}
		m.set(ctx, pk, v, ttl)
		out = v
		return nil
	})
	return out, err
}

func (m *Manager[V]) computeShared(ctx context.Context, pk string, fn func(context.Context) (V, time.Duration, error)) (V, error) {
	var zero V
	if v, ok := m.get(ctx, pk); ok {
		return v, nil
	}

	// The shared computation must outlive the caller that started it.
	sctx := context.WithoutCancel(ctx)
	ch := m.flight.DoChan(pk, func() (res any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &sharedPanic{value: r}
			}
		}()
		if v, ok := m.store.Get(sctx, pk); ok {
			return v, nil
		}
		v, ttl, err := fn(sctx)
		if err != nil {
			m.log.Debug("compute failed", Fields{"cache": m.name, "key": pk, "err": err})
			return nil, err
		}
		m.set(sctx, pk, v, ttl)
		return v, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			if p, ok := r.Err.(*sharedPanic); ok {
				panic(p.value)
			}
			return zero, r.Err
		}
		v, _ := r.Val.(V)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// ----------------------------------------------------------------------------
// Async write
// ----------------------------------------------------------------------------

// SetAsync hands the write to the manager's worker pool and returns at once.
// The physical key is fixed now, against the versions current at the call.
// The returned handle may be awaited or ignored.
func (m *Manager[V]) SetAsync(ctx context.Context, key string, value V, ttl time.Duration, scope Scope) *WriteHandle {
	if m.disabled.Load() {
		h := newWriteHandle()
		h.resolve(false, nil)
		return h
	}
	pk := m.keys.Key(key, scope)
	return m.writer.submit(ctx, pk, func(ctx context.Context) bool {
		return m.set(ctx, pk, value, ttl)
	})
}

// Close drains pending async writes, leaves the registry and closes the
// store. Safe to call more than once.
func (m *Manager[V]) Close(ctx context.Context) error {
	m.closeOnce.Do(func() {
		m.writer.close()
		if m.registry != nil {
			m.registry.Unregister(m.name)
		}
		m.closeErr = m.store.Close(ctx)
		m.log.Debug("cache closed", Fields{"cache": m.name})
	})
	return m.closeErr
}

// sharedPanic carries a panic from a singleflight computation to every
// waiter. Unexported so an error returned by fn is never mistaken for it.
type sharedPanic struct{ value any }

func (p *sharedPanic) Error() string { return fmt.Sprintf("fncache: computation panicked: %v", p.value) }

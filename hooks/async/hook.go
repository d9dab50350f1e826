// Package asynchook moves hook delivery off the request path.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{MissEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	users, _ := fncache.New[User](fncache.Options[User]{
//	    Config: fncache.DefaultConfig(),
//	    Hooks:  hooks, // or raw to deliver inline
//	})
//
// Events are dropped when the queue is full; Dropped reports how many.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/fncache"
)

type Hooks struct {
	inner   fncache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ fncache.Hooks = (*Hooks)(nil)

func New(inner fncache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close delivers queued events and stops the workers. Events after Close are
// dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(e fncache.Event)  { h.try(func() { h.inner.Hit(e) }) }
func (h *Hooks) Miss(e fncache.Event) { h.try(func() { h.inner.Miss(e) }) }
func (h *Hooks) Set(e fncache.Event, ok bool) {
	h.try(func() { h.inner.Set(e, ok) })
}
func (h *Hooks) Delete(e fncache.Event, ok bool) {
	h.try(func() { h.inner.Delete(e, ok) })
}
func (h *Hooks) Error(e fncache.Event, op string, err error) {
	h.try(func() { h.inner.Error(e, op, err) })
}

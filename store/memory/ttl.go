package memory

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/fncache/store"
)

type ttlEntry[V any] struct {
	value    V
	expireAt time.Time // absolute: set time + ttl
}

// TTLOptions tune a TTL store. The zero value is usable.
type TTLOptions struct {
	// SweepInterval > 0 starts a background loop removing expired entries.
	// Reads expire lazily either way.
	SweepInterval time.Duration
	// Now overrides the clock (tests).
	Now func() time.Time
	// OnError receives rejected writes.
	OnError store.ErrorFunc
}

// TTL is a time-to-live store. Entries never slide: a read does not extend
// the expiry.
type TTL[V any] struct {
	mu      sync.Mutex
	items   map[string]ttlEntry[V]
	now     func() time.Time
	onError store.ErrorFunc

	ticker    *time.Ticker
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ store.Store[int] = (*TTL[int])(nil)

func NewTTL[V any](opts TTLOptions) *TTL[V] {
	s := &TTL[V]{
		items:   make(map[string]ttlEntry[V]),
		now:     opts.Now,
		onError: opts.OnError,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.onError == nil {
		s.onError = store.NopErrorFunc
	}
	if opts.SweepInterval > 0 {
		s.ticker = time.NewTicker(opts.SweepInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go s.sweepLoop()
	}
	return s
}

func (s *TTL[V]) Get(_ context.Context, key string) (V, bool) {
	v, ok, _ := s.GetSync(key)
	return v, ok
}

func (s *TTL[V]) Set(_ context.Context, key string, value V, ttl time.Duration) bool {
	ok, _ := s.SetSync(key, value, ttl)
	return ok
}

func (s *TTL[V]) Delete(_ context.Context, key string) bool {
	ok, _ := s.DeleteSync(key)
	return ok
}

func (s *TTL[V]) GetSync(key string) (V, bool, error) {
	var zero V
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	if !ok {
		return zero, false, nil
	}
	if now.After(e.expireAt) {
		delete(s.items, key)
		return zero, false, nil
	}
	return e.value, true, nil
}

// SetSync rejects ttl <= 0 and keeps whatever was stored under key before.
func (s *TTL[V]) SetSync(key string, value V, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		s.onError(store.OpSet, key, store.ErrInvalidTTL)
		return false, nil
	}
	e := ttlEntry[V]{value: value, expireAt: s.now().Add(ttl)}

	s.mu.Lock()
	s.items[key] = e
	s.mu.Unlock()
	return true, nil
}

func (s *TTL[V]) DeleteSync(key string) (bool, error) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return true, nil
}

// Len counts stored entries, including expired ones not yet collected.
func (s *TTL[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep removes every expired entry and returns how many were dropped.
func (s *TTL[V]) Sweep() int {
	now := s.now()
	removed := 0

	s.mu.Lock()
	for k, e := range s.items {
		if now.After(e.expireAt) {
			delete(s.items, k)
			removed++
		}
	}
	s.mu.Unlock()
	return removed
}

func (s *TTL[V]) sweepLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ticker.C:
			s.Sweep()
		case <-s.stopCh:
			return
		}
	}
}

// Close stops the sweep loop. Stored entries stay readable.
func (s *TTL[V]) Close(context.Context) error {
	s.closeOnce.Do(func() {
		if s.stopCh != nil {
			s.ticker.Stop()
			close(s.stopCh)
			s.wg.Wait()
		}
	})
	return nil
}

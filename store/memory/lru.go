package memory

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/unkn0wn-root/fncache/store"
)

var ErrInvalidMaxSize = errors.New("memory: max size must be positive")

type lruEntry[V any] struct {
	key   string
	value V
}

// LRUOptions tune an LRU store. The zero value is usable.
type LRUOptions[V any] struct {
	// OnEvict is called with the store lock held for every capacity eviction.
	// It must not call back into the store.
	OnEvict func(key string, value V)
}

// LRU is a bounded store evicting the least recently used entry. Both Get
// and Set count as use. The front of order is the most recently used entry.
type LRU[V any] struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List
	onEvict func(string, V)
}

var _ store.Store[int] = (*LRU[int])(nil)

func NewLRU[V any](maxSize int, opts LRUOptions[V]) (*LRU[V], error) {
	if maxSize <= 0 {
		return nil, ErrInvalidMaxSize
	}
	return &LRU[V]{
		maxSize: maxSize,
		items:   make(map[string]*list.Element, maxSize),
		order:   list.New(),
		onEvict: opts.OnEvict,
	}, nil
}

func (s *LRU[V]) Get(_ context.Context, key string) (V, bool) {
	v, ok, _ := s.GetSync(key)
	return v, ok
}

// Set ignores ttl; entries leave only by eviction or Delete.
func (s *LRU[V]) Set(_ context.Context, key string, value V, ttl time.Duration) bool {
	ok, _ := s.SetSync(key, value, ttl)
	return ok
}

func (s *LRU[V]) Delete(_ context.Context, key string) bool {
	ok, _ := s.DeleteSync(key)
	return ok
}

func (s *LRU[V]) GetSync(key string) (V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.items[key]
	if !ok {
		var zero V
		return zero, false, nil
	}
	s.order.MoveToFront(el)
	return el.Value.(*lruEntry[V]).value, true, nil
}

func (s *LRU[V]) SetSync(key string, value V, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// update in place: an existing key never triggers eviction
	if el, ok := s.items[key]; ok {
		el.Value.(*lruEntry[V]).value = value
		s.order.MoveToFront(el)
		return true, nil
	}
	if s.order.Len() >= s.maxSize {
		s.evictOldest()
	}
	s.items[key] = s.order.PushFront(&lruEntry[V]{key: key, value: value})
	return true, nil
}

func (s *LRU[V]) DeleteSync(key string) (bool, error) {
	s.mu.Lock()
	if el, ok := s.items[key]; ok {
		s.order.Remove(el)
		delete(s.items, key)
	}
	s.mu.Unlock()
	return true, nil
}

// caller holds s.mu
func (s *LRU[V]) evictOldest() {
	el := s.order.Back()
	if el == nil {
		return
	}
	e := s.order.Remove(el).(*lruEntry[V])
	delete(s.items, e.key)
	if s.onEvict != nil {
		s.onEvict(e.key, e.value)
	}
}

func (s *LRU[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Keys lists keys from most to least recently used.
func (s *LRU[V]) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*lruEntry[V]).key)
	}
	return out
}

func (s *LRU[V]) Close(context.Context) error { return nil }

package memory

import (
	"context"
	"fmt"
	"math/rand"
	"reflect"
	"sync"
	"testing"
	"time"
)

func mustLRU[V any](t *testing.T, n int, opts LRUOptions[V]) *LRU[V] {
	t.Helper()
	s, err := NewLRU[V](n, opts)
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}
	return s
}

func TestLRURejectsNonPositiveSize(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := NewLRU[int](n, LRUOptions[int]{}); err != ErrInvalidMaxSize {
			t.Fatalf("size %d: err=%v", n, err)
		}
	}
}

// Scenario: maxSize 2; set a,b,c => a evicted, b and c present.
func TestLRUEvictsOldestOnOverflow(t *testing.T) {
	ctx := context.Background()
	s := mustLRU[int](t, 2, LRUOptions[int]{})

	s.Set(ctx, "a", 1, 0)
	s.Set(ctx, "b", 2, 0)
	s.Set(ctx, "c", 3, 0)

	if _, ok := s.Get(ctx, "a"); ok {
		t.Fatal("a should be evicted")
	}
	if v, ok := s.Get(ctx, "b"); !ok || v != 2 {
		t.Fatalf("b: ok=%v v=%d", ok, v)
	}
	if v, ok := s.Get(ctx, "c"); !ok || v != 3 {
		t.Fatalf("c: ok=%v v=%d", ok, v)
	}
}

func TestLRUGetRefreshesRecency(t *testing.T) {
	ctx := context.Background()
	s := mustLRU[string](t, 2, LRUOptions[string]{})

	s.Set(ctx, "A", "a", 0)
	s.Set(ctx, "B", "b", 0)
	s.Get(ctx, "A")
	s.Set(ctx, "C", "c", 0)

	if _, ok := s.Get(ctx, "B"); ok {
		t.Fatal("B should be evicted")
	}
	for _, k := range []string{"A", "C"} {
		if _, ok := s.Get(ctx, k); !ok {
			t.Fatalf("%s should survive", k)
		}
	}
}

func TestLRUUpdateAtCapacityDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	var evicted []string
	s := mustLRU[int](t, 2, LRUOptions[int]{OnEvict: func(k string, _ int) { evicted = append(evicted, k) }})

	s.Set(ctx, "a", 1, 0)
	s.Set(ctx, "b", 2, 0)
	s.Set(ctx, "a", 10, 0) // update, must not evict b

	if len(evicted) != 0 {
		t.Fatalf("update evicted %v", evicted)
	}
	if v, ok := s.Get(ctx, "a"); !ok || v != 10 {
		t.Fatalf("a: ok=%v v=%d", ok, v)
	}
	if _, ok := s.Get(ctx, "b"); !ok {
		t.Fatal("b should survive an update of a")
	}

	// the update also counted as use: order is now b (just read), a
	s.Set(ctx, "c", 3, 0)
	if !reflect.DeepEqual(evicted, []string{"a"}) {
		t.Fatalf("evicted=%v want [a]", evicted)
	}
}

func TestLRUKeysOrder(t *testing.T) {
	ctx := context.Background()
	s := mustLRU[int](t, 3, LRUOptions[int]{})
	s.Set(ctx, "x", 1, 0)
	s.Set(ctx, "y", 2, 0)
	s.Set(ctx, "z", 3, 0)
	s.Get(ctx, "x")
	if got, want := s.Keys(), []string{"x", "z", "y"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys=%v want %v", got, want)
	}
}

func TestLRUIgnoresTTL(t *testing.T) {
	ctx := context.Background()
	s := mustLRU[int](t, 1, LRUOptions[int]{})
	if !s.Set(ctx, "k", 1, -time.Second) {
		t.Fatal("LRU must accept any ttl")
	}
	if _, ok := s.Get(ctx, "k"); !ok {
		t.Fatal("LRU entries never expire")
	}
}

func TestLRUDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s := mustLRU[int](t, 2, LRUOptions[int]{})
	s.Set(ctx, "k", 1, 0)
	if !s.Delete(ctx, "k") || !s.Delete(ctx, "k") || !s.Delete(ctx, "never") {
		t.Fatal("delete must always succeed")
	}
	if s.Len() != 0 {
		t.Fatalf("Len=%d", s.Len())
	}
}

// Randomized check against a simple reference model.
func TestLRUMatchesReferenceModel(t *testing.T) {
	ctx := context.Background()
	const capacity = 4
	s := mustLRU[int](t, capacity, LRUOptions[int]{})
	model := []string{} // most recent first
	touch := func(k string) {
		for i, m := range model {
			if m == k {
				model = append(model[:i], model[i+1:]...)
				break
			}
		}
		model = append([]string{k}, model...)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		k := fmt.Sprintf("k%d", rng.Intn(8))
		if rng.Intn(2) == 0 {
			s.Set(ctx, k, i, 0)
			touch(k)
			if len(model) > capacity {
				model = model[:capacity]
			}
		} else {
			_, ok := s.Get(ctx, k)
			inModel := false
			for _, m := range model {
				if m == k {
					inModel = true
				}
			}
			if ok != inModel {
				t.Fatalf("step %d: Get(%s) ok=%v model=%v", i, k, ok, model)
			}
			if ok {
				touch(k)
			}
		}
		if s.Len() > capacity {
			t.Fatalf("step %d: Len=%d exceeds capacity", i, s.Len())
		}
		if got := s.Keys(); !reflect.DeepEqual(got, model) {
			t.Fatalf("step %d: order=%v model=%v", i, got, model)
		}
	}
}

func TestLRUConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := mustLRU[int](t, 16, LRUOptions[int]{})
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := fmt.Sprintf("k%d", (g*7+i)%40)
				s.Set(ctx, k, i, 0)
				s.Get(ctx, k)
			}
		}(g)
	}
	wg.Wait()
	if s.Len() > 16 {
		t.Fatalf("Len=%d exceeds capacity", s.Len())
	}
}

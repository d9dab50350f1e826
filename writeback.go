package fncache

import (
	"context"
	"fmt"
	"sync"
)

// WriteHandle tracks one SetAsync write.
type WriteHandle struct {
	done chan struct{}
	ok   bool
	err  error
}

func newWriteHandle() *WriteHandle { return &WriteHandle{done: make(chan struct{})} }

func (h *WriteHandle) resolve(ok bool, err error) {
	h.ok, h.err = ok, err
	close(h.done)
}

// Done is closed once the write finished, failed or was refused.
func (h *WriteHandle) Done() <-chan struct{} { return h.done }

// Wait blocks until the write completes or ctx ends. ok is the store's
// answer. err is ErrClosed, a submit-time context error or a *PanicError;
// store faults are not errors here, they show up as ok=false.
func (h *WriteHandle) Wait(ctx context.Context) (ok bool, err error) {
	select {
	case <-h.done:
		return h.ok, h.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

type writeJob struct {
	ctx context.Context
	key string
	fn  func(context.Context) bool
	h   *WriteHandle
}

// writer is a bounded pool of workers running store writes off the caller's
// goroutine. A full queue blocks submit until there is room or the caller's
// context ends.
type writer struct {
	q   chan writeJob
	wg  sync.WaitGroup
	log Logger

	mu     sync.RWMutex
	closed bool
}

func newWriter(workers, qlen int, log Logger) *writer {
	w := &writer{q: make(chan writeJob, qlen), log: log}
	w.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer w.wg.Done()
			for j := range w.q {
				w.run(j)
			}
		}()
	}
	return w
}

func (w *writer) run(j writeJob) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("async write panicked", Fields{"key": j.key, "panic": fmt.Sprint(r)})
			j.h.resolve(false, &PanicError{Value: r})
		}
	}()
	ok := j.fn(j.ctx)
	j.h.resolve(ok, nil)
}

func (w *writer) submit(ctx context.Context, key string, fn func(context.Context) bool) *WriteHandle {
	h := newWriteHandle()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		h.resolve(false, ErrClosed)
		return h
	}
	// The write outlives the request that issued it.
	j := writeJob{ctx: context.WithoutCancel(ctx), key: key, fn: fn, h: h}
	select {
	case w.q <- j:
	case <-ctx.Done():
		h.resolve(false, ctx.Err())
	}
	return h
}

// close refuses new writes and waits for queued ones.
func (w *writer) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.q)
	w.mu.Unlock()
	w.wg.Wait()
}

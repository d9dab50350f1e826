// Package memo wraps a function so its results are served from a fncache
// Manager.
//
//	getUser := memo.Wrap(users, "user", loadUser,
//	    memo.WithKey[string, User](func(id string) string { return id }),
//	    memo.WithSubject[string, User](func(id string) string { return id }),
//	)
//	u, err := getUser.Call(ctx, "42")
//
// Errors returned by the wrapped function are never cached. Zero values are
// cached like any other result.
package memo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/unkn0wn-root/fncache"
)

// Cache is the part of *fncache.Manager a Func uses.
type Cache[V any] interface {
	Get(ctx context.Context, key string, scope fncache.Scope) (V, bool)
	Set(ctx context.Context, key string, value V, ttl time.Duration, scope fncache.Scope) bool
	Delete(ctx context.Context, key string, scope fncache.Scope) bool
	GetOrComputeTTL(ctx context.Context, key string, scope fncache.Scope, fn func(context.Context) (V, time.Duration, error)) (V, error)
	SetAsync(ctx context.Context, key string, value V, ttl time.Duration, scope fncache.Scope) *fncache.WriteHandle
}

var _ Cache[int] = (*fncache.Manager[int])(nil)

// Func is a memoized function of one argument. Use a struct for several.
type Func[A, V any] struct {
	c    Cache[V]
	name string
	fn   func(context.Context, A) (V, error)

	key     func(A) (string, error)
	subject func(A) string
	ttl     func(V) time.Duration
	async   bool
	mode    fncache.AccessMode
}

type Option[A, V any] func(*Func[A, V])

// WithKey derives the logical key as name + ":" + key(arg).
func WithKey[A, V any](key func(A) string) Option[A, V] {
	return func(f *Func[A, V]) {
		f.key = func(a A) (string, error) { return f.name + ":" + key(a), nil }
	}
}

// WithTemplate renders the logical key from tpl. A parameter missing from
// params(arg) fails the call with *fncache.MissingParamError.
func WithTemplate[A, V any](tpl fncache.KeyTemplate, params func(A) map[string]any) Option[A, V] {
	return func(f *Func[A, V]) {
		f.key = func(a A) (string, error) { return tpl.Render(params(a)) }
	}
}

// WithSubject scopes every result to the subject returned for the argument,
// so InvalidateUserCache(subject) drops it.
func WithSubject[A, V any](subject func(A) string) Option[A, V] {
	return func(f *Func[A, V]) { f.subject = subject }
}

// WithTTL picks the ttl per result; 0 falls back to the manager's Config.TTL.
func WithTTL[A, V any](ttl func(V) time.Duration) Option[A, V] {
	return func(f *Func[A, V]) { f.ttl = ttl }
}

// WithAsyncWrite stores results on the manager's write pool instead of the
// caller's goroutine. Concurrent misses are not collapsed in this mode.
func WithAsyncWrite[A, V any]() Option[A, V] {
	return func(f *Func[A, V]) { f.async = true }
}

// WithMode sets the access mode used by Call.
func WithMode[A, V any](mode fncache.AccessMode) Option[A, V] {
	return func(f *Func[A, V]) { f.mode = mode }
}

// Wrap memoizes fn in c under name. Without WithKey or WithTemplate the key
// is name + ":" + hex(xxhash(fmt %#v of arg)). That form covers unexported
// fields but prints pointers as addresses, so pointer arguments only share a
// key when they are the same pointer; use WithKey for those.
func Wrap[A, V any](c Cache[V], name string, fn func(context.Context, A) (V, error), opts ...Option[A, V]) *Func[A, V] {
	f := &Func[A, V]{c: c, name: name, fn: fn, mode: fncache.ReadWrite}
	f.key = f.hashKey
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *Func[A, V]) hashKey(a A) (string, error) {
	b := fmt.Appendf(nil, "%#v", a)
	return f.name + ":" + strconv.FormatUint(xxhash.Sum64(b), 16), nil
}

func (f *Func[A, V]) Name() string { return f.name }

// Key returns the logical key for arg.
func (f *Func[A, V]) Key(arg A) (string, error) { return f.key(arg) }

func (f *Func[A, V]) scope(arg A) fncache.Scope {
	if f.subject == nil {
		return fncache.Global()
	}
	return fncache.Subject(f.subject(arg))
}

func (f *Func[A, V]) ttlFor(v V) time.Duration {
	if f.ttl == nil {
		return 0
	}
	return f.ttl(v)
}

// Call runs the function through the cache in the mode set with WithMode.
func (f *Func[A, V]) Call(ctx context.Context, arg A) (V, error) {
	return f.CallMode(ctx, f.mode, arg)
}

// CallMode runs the function through the cache in mode.
func (f *Func[A, V]) CallMode(ctx context.Context, mode fncache.AccessMode, arg A) (V, error) {
	if mode == fncache.Bypass {
		return f.fn(ctx, arg)
	}

	var zero V
	key, err := f.key(arg)
	if err != nil {
		return zero, err
	}
	scope := f.scope(arg)

	switch mode {
	case fncache.ReadOnly:
		if v, ok := f.c.Get(ctx, key, scope); ok {
			return v, nil
		}
		return f.fn(ctx, arg)
	case fncache.WriteOnly:
		v, err := f.fn(ctx, arg)
		if err != nil {
			return zero, err
		}
		f.store(ctx, key, v, scope)
		return v, nil
	}

	if f.async {
		if v, ok := f.c.Get(ctx, key, scope); ok {
			return v, nil
		}
		v, err := f.fn(ctx, arg)
		if err != nil {
			return zero, err
		}
		f.store(ctx, key, v, scope)
		return v, nil
	}
	return f.c.GetOrComputeTTL(ctx, key, scope, func(ctx context.Context) (V, time.Duration, error) {
		v, err := f.fn(ctx, arg)
		if err != nil {
			return v, 0, err
		}
		return v, f.ttlFor(v), nil
	})
}

func (f *Func[A, V]) store(ctx context.Context, key string, v V, scope fncache.Scope) {
	if f.async {
		f.c.SetAsync(ctx, key, v, f.ttlFor(v), scope)
		return
	}
	f.c.Set(ctx, key, v, f.ttlFor(v), scope)
}

// Forget deletes the cached result for arg under the current versions.
func (f *Func[A, V]) Forget(ctx context.Context, arg A) (bool, error) {
	key, err := f.key(arg)
	if err != nil {
		return false, err
	}
	return f.c.Delete(ctx, key, f.scope(arg)), nil
}

// Preload computes and stores the result for every arg, ignoring what is
// already cached. Failures are joined; the remaining args still run.
func (f *Func[A, V]) Preload(ctx context.Context, args ...A) error {
	var errs []error
	for _, a := range args {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := f.CallMode(ctx, fncache.WriteOnly, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package remote implements a Store over a networked byte provider.
//
// Values are encoded with a Codec before they leave the process and decoded
// after they come back. Expiry is left to the provider. The store is
// context-only: its blocking-path methods fail with store.ErrSyncUnsupported.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/unkn0wn-root/fncache/codec"
	pr "github.com/unkn0wn-root/fncache/provider"
	"github.com/unkn0wn-root/fncache/store"
)

const defaultTimeout = time.Second

// Options configure a Remote store. Provider and Codec are required.
type Options[V any] struct {
	Provider pr.Provider
	Codec    codec.Codec[V]
	// Timeout bounds every provider call; 0 => 1s.
	Timeout time.Duration
	// OnError receives provider, encode and decode faults.
	OnError store.ErrorFunc
}

type Remote[V any] struct {
	p       pr.Provider
	codec   codec.Codec[V]
	timeout time.Duration
	onError store.ErrorFunc
}

var _ store.Store[string] = (*Remote[string])(nil)

func New[V any](opts Options[V]) (*Remote[V], error) {
	if opts.Provider == nil {
		return nil, errors.New("remote: provider is required")
	}
	if opts.Codec == nil {
		return nil, errors.New("remote: codec is required")
	}
	r := &Remote[V]{
		p:       opts.Provider,
		codec:   opts.Codec,
		timeout: opts.Timeout,
		onError: opts.OnError,
	}
	if r.timeout <= 0 {
		r.timeout = defaultTimeout
	}
	if r.onError == nil {
		r.onError = store.NopErrorFunc
	}
	return r, nil
}

// Get returns absent on miss, provider fault, timeout or undecodable bytes.
// Undecodable entries are deleted so the next Set can repopulate them.
func (r *Remote[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, ok, err := r.p.Get(ctx, key)
	if err != nil {
		r.onError(store.OpGet, key, err)
		return zero, false
	}
	if !ok {
		return zero, false
	}
	v, err := r.codec.Decode(raw)
	if err != nil {
		r.onError(store.OpGet, key, &DecodeError{Key: key, Err: err})
		_ = r.p.Del(ctx, key) // self-heal
		return zero, false
	}
	return v, true
}

// Set returns false on encode failure (nothing is written, any existing entry
// stays), non-positive ttl, provider fault or provider rejection.
func (r *Remote[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) bool {
	if ttl <= 0 {
		r.onError(store.OpSet, key, store.ErrInvalidTTL)
		return false
	}
	payload, err := r.codec.Encode(value)
	if err != nil {
		r.onError(store.OpSet, key, &EncodeError{Key: key, Err: err})
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	ok, err := r.p.Set(ctx, key, payload, ttl)
	if err != nil {
		r.onError(store.OpSet, key, err)
		return false
	}
	return ok
}

func (r *Remote[V]) Delete(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.p.Del(ctx, key); err != nil {
		r.onError(store.OpDelete, key, err)
		return false
	}
	return true
}

func (r *Remote[V]) GetSync(string) (V, bool, error) {
	var zero V
	return zero, false, store.ErrSyncUnsupported
}

func (r *Remote[V]) SetSync(string, V, time.Duration) (bool, error) {
	return false, store.ErrSyncUnsupported
}

func (r *Remote[V]) DeleteSync(string) (bool, error) {
	return false, store.ErrSyncUnsupported
}

func (r *Remote[V]) Close(ctx context.Context) error {
	return r.p.Close(ctx)
}

// Package store defines the storage contract shared by the in-process
// eviction stores (store/memory) and the remote store (store/remote).
//
// Stores are best-effort: Get reports absent and Set/Delete report false on
// any internal fault. Faults are handed to an ErrorFunc so the owner can log
// or count them; they are never returned from the context-aware methods.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSyncUnsupported is returned by the blocking-path methods of a store
	// that can only be reached through its context-aware methods.
	ErrSyncUnsupported = errors.New("store: synchronous operation not supported")

	// ErrInvalidTTL is reported when Set is called with ttl <= 0 on a store
	// that enforces expiry.
	ErrInvalidTTL = errors.New("store: ttl must be positive")
)

// Op names a store operation in error reports.
type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpDelete Op = "delete"
)

// ErrorFunc receives faults swallowed at the store boundary.
// It is called on the request path and must not block.
type ErrorFunc func(op Op, key string, err error)

// Store is a keyed container for values of type V.
//
// The context-aware methods are the asynchronous path and are supported by
// every store. The *Sync methods are the blocking path; a store that cannot
// serve it returns ErrSyncUnsupported immediately instead of blocking.
type Store[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	// Set stores value. ttl is ignored by stores without expiry.
	Set(ctx context.Context, key string, value V, ttl time.Duration) bool
	// Delete removes key. Deleting an absent key succeeds.
	Delete(ctx context.Context, key string) bool

	GetSync(key string) (V, bool, error)
	SetSync(key string, value V, ttl time.Duration) (bool, error)
	DeleteSync(key string) (bool, error)

	Close(ctx context.Context) error
}

// NopErrorFunc discards faults.
func NopErrorFunc(Op, string, error) {}

package fncache

import "time"

const (
	defaultTTL          = 10 * time.Minute
	defaultMaxSize      = 1000
	defaultPrefix       = "cache:"
	defaultOpTimeout    = time.Second
	defaultWriteWorkers = 4
	defaultWriteQueue   = 256
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

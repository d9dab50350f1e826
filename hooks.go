package fncache

import "time"

// Event describes one cache operation.
type Event struct {
	Cache   string        // Manager name
	Key     string        // physical key
	Elapsed time.Duration // time spent in the store
}

// Hooks receive cache events, e.g. to feed a statistics collector.
// Implementations MUST be cheap and non-blocking: they run on the request
// path. Wrap slow sinks with hooks/async.
type Hooks interface {
	Hit(e Event)
	Miss(e Event)
	Set(e Event, ok bool)
	Delete(e Event, ok bool)
	// Error reports a fault swallowed at the store boundary.
	// op ∈ {"get", "set", "delete"}.
	Error(e Event, op string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(Event)                  {}
func (NopHooks) Miss(Event)                 {}
func (NopHooks) Set(Event, bool)            {}
func (NopHooks) Delete(Event, bool)         {}
func (NopHooks) Error(Event, string, error) {}

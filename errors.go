package fncache

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/fncache/store"
)

var (
	// ErrSyncUnsupported is returned by the *Sync methods of a Manager backed
	// by a remote store.
	ErrSyncUnsupported = store.ErrSyncUnsupported

	// ErrClosed resolves writes submitted after Close.
	ErrClosed = errors.New("fncache: manager closed")

	// ErrDuplicateName is returned when a Registry already holds the name.
	ErrDuplicateName = errors.New("fncache: duplicate cache name")
)

// ConfigError reports an invalid configuration at construction time.
type ConfigError struct {
	Field  string
	Reason string
	Err    error // optional underlying cause
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fncache: invalid config %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("fncache: invalid config %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// MissingParamError is returned by KeyTemplate.Render when a placeholder has
// no value.
type MissingParamError struct {
	Template string
	Param    string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("fncache: key template %q: missing parameter %q", e.Template, e.Param)
}

// PanicError is the WriteHandle error of a SetAsync write that panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("fncache: computation panicked: %v", e.Value) }

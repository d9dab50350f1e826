package fncache

import "fmt"

// AccessMode decides whether a call site reads the cache, writes it, both,
// or neither.
type AccessMode uint8

const (
	ReadWrite AccessMode = iota // read; on miss compute and store
	ReadOnly                    // read; on miss compute, store nothing
	WriteOnly                   // always compute and store, never read
	Bypass                      // always compute, never touch the cache
)

func (a AccessMode) CanRead() bool  { return a == ReadWrite || a == ReadOnly }
func (a AccessMode) CanWrite() bool { return a == ReadWrite || a == WriteOnly }

func (a AccessMode) String() string {
	switch a {
	case ReadWrite:
		return "read-write"
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	case Bypass:
		return "bypass"
	default:
		return fmt.Sprintf("AccessMode(%d)", uint8(a))
	}
}

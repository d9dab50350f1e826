package remote

import "fmt"

// EncodeError wraps a codec failure on Set.
type EncodeError struct {
	Key string
	Err error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("remote: encode %q: %v", e.Key, e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError wraps a codec failure on Get, typically a codec change between
// deploys or a foreign writer in the keyspace.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("remote: decode %q: %v", e.Key, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// Package codec converts cached values to and from bytes.
//
// The in-process stores keep values as-is and never touch a codec. Remote
// stores encode on Set and decode on Get, so every codec here must round-trip:
// Decode(Encode(v)) must be deep-equal to v for the types it supports.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

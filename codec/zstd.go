package codec

import (
	"github.com/klauspost/compress/zstd"
)

// Zstd compresses the output of Inner with zstd. Worth it for large
// structured values stored remotely; small values usually grow.
// Construct with NewZstd; the encoder and decoder are safe for concurrent use.
type Zstd[V any] struct {
	Inner Codec[V]
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

func NewZstd[V any](inner Codec[V], level zstd.EncoderLevel) (*Zstd[V], error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, err
	}
	return &Zstd[V]{Inner: inner, enc: enc, dec: dec}, nil
}

var _ Codec[string] = (*Zstd[string])(nil)

func (c *Zstd[V]) Encode(v V) ([]byte, error) {
	raw, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func (c *Zstd[V]) Decode(b []byte) (V, error) {
	raw, err := c.dec.DecodeAll(b, nil)
	if err != nil {
		var zero V
		return zero, err
	}
	return c.Inner.Decode(raw)
}

// Close releases the decoder's background goroutines.
func (c *Zstd[V]) Close() {
	c.dec.Close()
	_ = c.enc.Close()
}

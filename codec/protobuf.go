package codec

import "google.golang.org/protobuf/proto"

// Protobuf encodes generated protobuf messages. It cannot be selected through
// configuration because it needs a constructor for the concrete message;
// pass it in Options.Codec.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *userpb.User { return &userpb.User{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}

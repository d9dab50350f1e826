package codec

import "encoding/json"

// JSON is the text-structured codec. The zero value is ready to use.
// Numbers decoded into interface{} become float64; use concrete types when
// exact round-trips matter.
type JSON[V any] struct{}

var _ Codec[struct{}] = JSON[struct{}]{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}

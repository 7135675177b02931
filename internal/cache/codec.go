package cache

import "encoding/json"

// Codec converts values to and from the opaque bytes the store holds.
// The cache owns serialization; the store never inspects payloads.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, dest any) error
}

// JSONCodec is the default Codec. It round-trips any value
// encoding/json supports.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Unmarshal(data []byte, dest any) error { return json.Unmarshal(data, dest) }

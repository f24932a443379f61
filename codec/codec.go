// Package codec centralizes document encoding.
//
// Trendify treats codec selection as a breaking-change boundary: if you
// change codecs, persisted documents created by older codecs may no longer
// decode. Document files do not carry a header; a store root is expected to
// be written and read with one codec for its whole life.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	case "go-json+gzip":
		return Gzip{Inner: GoJSON{}}, true
	case "go-json+lz4":
		return LZ4{Inner: GoJSON{}}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

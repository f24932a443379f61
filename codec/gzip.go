package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip wraps an inner codec and gzip-compresses its output.
//
// Useful for large origin documents; the records file stays a single blob,
// just smaller. Reads transparently decompress before handing the bytes to
// the inner codec.
type Gzip struct {
	Inner Codec
}

// Marshal encodes with the inner codec and compresses the result.
func (c Gzip) Marshal(v any) ([]byte, error) {
	inner := c.Inner
	if inner == nil {
		inner = Default
	}
	raw, err := inner.Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decompresses and decodes with the inner codec.
func (c Gzip) Unmarshal(data []byte, v any) error {
	inner := c.Inner
	if inner == nil {
		inner = Default
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		return err
	}
	if err := zr.Close(); err != nil {
		return err
	}
	return inner.Unmarshal(raw, v)
}

// Name returns the compound codec name, e.g. "go-json+gzip".
func (c Gzip) Name() string {
	inner := c.Inner
	if inner == nil {
		inner = Default
	}
	return inner.Name() + "+gzip"
}

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json", "go-json+gzip", "go-json+lz4"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	in := payload{Name: "velocity", Values: []float64{0, 1.5, -3}}

	for _, name := range []string{"json", "go-json", "go-json+gzip", "go-json+lz4"} {
		c, _ := ByName(name)

		data, err := c.Marshal(in)
		require.NoError(t, err, name)

		var out payload
		require.NoError(t, c.Unmarshal(data, &out), name)
		assert.Equal(t, in, out, name)
	}
}

func TestCompressedCodecsShrinkRepetitiveData(t *testing.T) {
	vals := make([]float64, 2048)
	in := payload{Name: "zeros", Values: vals}

	plain := MustMarshal(GoJSON{}, in)
	gz := MustMarshal(Gzip{Inner: GoJSON{}}, in)
	lz := MustMarshal(LZ4{Inner: GoJSON{}}, in)

	assert.Less(t, len(gz), len(plain))
	assert.Less(t, len(lz), len(plain))
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	for _, name := range []string{"go-json+gzip", "go-json+lz4"} {
		c, _ := ByName(name)
		var out payload
		assert.Error(t, c.Unmarshal([]byte("not compressed"), &out), name)
	}
}

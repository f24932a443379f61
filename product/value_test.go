package product

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueKinds(t *testing.T) {
	t.Run("Number", func(t *testing.T) {
		v := Number(3.5)
		assert.Equal(t, KindNumber, v.Kind())
		f, ok := v.Float64()
		require.True(t, ok)
		assert.Equal(t, 3.5, f)
		_, ok = v.StringValue()
		assert.False(t, ok)
	})

	t.Run("String", func(t *testing.T) {
		v := Str("3.5")
		assert.Equal(t, KindString, v.Kind())
		s, ok := v.StringValue()
		require.True(t, ok)
		assert.Equal(t, "3.5", s)
		_, ok = v.Float64()
		assert.False(t, ok)
	})

	t.Run("Bool", func(t *testing.T) {
		v := Bool(true)
		assert.Equal(t, KindBool, v.Kind())
		b, ok := v.BoolValue()
		require.True(t, ok)
		assert.True(t, b)
	})

	t.Run("ZeroIsNull", func(t *testing.T) {
		var v Value
		assert.True(t, v.IsNull())
	})
}

func TestValueArithmetic(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		got, err := Number(2).Add(Number(3))
		require.NoError(t, err)
		assert.Equal(t, Number(5), got)
	})

	t.Run("Less", func(t *testing.T) {
		less, err := Number(2).Less(Number(3))
		require.NoError(t, err)
		assert.True(t, less)
	})

	t.Run("MixedKindsFail", func(t *testing.T) {
		_, err := Number(2).Add(Str("3"))
		require.Error(t, err)
		_, err = Str("a").Less(Str("b"))
		require.Error(t, err)
	})
}

func TestValueJSONRoundTrip(t *testing.T) {
	// The kind must survive: a numeric 3 and a string "3" stay distinct.
	for _, v := range []Value{Number(3), Str("3"), Bool(false), {}} {
		data, err := json.Marshal(v)
		require.NoError(t, err)

		var got Value
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, v.Kind(), got.Kind(), "kind for %s", v)
		assert.True(t, v.Equal(got))
	}
}

func TestValueJSONRejectsComposite(t *testing.T) {
	var v Value
	require.Error(t, json.Unmarshal([]byte(`{"x":1}`), &v))
	require.Error(t, json.Unmarshal([]byte(`[1,2]`), &v))
}

func TestTagParts(t *testing.T) {
	tag := NewTag("engine", "cylinder1", "pressure")
	assert.Equal(t, Tag("engine/cylinder1/pressure"), tag)
	assert.Equal(t, []string{"engine", "cylinder1", "pressure"}, tag.Parts())
	assert.Nil(t, Tag("").Parts())

	tags := Tags{tag, "temperature"}
	assert.True(t, tags.Contains("temperature"))
	assert.False(t, tags.Contains("pressure"))
	assert.Equal(t, Tags{"engine/cylinder1/pressure", "temperature"}, tags.Sorted())
}

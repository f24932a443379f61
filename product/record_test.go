package product

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TalbotKnighton/trendify/codec"
	"github.com/TalbotKnighton/trendify/typedesc"
)

func newTestResolver(t *testing.T) (*typedesc.Registry, *typedesc.Resolver) {
	t.Helper()
	reg := typedesc.NewRegistry()
	require.NoError(t, RegisterTypes(reg))
	return reg, typedesc.NewResolver(reg)
}

func TestEncodeEmbedsTypeInfo(t *testing.T) {
	reg, _ := newTestResolver(t)

	p := Point2D{Base: Base{Tags: Tags{"scatter"}}, X: Number(1), Y: Number(2)}
	data, err := Encode(codec.Default, reg, p)
	require.NoError(t, err)

	desc, err := DescriptorOf(codec.Default, data)
	require.NoError(t, err)
	assert.Equal(t, VariantModule+":Point2D", desc.Key())
}

func TestEncodeRequiresTags(t *testing.T) {
	reg, _ := newTestResolver(t)

	_, err := Encode(codec.Default, reg, Point2D{X: Number(1), Y: Number(2)})
	require.ErrorIs(t, err, ErrNoTags)
}

func TestDecodeReconstructsSubtype(t *testing.T) {
	reg, res := newTestResolver(t)

	original := NewTrace2D(Tags{"thrust"}, []float64{0, 1, 2}, []float64{0, 10, 40}, DefaultPen(), Format2D{LabelX: "t"})
	data, err := Encode(codec.Default, reg, original)
	require.NoError(t, err)

	t.Run("AsRecord", func(t *testing.T) {
		got, err := Decode(codec.Default, res, data, nil)
		require.NoError(t, err)
		trace, ok := got.(Trace2D)
		require.True(t, ok, "expected Trace2D, got %T", got)
		assert.Equal(t, original.Points, trace.Points)
		assert.Equal(t, Tags{"thrust"}, trace.ProductTags())
	})

	t.Run("AsXYData", func(t *testing.T) {
		got, err := Decode(codec.Default, res, data, XYDataType)
		require.NoError(t, err)
		_, ok := got.(Trace2D)
		assert.True(t, ok)
	})

	t.Run("MismatchedExpectation", func(t *testing.T) {
		_, err := Decode(codec.Default, res, data, reflect.TypeOf(TableEntry{}))
		var mismatch *typedesc.TypeMismatchError
		require.ErrorAs(t, err, &mismatch)
	})
}

func TestDecodeValueKindsSurvive(t *testing.T) {
	reg, res := newTestResolver(t)

	entry := TableEntry{
		Base:  Base{Tags: Tags{"results"}},
		Row:   Str("case_1"),
		Col:   Str("max_load"),
		Value: Number(17.5),
		Unit:  "kN",
	}
	data, err := Encode(codec.Default, reg, entry)
	require.NoError(t, err)

	got, err := Decode(codec.Default, res, data, nil)
	require.NoError(t, err)
	decoded := got.(TableEntry)
	assert.Equal(t, KindString, decoded.Row.Kind())
	assert.Equal(t, KindNumber, decoded.Value.Kind())
	assert.Equal(t, entry, decoded)
}

func TestDecodeMissingTypeInfo(t *testing.T) {
	_, res := newTestResolver(t)
	_, err := Decode(codec.Default, res, []byte(`{"tags":["a"],"x":1,"y":2}`), nil)
	require.Error(t, err)
}

func TestIs(t *testing.T) {
	trace := Trace2D{Base: Base{Tags: Tags{"a"}}}
	point := Point2D{Base: Base{Tags: Tags{"a"}}}
	table := TableEntry{Base: Base{Tags: Tags{"a"}}}

	assert.True(t, Is(trace, reflect.TypeOf(Trace2D{})))
	assert.False(t, Is(trace, reflect.TypeOf(Point2D{})))

	// Interface target matches every implementing subtype.
	assert.True(t, Is(trace, XYDataType))
	assert.True(t, Is(point, XYDataType))
	assert.False(t, Is(table, XYDataType))

	assert.True(t, Is(table, nil))
}

func TestTypeName(t *testing.T) {
	reg, _ := newTestResolver(t)
	assert.Equal(t, "Trace2D", TypeName(reg, Trace2D{}))
	assert.Equal(t, "HistogramEntry", TypeName(reg, HistogramEntry{}))
}

func TestTraceAxes(t *testing.T) {
	trace := NewTrace2D(Tags{"a"}, []float64{1, 2, 3}, []float64{4, 5, 6}, DefaultPen(), Format2D{})
	assert.Equal(t, []float64{1, 2, 3}, trace.XValues())
	assert.Equal(t, []float64{4, 5, 6}, trace.YValues())

	// Symbolic points are skipped.
	trace.Points = append(trace.Points, Point2D{X: Str("t_end"), Y: Number(7)})
	assert.Equal(t, []float64{1, 2, 3}, trace.XValues())
	assert.Equal(t, []float64{4, 5, 6, 7}, trace.YValues())
}

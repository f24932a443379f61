package product

import (
	"reflect"

	"github.com/TalbotKnighton/trendify/typedesc"
)

// VariantModule is the module spec the built-in record variants register
// under.
const VariantModule = "trendify.products"

// XYData marks records that plot as xy data on a 2D axis. It is the
// substitutability target for queries that want traces and points alike.
type XYData interface {
	Record
	xyData()
}

// Point2D is a single point to scatter onto an xy plot. X and Y accept
// numbers or strings (symbolic placeholders filled in downstream).
type Point2D struct {
	Base
	X      Value     `json:"x"`
	Y      Value     `json:"y"`
	Marker *Marker   `json:"marker,omitempty"`
	Format *Format2D `json:"format2d,omitempty"`
}

func (Point2D) xyData() {}

// Trace2D is an ordered collection of points drawn as a line.
type Trace2D struct {
	Base
	Points []Point2D `json:"points"`
	Pen    Pen       `json:"pen"`
	Format Format2D  `json:"format2d"`
}

func (Trace2D) xyData() {}

// NewTrace2D builds a trace from parallel x/y series.
func NewTrace2D(tags Tags, xs, ys []float64, pen Pen, format Format2D) Trace2D {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	points := make([]Point2D, n)
	for i := 0; i < n; i++ {
		points[i] = Point2D{X: Number(xs[i]), Y: Number(ys[i])}
	}
	return Trace2D{
		Base:   Base{Tags: tags},
		Points: points,
		Pen:    pen,
		Format: format,
	}
}

// XValues returns the x series of the trace's numeric points.
func (t Trace2D) XValues() []float64 { return t.axis(func(p Point2D) Value { return p.X }) }

// YValues returns the y series of the trace's numeric points.
func (t Trace2D) YValues() []float64 { return t.axis(func(p Point2D) Value { return p.Y }) }

func (t Trace2D) axis(pick func(Point2D) Value) []float64 {
	out := make([]float64, 0, len(t.Points))
	for _, p := range t.Points {
		if f, ok := pick(p).Float64(); ok {
			out = append(out, f)
		}
	}
	return out
}

// TableEntry is one cell of a pivoted results table, addressed by row and
// column labels.
type TableEntry struct {
	Base
	Row   Value  `json:"row"`
	Col   Value  `json:"col"`
	Value Value  `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// HistogramEntry is a single value to be binned into a histogram.
type HistogramEntry struct {
	Base
	Value  Value          `json:"value"`
	Style  HistogramStyle `json:"style"`
	Format Format2D       `json:"format2d"`
}

// XYDataType is the reflect.Type of the XYData interface, for use as a
// substitutability filter target.
var XYDataType = reflect.TypeOf((*XYData)(nil)).Elem()

// RegisterTypes registers the closed variant set (records, specs) under
// VariantModule. Call once at startup; repeat calls are no-ops.
func RegisterTypes(reg *typedesc.Registry) error {
	return reg.RegisterModule(VariantModule,
		typedesc.Reg("Trace2D", reflect.TypeOf(Trace2D{})),
		typedesc.Reg("Point2D", reflect.TypeOf(Point2D{})),
		typedesc.Reg("TableEntry", reflect.TypeOf(TableEntry{})),
		typedesc.Reg("HistogramEntry", reflect.TypeOf(HistogramEntry{})),
		typedesc.Reg("FigureSpec", reflect.TypeOf(FigureSpec{})),
	)
}

package product

import "fmt"

// Pen styles a line trace.
type Pen struct {
	Color  string  `json:"color"`
	Size   float64 `json:"size"`
	Alpha  float64 `json:"alpha"`
	ZOrder float64 `json:"zorder"`
	Label  string  `json:"label,omitempty"`
}

// DefaultPen returns the default line style.
func DefaultPen() Pen {
	return Pen{Color: "k", Size: 1, Alpha: 1}
}

// Marker styles a scattered point.
type Marker struct {
	Color  string  `json:"color"`
	Size   float64 `json:"size"`
	Alpha  float64 `json:"alpha"`
	ZOrder float64 `json:"zorder"`
	Symbol string  `json:"symbol"`
	Label  string  `json:"label,omitempty"`
}

// DefaultMarker returns the default point style.
func DefaultMarker() Marker {
	return Marker{Color: "k", Size: 5, Alpha: 1, Symbol: "."}
}

// HistogramStyle styles the bars built from HistogramEntry values.
type HistogramStyle struct {
	Color     string  `json:"color"`
	Label     string  `json:"label,omitempty"`
	HistType  string  `json:"histtype"`
	AlphaEdge float64 `json:"alpha_edge"`
	AlphaFace float64 `json:"alpha_face"`
	LineWidth float64 `json:"linewidth"`
}

// DefaultHistogramStyle returns the default bar style.
func DefaultHistogramStyle() HistogramStyle {
	return HistogramStyle{Color: "k", HistType: "stepfilled", AlphaEdge: 1, AlphaFace: 0.3, LineWidth: 2}
}

// Format2D carries figure and axis formatting: titles, axis labels, and
// optional axis limits. Nil limit pointers mean "not constrained".
type Format2D struct {
	TitleFig    string   `json:"title_fig,omitempty"`
	TitleLegend string   `json:"title_legend,omitempty"`
	TitleAx     string   `json:"title_ax,omitempty"`
	LabelX      string   `json:"label_x,omitempty"`
	LabelY      string   `json:"label_y,omitempty"`
	LimXMin     *float64 `json:"lim_x_min,omitempty"`
	LimXMax     *float64 `json:"lim_x_max,omitempty"`
	LimYMin     *float64 `json:"lim_y_min,omitempty"`
	LimYMax     *float64 `json:"lim_y_max,omitempty"`
}

// UnionFormat2D combines formats into the most inclusive one: limits widen
// to cover every input, while titles and labels must agree across all
// inputs.
func UnionFormat2D(formats ...Format2D) (Format2D, error) {
	if len(formats) == 0 {
		return Format2D{}, nil
	}

	out := Format2D{
		TitleFig:    formats[0].TitleFig,
		TitleLegend: formats[0].TitleLegend,
		TitleAx:     formats[0].TitleAx,
		LabelX:      formats[0].LabelX,
		LabelY:      formats[0].LabelY,
	}
	for _, f := range formats[1:] {
		if f.TitleFig != out.TitleFig || f.TitleLegend != out.TitleLegend ||
			f.TitleAx != out.TitleAx || f.LabelX != out.LabelX || f.LabelY != out.LabelY {
			return Format2D{}, fmt.Errorf("product: cannot union formats with differing titles or labels")
		}
	}
	for _, f := range formats {
		out.LimXMin = minLimit(out.LimXMin, f.LimXMin)
		out.LimYMin = minLimit(out.LimYMin, f.LimYMin)
		out.LimXMax = maxLimit(out.LimXMax, f.LimXMax)
		out.LimYMax = maxLimit(out.LimYMax, f.LimYMax)
	}
	return out, nil
}

func minLimit(a, b *float64) *float64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b < *a:
		return b
	default:
		return a
	}
}

func maxLimit(a, b *float64) *float64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b > *a:
		return b
	default:
		return a
	}
}

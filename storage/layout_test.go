package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutPaths(t *testing.T) {
	l := Layout{}

	assert.Equal(t, "index/store_index.json", l.IndexPath())
	assert.Equal(t, "records/by_origin/run1_0042/data_products.json", l.OriginDocPath("run1_0042"))
	assert.Equal(t, "specs/FigureSpec/run1_0042.json", l.SpecPath("FigureSpec", "run1_0042"))

	custom := Layout{RecordsFileName: "products.json"}
	assert.Equal(t, "records/by_origin/run1_0042/products.json", custom.OriginDocPath("run1_0042"))
}

func TestLayoutTagDocPath(t *testing.T) {
	l := Layout{}
	// Hierarchical tags nest into directories.
	assert.Equal(t, "records/by_tag/engine/cyl1/pressure/run1_0042.json",
		l.TagDocPath("engine/cyl1/pressure", "run1_0042"))
	assert.Equal(t, "records/by_tag/thrust/run1_0042.json",
		l.TagDocPath("thrust", "run1_0042"))
}

func TestOriginIDFromDocPath(t *testing.T) {
	l := Layout{}

	assert.Equal(t, "run1_0042", l.OriginIDFromDocPath("records/by_origin/run1_0042/data_products.json"))
	assert.Empty(t, l.OriginIDFromDocPath("records/by_origin/run1_0042/other.json"))
	assert.Empty(t, l.OriginIDFromDocPath("records/by_tag/a/run1_0042.json"))
	assert.Empty(t, l.OriginIDFromDocPath("index/store_index.json"))
}

func TestSplitSpecPath(t *testing.T) {
	l := Layout{}

	specType, originID, ok := l.splitSpecPath("specs/FigureSpec/run1_0042.json")
	assert.True(t, ok)
	assert.Equal(t, "FigureSpec", specType)
	assert.Equal(t, "run1_0042", originID)

	_, _, ok = l.splitSpecPath("specs/FigureSpec/deeper/run1_0042.json")
	assert.False(t, ok)
	_, _, ok = l.splitSpecPath("records/by_origin/run1_0042/data_products.json")
	assert.False(t, ok)
}

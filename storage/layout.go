package storage

import (
	"path"

	"github.com/TalbotKnighton/trendify/product"
)

// Directory and file names under a store root. All paths are
// slash-separated blobstore names relative to the root.
const (
	IndexDir      = "index"
	IndexFileName = "store_index.json"
	RecordsDir    = "records"
	ByOriginDir   = "by_origin"
	ByTagDir      = "by_tag"
	SpecsDir      = "specs"

	// DefaultRecordsFileName is the per-origin document name.
	DefaultRecordsFileName = "data_products.json"
)

// Layout computes the paths of a store root.
type Layout struct {
	// RecordsFileName is the name of the per-origin document. Empty
	// means DefaultRecordsFileName.
	RecordsFileName string
}

func (l Layout) recordsFileName() string {
	if l.RecordsFileName == "" {
		return DefaultRecordsFileName
	}
	return l.RecordsFileName
}

// IndexPath returns the location of the persisted index.
func (l Layout) IndexPath() string {
	return path.Join(IndexDir, IndexFileName)
}

// OriginDocPath returns the location of an origin's records document.
func (l Layout) OriginDocPath(originID string) string {
	return path.Join(RecordsDir, ByOriginDir, originID, l.recordsFileName())
}

// OriginDocPrefix returns the prefix under which all origin documents
// live.
func (l Layout) OriginDocPrefix() string {
	return path.Join(RecordsDir, ByOriginDir) + "/"
}

// OriginIDFromDocPath recovers the origin id from a document path, or ""
// when the path is not an origin document.
func (l Layout) OriginIDFromDocPath(p string) string {
	dir, file := path.Split(p)
	if file != l.recordsFileName() {
		return ""
	}
	dir = path.Clean(dir)
	if path.Dir(dir) != path.Join(RecordsDir, ByOriginDir) {
		return ""
	}
	return path.Base(dir)
}

// SpecPath returns the location of a spec document.
func (l Layout) SpecPath(specType, originID string) string {
	return path.Join(SpecsDir, specType, originID+".json")
}

// SpecPrefix returns the prefix under which all spec documents live.
func (l Layout) SpecPrefix() string {
	return SpecsDir + "/"
}

// splitSpecPath recovers (specType, originID) from a spec path.
func (l Layout) splitSpecPath(p string) (string, string, bool) {
	dir, file := path.Split(p)
	if path.Ext(file) != ".json" {
		return "", "", false
	}
	dir = path.Clean(dir)
	if path.Dir(dir) != SpecsDir {
		return "", "", false
	}
	return path.Base(dir), file[:len(file)-len(".json")], true
}

// TagDocPath returns the location of an origin's per-tag document. The
// tag's hierarchy parts become nested directories.
func (l Layout) TagDocPath(tag product.Tag, originID string) string {
	parts := append([]string{RecordsDir, ByTagDir}, tag.Parts()...)
	parts = append(parts, originID+".json")
	return path.Join(parts...)
}

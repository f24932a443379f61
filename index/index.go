package index

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/TalbotKnighton/trendify/product"
)

// RecordID composes the deterministic id of a record: origin, type name
// and position within the origin document.
func RecordID(origin, typeName string, position int) string {
	return fmt.Sprintf("%s_%s_%d", origin, typeName, position)
}

// SpecID composes the deterministic id of a spec.
func SpecID(origin, specType string, i int) string {
	return fmt.Sprintf("%s_%s_%d", origin, specType, i)
}

// RecordEntry locates one record and carries its query attributes.
type RecordEntry struct {
	Type     string       `json:"type"`
	File     string       `json:"file"`
	Position int          `json:"position"`
	Origin   string       `json:"origin"`
	Tags     product.Tags `json:"tags"`
}

// TagEntry is the bucket of everything carrying one tag.
type TagEntry struct {
	RecordIDs   []string `json:"record_ids"`
	SpecIDs     []string `json:"spec_ids,omitempty"`
	RecordFiles []string `json:"record_files"`
}

// OriginEntry is the bucket of everything produced by one origin.
type OriginEntry struct {
	RecordIDs []string `json:"record_ids"`
	Directory string   `json:"directory,omitempty"`
}

// SpecEntry locates one spec document.
type SpecEntry struct {
	Type string      `json:"type"`
	File string      `json:"file"`
	Tag  product.Tag `json:"tag"`
}

// Index is the in-memory secondary index. It is written single-threaded
// (during Build, after the worker barrier) and read-only afterwards.
type Index struct {
	Records map[string]RecordEntry  `json:"records"`
	Tags    map[product.Tag]*TagEntry `json:"tags"`
	Origins map[string]*OriginEntry `json:"origins"`
	Specs   map[string]SpecEntry    `json:"specs"`

	// Dense ordinals and bitmaps are rebuilt from the maps, never
	// persisted.
	ordinals   map[string]uint32
	byOrdinal  []string
	tagBits    map[product.Tag]*roaring.Bitmap
	originBits map[string]*roaring.Bitmap
}

// New creates an empty index.
func New() *Index {
	ix := &Index{}
	ix.reset()
	return ix
}

func (ix *Index) reset() {
	ix.Records = make(map[string]RecordEntry)
	ix.Tags = make(map[product.Tag]*TagEntry)
	ix.Origins = make(map[string]*OriginEntry)
	ix.Specs = make(map[string]SpecEntry)
	ix.ordinals = make(map[string]uint32)
	ix.byOrdinal = nil
	ix.tagBits = make(map[product.Tag]*roaring.Bitmap)
	ix.originBits = make(map[string]*roaring.Bitmap)
}

// AddRecord registers a record under its id and fans it out to the tag
// and origin buckets. Adding an existing id again is a no-op: no bucket
// ever holds a duplicate.
func (ix *Index) AddRecord(id string, e RecordEntry) {
	if _, ok := ix.Records[id]; ok {
		return
	}
	ix.Records[id] = e

	ord := uint32(len(ix.byOrdinal))
	ix.ordinals[id] = ord
	ix.byOrdinal = append(ix.byOrdinal, id)

	for _, tag := range e.Tags {
		te := ix.tagEntry(tag)
		te.RecordIDs = append(te.RecordIDs, id)
		te.RecordFiles = appendUnique(te.RecordFiles, e.File)
		ix.tagBit(tag).Add(ord)
	}

	oe := ix.originEntry(e.Origin)
	oe.RecordIDs = append(oe.RecordIDs, id)
	ix.originBit(e.Origin).Add(ord)
}

// AddOrigin registers an origin bucket even when it has no records, so a
// failed origin still appears with an allocated id.
func (ix *Index) AddOrigin(origin, directory string) {
	oe := ix.originEntry(origin)
	if directory != "" {
		oe.Directory = directory
	}
	if _, ok := ix.originBits[origin]; !ok {
		ix.originBits[origin] = roaring.New()
	}
}

// AddSpec registers a spec under its id and fans it out to its tag
// bucket. Idempotent like AddRecord.
func (ix *Index) AddSpec(id string, e SpecEntry) {
	if _, ok := ix.Specs[id]; ok {
		return
	}
	ix.Specs[id] = e
	te := ix.tagEntry(e.Tag)
	te.SpecIDs = append(te.SpecIDs, id)
}

// AddRecordFile attaches a backing file to a tag bucket without adding
// record ids, for per-tag documents.
func (ix *Index) AddRecordFile(tag product.Tag, file string) {
	te := ix.tagEntry(tag)
	te.RecordFiles = appendUnique(te.RecordFiles, file)
}

func (ix *Index) tagEntry(tag product.Tag) *TagEntry {
	te, ok := ix.Tags[tag]
	if !ok {
		te = &TagEntry{}
		ix.Tags[tag] = te
	}
	return te
}

func (ix *Index) originEntry(origin string) *OriginEntry {
	oe, ok := ix.Origins[origin]
	if !ok {
		oe = &OriginEntry{}
		ix.Origins[origin] = oe
	}
	return oe
}

func (ix *Index) tagBit(tag product.Tag) *roaring.Bitmap {
	b, ok := ix.tagBits[tag]
	if !ok {
		b = roaring.New()
		ix.tagBits[tag] = b
	}
	return b
}

func (ix *Index) originBit(origin string) *roaring.Bitmap {
	b, ok := ix.originBits[origin]
	if !ok {
		b = roaring.New()
		ix.originBits[origin] = b
	}
	return b
}

// Record returns the entry for a record id.
func (ix *Index) Record(id string) (RecordEntry, bool) {
	e, ok := ix.Records[id]
	return e, ok
}

// Spec returns the entry for a spec id.
func (ix *Index) Spec(id string) (SpecEntry, bool) {
	e, ok := ix.Specs[id]
	return e, ok
}

// RecordIDsByTag returns the record ids under tag, in build order.
func (ix *Index) RecordIDsByTag(tag product.Tag) []string {
	te, ok := ix.Tags[tag]
	if !ok {
		return nil
	}
	return append([]string(nil), te.RecordIDs...)
}

// RecordIDsByOrigin returns the record ids of one origin, in build
// order.
func (ix *Index) RecordIDsByOrigin(origin string) []string {
	oe, ok := ix.Origins[origin]
	if !ok {
		return nil
	}
	return append([]string(nil), oe.RecordIDs...)
}

// RecordIDsByTagAndOrigin intersects a tag bucket with an origin bucket
// on the bitmaps, returning ids in build order.
func (ix *Index) RecordIDsByTagAndOrigin(tag product.Tag, origin string) []string {
	tb, ok := ix.tagBits[tag]
	if !ok {
		return nil
	}
	ob, ok := ix.originBits[origin]
	if !ok {
		return nil
	}

	both := roaring.And(tb, ob)
	out := make([]string, 0, both.GetCardinality())
	it := both.Iterator()
	for it.HasNext() {
		out = append(out, ix.byOrdinal[it.Next()])
	}
	return out
}

// SpecIDsByTag returns the spec ids under tag, in build order.
func (ix *Index) SpecIDsByTag(tag product.Tag) []string {
	te, ok := ix.Tags[tag]
	if !ok {
		return nil
	}
	return append([]string(nil), te.SpecIDs...)
}

// FilesByTag returns the backing files of a tag bucket.
func (ix *Index) FilesByTag(tag product.Tag) []string {
	te, ok := ix.Tags[tag]
	if !ok {
		return nil
	}
	return append([]string(nil), te.RecordFiles...)
}

// AllTags returns every indexed tag, sorted.
func (ix *Index) AllTags() product.Tags {
	out := make(product.Tags, 0, len(ix.Tags))
	for tag := range ix.Tags {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AllOrigins returns every indexed origin id, sorted.
func (ix *Index) AllOrigins() []string {
	out := make([]string, 0, len(ix.Origins))
	for origin := range ix.Origins {
		out = append(out, origin)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of indexed records.
func (ix *Index) Len() int { return len(ix.Records) }

// rebuildBitmaps re-derives ordinals and bitmaps from the persisted
// maps, after a load.
func (ix *Index) rebuildBitmaps() {
	ix.ordinals = make(map[string]uint32, len(ix.Records))
	ix.byOrdinal = make([]string, 0, len(ix.Records))
	ix.tagBits = make(map[product.Tag]*roaring.Bitmap)
	ix.originBits = make(map[string]*roaring.Bitmap)

	// Ordinal order must be deterministic across loads; origin buckets
	// preserve build order, so walk origins and their id lists.
	for _, origin := range ix.AllOrigins() {
		for _, id := range ix.Origins[origin].RecordIDs {
			e := ix.Records[id]
			ord := uint32(len(ix.byOrdinal))
			ix.ordinals[id] = ord
			ix.byOrdinal = append(ix.byOrdinal, id)
			for _, tag := range e.Tags {
				ix.tagBit(tag).Add(ord)
			}
			ix.originBit(origin).Add(ord)
		}
	}
}

func appendUnique(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}

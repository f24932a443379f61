package product

import (
	"sort"
	"strings"
)

// TagSeparator joins the parts of a hierarchical tag into its canonical
// string form. The same form doubles as the nested on-disk path of the
// per-tag tree.
const TagSeparator = "/"

// Tag identifies a grouping of records and specs. A tag is either a plain
// scalar ("temperature") or a hierarchy ("engine/cylinder1/pressure")
// whose parts are joined by TagSeparator.
type Tag string

// NewTag builds a tag from ordered parts.
func NewTag(parts ...string) Tag {
	return Tag(strings.Join(parts, TagSeparator))
}

// Parts splits the tag into its hierarchy components.
func (t Tag) Parts() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), TagSeparator)
}

func (t Tag) String() string { return string(t) }

// Tags is an ordered list of tags.
type Tags []Tag

// Contains reports whether tag is present.
func (ts Tags) Contains(tag Tag) bool {
	for _, t := range ts {
		if t == tag {
			return true
		}
	}
	return false
}

// Sorted returns a sorted copy.
func (ts Tags) Sorted() Tags {
	out := make(Tags, len(ts))
	copy(out, ts)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the tags as plain strings.
func (ts Tags) Strings() []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}

package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// If you need the most portable/lowest-dependency option, use JSON. The
// library default may change over time; a store root must keep using the
// codec it was created with.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
var Default Codec = GoJSON{}

package collection

import (
	"fmt"
	"reflect"

	"github.com/TalbotKnighton/trendify/product"
)

// Flatten descends arbitrarily nested slices and collections and returns
// the records they contain, in encounter order. Records themselves are
// atomic, as are strings and byte slices: a Trace2D is one record, never
// a sequence of points, and a string leaf is a single (invalid) value,
// never a sequence of runes. Nil elements are skipped. A leaf that is
// not a record is an error.
func Flatten(values ...any) ([]product.Record, error) {
	var out []product.Record
	for _, v := range values {
		var err error
		out, err = flattenInto(out, v)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func flattenInto(out []product.Record, v any) ([]product.Record, error) {
	switch x := v.(type) {
	case nil:
		return out, nil
	case product.Record:
		return append(out, x), nil
	case *Collection:
		if x == nil {
			return out, nil
		}
		return append(out, x.items...), nil
	case *Keyed:
		if x == nil {
			return out, nil
		}
		for _, r := range x.Records() {
			out = append(out, r)
		}
		return out, nil
	case string, []byte:
		return nil, fmt.Errorf("collection: cannot flatten %T into records", v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		var err error
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i)
			if !elem.IsValid() || (elem.Kind() == reflect.Interface && elem.IsNil()) {
				continue
			}
			out, err = flattenInto(out, elem.Interface())
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("collection: cannot flatten %T into records", v)
	}
}

package product

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/goccy/go-json"

	"github.com/TalbotKnighton/trendify/codec"
	"github.com/TalbotKnighton/trendify/typedesc"
)

// TypeInfoKey is the document field carrying the embedded type descriptor.
const TypeInfoKey = "type_info"

// ErrNoTags is returned when a record reaches the encode boundary without
// at least one tag.
var ErrNoTags = errors.New("product: record has no tags")

// Record is a data product the store can persist and index. Concrete
// subtypes embed Base.
type Record interface {
	ProductTags() Tags
	ProductMeta() map[string]string
}

// Named is implemented by records addressed by a unique name inside a
// keyed container.
type Named interface {
	Record
	ProductName() string
}

// Base carries the fields shared by every record.
type Base struct {
	Tags     Tags              `json:"tags"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (b Base) ProductTags() Tags              { return b.Tags }
func (b Base) ProductMeta() map[string]string { return b.Metadata }

// RecordType is the reflect.Type of the Record interface, the default
// expected base for polymorphic decoding.
var RecordType = reflect.TypeOf((*Record)(nil)).Elem()

// Encode serializes a record with its type descriptor embedded under
// "type_info" alongside the record's own fields. Records must carry at
// least one tag.
func Encode(c codec.Codec, reg *typedesc.Registry, r Record) ([]byte, error) {
	if len(r.ProductTags()) == 0 {
		return nil, fmt.Errorf("%w (type %T)", ErrNoTags, r)
	}
	return encodeWithTypeInfo(c, reg, r)
}

func encodeWithTypeInfo(c codec.Codec, reg *typedesc.Registry, v any) ([]byte, error) {
	desc, err := typedesc.FromInstance(reg, v)
	if err != nil {
		return nil, err
	}

	body, err := c.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage)
	if err := c.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("product: %T does not serialize to an object: %w", v, err)
	}

	info, err := c.Marshal(desc)
	if err != nil {
		return nil, err
	}
	fields[TypeInfoKey] = info

	return c.Marshal(fields)
}

// typeInfoEnvelope peels just the descriptor out of a document.
type typeInfoEnvelope struct {
	TypeInfo typedesc.Descriptor `json:"type_info"`
}

// DescriptorOf extracts the embedded descriptor from an encoded document.
func DescriptorOf(c codec.Codec, data []byte) (typedesc.Descriptor, error) {
	var env typeInfoEnvelope
	if err := c.Unmarshal(data, &env); err != nil {
		return typedesc.Descriptor{}, err
	}
	if env.TypeInfo.IsZero() {
		return typedesc.Descriptor{}, fmt.Errorf("product: document has no %q field", TypeInfoKey)
	}
	return env.TypeInfo, nil
}

// Decode reconstructs the concrete record a document describes. The
// embedded descriptor is resolved and checked against expected (an
// interface or concrete base; nil means any Record): if the document
// carries a subtype of the expectation, that subtype is what comes back.
// A descriptor outside the expectation fails with a TypeMismatchError.
func Decode(c codec.Codec, res *typedesc.Resolver, data []byte, expected reflect.Type) (Record, error) {
	desc, err := DescriptorOf(c, data)
	if err != nil {
		return nil, err
	}

	if expected == nil {
		expected = RecordType
	}
	t, err := res.ResolveAs(desc, expected)
	if err != nil {
		return nil, err
	}

	ptr := reflect.New(t)
	if err := c.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, err
	}

	if r, ok := ptr.Elem().Interface().(Record); ok {
		return r, nil
	}
	if r, ok := ptr.Interface().(Record); ok {
		return r, nil
	}
	return nil, &typedesc.TypeMismatchError{Descriptor: desc, Resolved: t, Expected: RecordType}
}

// EncodeSpec serializes a spec with its type descriptor embedded under
// "type_info", like a record but without the tags requirement.
func EncodeSpec(c codec.Codec, reg *typedesc.Registry, s Spec) ([]byte, error) {
	return encodeWithTypeInfo(c, reg, s)
}

// DecodeSpec reconstructs the concrete spec a document describes.
func DecodeSpec(c codec.Codec, res *typedesc.Resolver, data []byte) (Spec, error) {
	desc, err := DescriptorOf(c, data)
	if err != nil {
		return nil, err
	}
	t, err := res.ResolveAs(desc, SpecType)
	if err != nil {
		return nil, err
	}

	ptr := reflect.New(t)
	if err := c.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, err
	}
	if s, ok := ptr.Elem().Interface().(Spec); ok {
		return s, nil
	}
	if s, ok := ptr.Interface().(Spec); ok {
		return s, nil
	}
	return nil, &typedesc.TypeMismatchError{Descriptor: desc, Resolved: t, Expected: SpecType}
}

// Is reports whether the record's concrete type satisfies target: exact
// match for concrete targets, implementation for interface targets. A nil
// target matches everything.
func Is(r Record, target reflect.Type) bool {
	if target == nil {
		return true
	}
	t := reflect.TypeOf(r)
	if t == target {
		return true
	}
	if t.Kind() == reflect.Pointer && t.Elem() == target {
		return true
	}
	return typedesc.Satisfies(concreteType(r), target)
}

func concreteType(r Record) reflect.Type {
	t := reflect.TypeOf(r)
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

// TypeName returns the registered (or Go) name of the record's concrete
// type, used as the type segment of record ids.
func TypeName(reg *typedesc.Registry, r Record) string {
	t := concreteType(r)
	if ref, ok := reg.Lookup(t); ok {
		return ref.Name
	}
	if ref, ok := reg.Lookup(reflect.TypeOf(r)); ok {
		return ref.Name
	}
	return t.Name()
}

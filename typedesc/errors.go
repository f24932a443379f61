package typedesc

import (
	"fmt"
	"reflect"
)

// ResolutionError indicates that a descriptor names a module or attribute
// unknown to the registry. Fatal: callers must not downgrade it.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ResolutionError struct {
	Module string
	Name   string
	cause  error
}

func (e *ResolutionError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("typedesc: unknown module %q", e.Module)
	}
	return fmt.Sprintf("typedesc: module %q has no type %q", e.Module, e.Name)
}

func (e *ResolutionError) Unwrap() error { return e.cause }

// TypeMismatchError indicates that a descriptor resolved, but the resolved
// type does not satisfy the declared base. Fatal: callers must not
// downgrade it.
type TypeMismatchError struct {
	Descriptor Descriptor
	Resolved   reflect.Type
	Expected   reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("typedesc: %s resolved to %v, which is not a %v",
		e.Descriptor.Key(), e.Resolved, e.Expected)
}

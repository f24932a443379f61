// Package typedesc captures runtime type identity in a serializable form.
//
// A Descriptor records where a type lives (module spec), what it is called
// (base name), and how it is parametrized (ordered type parameters, which
// are themselves descriptors). Descriptors are embedded into persisted
// documents under the "type_info" key so that a reader can reconstruct the
// exact concrete subtype of a record without knowing the mix of subtypes a
// batch contains.
//
// Resolution is closed-world: every concrete type a descriptor may name is
// registered explicitly in a Registry from an ordered list built at
// startup. There is no import-time self-registration and no shared global
// populated by side effects. Built-in generic shapes (list-of, map-of,
// set-of, tuple-of, union, optional, literal, callable, annotated) are
// reconstructed structurally by resolving the base and every parameter,
// then applying the parameters.
package typedesc

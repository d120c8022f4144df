// Package vtype provides an opaque, comparable handle identifying a
// parsed value's Go type, usable as a map key and reproducible across
// generic instantiations.
package vtype

import (
	"fmt"
	"reflect"
)

// Type is an opaque handle for a parser's result type. Two Types compare
// equal iff they describe the same underlying Go type and, for
// parameterised constructs (slices, maps), the same element types.
type Type struct {
	name string
	rt   reflect.Type
	elem []Type
}

// Of derives a Type from a zero value of T.
func Of[T any]() Type {
	var zero T
	return Type{name: fmt.Sprintf("%T", zero), rt: reflect.TypeOf(&zero).Elem()}
}

// Named builds a Type carrying an explicit name, useful for parsers whose
// result type is itself generic (e.g. "list<string>").
func Named(name string, elem ...Type) Type {
	return Type{name: name, elem: elem}
}

// String returns the human-readable name of the type, suitable for error
// messages and caption variables.
func (t Type) String() string {
	if t.name != "" {
		return t.name
	}
	if t.rt != nil {
		return t.rt.String()
	}
	return "<unknown>"
}

// Equal reports whether t and other identify the same value type,
// including nested element types.
func (t Type) Equal(other Type) bool {
	if t.rt != nil && other.rt != nil && t.rt != other.rt {
		return false
	}
	if t.name != other.name {
		return false
	}
	if len(t.elem) != len(other.elem) {
		return false
	}
	for i := range t.elem {
		if !t.elem[i].Equal(other.elem[i]) {
			return false
		}
	}
	return true
}

// Key returns a value safe to use as a map key with the same equality
// semantics as Equal.
func (t Type) Key() any {
	type key struct {
		name string
		elem string
	}
	es := ""
	for _, e := range t.elem {
		es += e.String() + ";"
	}
	return key{name: t.String(), elem: es}
}

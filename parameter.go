// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package autowire

import (
	"fmt"
	"reflect"
)

// MatchFunc decides whether a Resolved parameter applies to a constructor
// parameter.
type MatchFunc func(p Param, ctx *Context) bool

// ValueFunc supplies the value for a Resolved parameter. It is called on
// every resolution, so it may return a different value each time.
type ValueFunc func(p Param, ctx *Context) interface{}

type parameterKind uint8

const (
	kindNamed parameterKind = iota + 1
	kindTyped
	kindPositional
	kindResolved
)

func (k parameterKind) String() string {
	switch k {
	case kindNamed:
		return "named"
	case kindTyped:
		return "typed"
	case kindPositional:
		return "positional"
	case kindResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Parameter supplies a value for a constructor parameter, bypassing normal
// recursive resolution. Parameters can be attached to a registration with
// WithParameter or given to Resolve. Parameters given to Resolve win over
// parameters attached to the registration.
//
// Create a Parameter with Named, Typed, TypedAs, Positional or Resolved.
type Parameter struct {
	kind  parameterKind
	name  string
	typ   reflect.Type
	index int
	value reflect.Value
	match MatchFunc
	fn    ValueFunc
}

// Named specifies a parameter by name. This will satisfy any constructor
// parameter with exactly the same name. If the value isn't
// assignable to the declared type, resolution fails with
// ErrParameterTypeMismatch.
func Named(n string, v interface{}) Parameter {
	return Parameter{
		kind:  kindNamed,
		name:  n,
		value: reflect.ValueOf(v),
	}
}

// Typed specifies a parameter by the dynamic type of v. This will satisfy
// any constructor parameter whose declared type v is assignable to.
// Use TypedAs to give an interface type.
func Typed(v interface{}) Parameter {
	rv := reflect.ValueOf(v)
	var t reflect.Type
	if rv.IsValid() {
		t = rv.Type()
	}

	return Parameter{
		kind:  kindTyped,
		typ:   t,
		value: rv,
	}
}

// TypedAs is like Typed but uses t as the parameter type. v must be
// assignable to t, otherwise this panics.
func TypedAs(t reflect.Type, v interface{}) Parameter {
	rv := reflect.ValueOf(v)
	if !assignable(rv, t) {
		panic(fmt.Sprintf("autowire: TypedAs value of type %T is not assignable to %s", v, t))
	}

	return Parameter{
		kind:  kindTyped,
		typ:   t,
		value: valueFor(rv, t),
	}
}

// Positional specifies a parameter by its index in the constructor
// parameter list.
//
// Positional parameters are brittle: reordering the constructor silently
// changes their meaning. A positional parameter whose index doesn't exist
// fails with ErrPositionOutOfRange and one whose value doesn't fit the
// parameter at that index fails with ErrParameterTypeMismatch, so such
// changes are at least detected. Prefer Named or a bound factory.
func Positional(idx int, v interface{}) Parameter {
	return Parameter{
		kind:  kindPositional,
		index: idx,
		value: reflect.ValueOf(v),
	}
}

// Resolved specifies a parameter with a predicate and a value function.
// match is called for each constructor parameter that wasn't satisfied by
// a higher priority parameter; the first Resolved parameter to match
// supplies the value by calling fn.
func Resolved(match MatchFunc, fn ValueFunc) Parameter {
	return Parameter{
		kind:  kindResolved,
		match: match,
		fn:    fn,
	}
}

func (p Parameter) validateResolved() error {
	if p.match == nil || p.fn == nil {
		return fmt.Errorf("resolved parameter needs both a match and a value function")
	}

	return nil
}

func (p Parameter) String() string {
	switch p.kind {
	case kindNamed:
		return fmt.Sprintf("named %q", p.name)
	case kindTyped:
		return fmt.Sprintf("typed %s", p.typ)
	case kindPositional:
		return fmt.Sprintf("positional %d", p.index)
	default:
		return p.kind.String()
	}
}

// Parameters is a list of parameters given to Resolve. It is passed to
// factory registrations so they can read resolution-time values.
type Parameters []Parameter

// Named returns the value of the named parameter n, if present.
func (ps Parameters) Named(n string) (interface{}, bool) {
	for _, p := range ps {
		if p.kind == kindNamed && p.name == n {
			return interfaceOf(p.value), true
		}
	}

	return nil, false
}

// Typed returns the value of the single typed parameter assignable to t, if
// present. If more than one matches, the first is returned.
func (ps Parameters) Typed(t reflect.Type) (interface{}, bool) {
	for _, p := range ps {
		if p.kind == kindTyped && p.typ != nil && p.typ.AssignableTo(t) {
			return interfaceOf(p.value), true
		}
	}

	return nil, false
}

// Positional returns the value of the positional parameter idx, if present.
func (ps Parameters) Positional(idx int) (interface{}, bool) {
	for _, p := range ps {
		if p.kind == kindPositional && p.index == idx {
			return interfaceOf(p.value), true
		}
	}

	return nil, false
}

// NamedValue returns the named parameter n as a T. It fails with
// ErrUnresolvedParameter if the parameter is missing and
// ErrParameterTypeMismatch if the value is not a T.
func NamedValue[T any](ps Parameters, n string) (T, error) {
	v, ok := ps.Named(n)
	return parameterValue[T](v, ok, fmt.Sprintf("named %q", n))
}

// TypedValue returns the typed parameter assignable to T.
func TypedValue[T any](ps Parameters) (T, error) {
	t := TypeOf[T]()
	v, ok := ps.Typed(t)
	return parameterValue[T](v, ok, fmt.Sprintf("typed %s", t))
}

// PositionalValue returns the positional parameter idx as a T.
func PositionalValue[T any](ps Parameters, idx int) (T, error) {
	v, ok := ps.Positional(idx)
	return parameterValue[T](v, ok, fmt.Sprintf("positional %d", idx))
}

func parameterValue[T any](v interface{}, ok bool, desc string) (T, error) {
	var zero T
	if !ok {
		return zero, &ResolveError{Err: ErrUnresolvedParameter, Detail: desc}
	}
	if v == nil && assignable(reflect.Value{}, TypeOf[T]()) {
		return zero, nil
	}

	result, ok := v.(T)
	if !ok {
		return zero, &ResolveError{
			Err:    ErrParameterTypeMismatch,
			Detail: fmt.Sprintf("%s is %T, expected %s", desc, v, TypeOf[T]()),
		}
	}

	return result, nil
}

func interfaceOf(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}

	return v.Interface()
}

// TypeOf returns the reflect.Type of T. Unlike reflect.TypeOf, this works
// for interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

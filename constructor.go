// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package autowire

import (
	"fmt"
	"reflect"
)

// In can be embedded in a struct that is the only argument of a constructor
// to have every exported field of the struct treated as a named parameter.
// Go reflection doesn't expose function parameter names, so this is the way
// to get named matching without the ParamNames option.
//
// The parameter name is the field name. It can be changed with a struct tag:
//
//	func NewSMSLog(in struct {
//		autowire.In
//
//		Phone string `autowire:"phoneNumber"`
//	}) *SMSLog
//
// Parameter names are matched exactly, including case.
type In struct{}

// Param describes a single parameter of a constructor.
type Param struct {
	// Name is the parameter name. This is empty for flat
	// constructors registered without ParamNames.
	Name string

	// Type is the declared type of the parameter.
	Type reflect.Type

	// Index is the position of the parameter: the argument index for flat
	// constructors, or the exported field order for In structs.
	Index int
}

func (p Param) String() string {
	if p.Name == "" {
		return fmt.Sprintf("%d (%s)", p.Index, p.Type)
	}

	return fmt.Sprintf("%d (%s %s)", p.Index, p.Name, p.Type)
}

// constructor is the descriptor built once at registration time from a
// constructor function. Resolution only ever reads it.
type constructor struct {
	fn     reflect.Value
	params []Param
	out    reflect.Type
	hasErr bool

	// inStruct is set when the constructor takes a single In struct.
	// fields maps each param index to the struct field index.
	inStruct reflect.Type
	fields   []int
}

func newConstructor(f interface{}) (*constructor, error) {
	if f == nil {
		return nil, fmt.Errorf("constructor should be a function, got nil")
	}

	fv := reflect.ValueOf(f)
	ft := fv.Type()
	if k := ft.Kind(); k != reflect.Func {
		return nil, fmt.Errorf("constructor should be a function, got %s", k)
	}
	if ft.IsVariadic() {
		return nil, fmt.Errorf("constructor %s can't be variadic", ft)
	}

	// We accept exactly one result, optionally followed by an error.
	result := &constructor{fn: fv}
	switch {
	case ft.NumOut() == 1 && ft.Out(0) != errType:
		result.out = ft.Out(0)

	case ft.NumOut() == 2 && ft.Out(1) == errType:
		result.out = ft.Out(0)
		result.hasErr = true

	default:
		return nil, fmt.Errorf(
			"constructor %s must return one value, optionally followed by an error", ft)
	}

	if ft.NumIn() == 1 && isInStruct(ft.In(0)) {
		result.inStruct = ft.In(0)
		st := ft.In(0)
		for i := 0; i < st.NumField(); i++ {
			sf := st.Field(i)

			// Ignore unexported fields and our struct marker
			if sf.PkgPath != "" || sf.Type == inType {
				continue
			}

			name := sf.Name
			if tag := sf.Tag.Get("autowire"); tag != "" {
				name = tag
			}

			result.fields = append(result.fields, i)
			result.params = append(result.params, Param{
				Name:  name,
				Type:  sf.Type,
				Index: len(result.params),
			})
		}

		return result, nil
	}

	for i := 0; i < ft.NumIn(); i++ {
		result.params = append(result.params, Param{
			Type:  ft.In(i),
			Index: i,
		})
	}

	return result, nil
}

// setNames assigns names to the parameters of a flat constructor.
func (c *constructor) setNames(names []string) error {
	if c.inStruct != nil {
		return fmt.Errorf("ParamNames can't be used with an In struct constructor, use struct tags")
	}
	if len(names) != len(c.params) {
		return fmt.Errorf(
			"ParamNames got %d names but the constructor has %d parameters",
			len(names), len(c.params))
	}

	for i, n := range names {
		c.params[i].Name = n
	}

	return nil
}

// call invokes the constructor with args in param order.
func (c *constructor) call(args []reflect.Value) (reflect.Value, error) {
	in := args
	if c.inStruct != nil {
		sv := reflect.New(c.inStruct).Elem()
		for i, arg := range args {
			sv.Field(c.fields[i]).Set(arg)
		}

		in = []reflect.Value{sv}
	}

	out := c.fn.Call(in)
	if c.hasErr {
		if err, _ := out[1].Interface().(error); err != nil {
			return reflect.Value{}, err
		}
	}

	return out[0], nil
}

func (c *constructor) String() string {
	return c.fn.Type().String()
}

// isInStruct returns true if t is a struct embedding In.
func isInStruct(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.Anonymous && f.Type == inType {
			return true
		}
	}

	return false
}

// assignable reports whether v can be used for a parameter of type t. An
// invalid value (from a nil interface) can be used for any nillable type.
func assignable(v reflect.Value, t reflect.Type) bool {
	if !v.IsValid() {
		switch t.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
			return true
		}

		return false
	}

	return v.Type().AssignableTo(t)
}

// valueFor returns v in a form that can be set on a parameter of type t.
// assignable must have returned true.
func valueFor(v reflect.Value, t reflect.Type) reflect.Value {
	if !v.IsValid() {
		return reflect.Zero(t)
	}

	if v.Type() != t {
		converted := reflect.New(t).Elem()
		converted.Set(v)
		return converted
	}

	return v
}

var (
	errType = reflect.TypeOf((*error)(nil)).Elem()
	inType  = reflect.TypeOf(In{})
)

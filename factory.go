// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package autowire

import (
	"fmt"
	"reflect"
)

// BindFactory returns a function of type F that resolves a service every
// time it is called. F must be a function type returning a registered
// service, optionally followed by an error:
//
//	type DomainObjectFactory = func(value int) *DomainObject
//	factory, err := autowire.BindFactory[DomainObjectFactory](c)
//	obj := factory(23)
//
// The arguments of F are given to the resolution as parameters, while all
// other dependencies of the service are resolved as usual on every call.
// Without names, each argument is a Typed parameter of the argument's
// declared type, so two arguments can't share a type. With names (one per
// argument) each argument is a Named parameter instead.
//
// If F has no error result, a failed resolution panics with an error
// wrapping the failure. When the factory was injected into a constructor and
// is called by it, the panic is recovered and Resolve returns the failure.
//
// Resolving a function type, or depending on one, binds a factory without
// names in the same way.
func BindFactory[F any](c *Container, names ...string) (F, error) {
	var zero F
	fn, err := c.bindFactory(TypeOf[F](), names, nil)
	if err != nil {
		return zero, err
	}

	return fn.Interface().(F), nil
}

// BindFactory is the non-generic form of BindFactory. The result is a
// function of type fnType.
func (c *Container) BindFactory(fnType reflect.Type, names ...string) (interface{}, error) {
	fn, err := c.bindFactory(fnType, names, nil)
	if err != nil {
		return nil, err
	}

	return fn.Interface(), nil
}

// bindFactory creates the factory function. If parent is set, the factory
// was injected into a service being constructed: calls made while parent
// still has services in progress continue its stack, so a cycle through the
// factory is reported instead of recursing forever.
func (c *Container) bindFactory(fnType reflect.Type, names []string, parent *resolveState) (reflect.Value, error) {
	out, hasErr, err := factoryType(fnType)
	if err != nil {
		return reflect.Value{}, err
	}

	if _, ok := c.services[out]; !ok {
		return reflect.Value{}, &ResolveError{
			Err:     ErrUnregisteredService,
			Service: out,
			Detail:  fmt.Sprintf("result of factory %s", fnType),
		}
	}

	if len(names) > 0 && len(names) != fnType.NumIn() {
		return reflect.Value{}, fmt.Errorf(
			"factory %s has %d arguments but %d names were given",
			fnType, fnType.NumIn(), len(names))
	}

	if len(names) == 0 {
		seen := make(map[reflect.Type]struct{})
		for i := 0; i < fnType.NumIn(); i++ {
			if _, ok := seen[fnType.In(i)]; ok {
				return reflect.Value{}, &ResolveError{
					Err:     ErrAmbiguousParameter,
					Service: out,
					Detail: fmt.Sprintf(
						"factory %s has more than one %s argument; name the arguments",
						fnType, fnType.In(i)),
				}
			}

			seen[fnType.In(i)] = struct{}{}
		}
	}

	names = append([]string(nil), names...)
	c.logger.Trace("bound factory", "factory", fnType.String(), "service", out.String())
	return reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		params := make(Parameters, len(args))
		for i, arg := range args {
			if len(names) > 0 {
				params[i] = Parameter{kind: kindNamed, name: names[i], value: arg}
			} else {
				params[i] = Parameter{kind: kindTyped, typ: fnType.In(i), value: arg}
			}
		}

		state := &resolveState{}
		if parent != nil {
			state.stack = append(state.stack, parent.stack...)
		}

		v, err := c.resolve(state, out, params)
		if err != nil {
			if !hasErr {
				panic(&factoryPanic{err: err})
			}

			return []reflect.Value{reflect.Zero(out), reflect.ValueOf(&err).Elem()}
		}

		result := valueFor(reflect.ValueOf(v), out)
		if hasErr {
			return []reflect.Value{result, reflect.Zero(errType)}
		}

		return []reflect.Value{result}
	}), nil
}

// factoryPanic is the panic value of a bound factory without an error
// result. Resolution recovers it from constructors and factory registrations
// that call the factory and returns the error instead.
type factoryPanic struct {
	err error
}

func (p *factoryPanic) Error() string { return p.err.Error() }
func (p *factoryPanic) Unwrap() error { return p.err }

// recoverFactoryPanic turns a factoryPanic raised during fn into an error.
// Any other panic is re-raised.
func recoverFactoryPanic(fn func() (interface{}, error)) (result interface{}, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		fp, ok := r.(*factoryPanic)
		if !ok {
			panic(r)
		}

		result, err = nil, fp.err
	}()

	return fn()
}

// factoryType validates that t can be used as a factory function type and
// returns the service type it produces.
func factoryType(t reflect.Type) (reflect.Type, bool, error) {
	if t == nil || t.Kind() != reflect.Func {
		return nil, false, fmt.Errorf("factory should be a function type, got %v", t)
	}
	if t.IsVariadic() {
		return nil, false, fmt.Errorf("factory %s can't be variadic", t)
	}

	switch {
	case t.NumOut() == 1 && t.Out(0) != errType:
		return t.Out(0), false, nil

	case t.NumOut() == 2 && t.Out(1) == errType:
		return t.Out(0), true, nil

	default:
		return nil, false, fmt.Errorf(
			"factory %s must return one value, optionally followed by an error", t)
	}
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package autowire

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/hashicorp/go-autowire/internal/graph"
	"github.com/hashicorp/go-hclog"
)

// Container resolves services from the registrations of a built Registry.
//
// A Container is immutable and safe for concurrent use. Every resolution
// constructs new instances: the container never caches or holds a
// reference to anything it returns.
type Container struct {
	logger   hclog.Logger
	services map[reflect.Type]*Registration
	graph    *graph.Graph
}

// Resolve constructs the service t.
//
// For constructor registrations, each constructor parameter is satisfied by
// the first of:
//
//  1. a Named parameter given here with the same name
//  2. the single Typed parameter given here assignable to the parameter type
//  3. a Positional parameter given here with the parameter's index
//  4. the first Resolved parameter given here that matches
//  5. a parameter attached with WithParameter, named first, then typed,
//     Resolved and finally positional
//  6. the registered service of the parameter type, resolved without
//     parameters
//  7. a factory function, if the parameter type is a function returning a
//     registered service (see BindFactory)
//
// Parameters given here only apply to t itself, not to its dependencies.
// Factory registrations receive params as-is.
//
// If t is a function type returning a registered service, Resolve returns
// a bound factory even if t isn't registered itself.
//
// Errors are *ResolveError values wrapping one of the Err* sentinels, or
// the error returned by a constructor or factory.
func (c *Container) Resolve(t reflect.Type, params ...Parameter) (interface{}, error) {
	return c.resolve(&resolveState{}, t, params)
}

// Resolve resolves the service T from r, which may be a Container or, inside
// a factory or Resolved parameter, a Context.
func Resolve[T any](r Resolver, params ...Parameter) (T, error) {
	var zero T
	raw, err := r.Resolve(TypeOf[T](), params...)
	if err != nil {
		return zero, err
	}
	if raw == nil {
		return zero, nil
	}

	result, ok := raw.(T)
	if !ok {
		return zero, &ResolveError{
			Err:     ErrParameterTypeMismatch,
			Service: TypeOf[T](),
			Detail:  fmt.Sprintf("resolved value has type %T", raw),
		}
	}

	return result, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](r Resolver, params ...Parameter) T {
	result, err := Resolve[T](r, params...)
	if err != nil {
		panic(err)
	}

	return result
}

// IsRegistered returns true if t has a registration.
func (c *Container) IsRegistered(t reflect.Type) bool {
	_, ok := c.services[t]
	return ok
}

// Services returns every registered service type, sorted by name.
func (c *Container) Services() []reflect.Type {
	result := make([]reflect.Type, 0, len(c.services))
	for t := range c.services {
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].String() < result[j].String()
	})
	return result
}

// String returns the service dependency graph in a human-friendly format.
func (c *Container) String() string {
	return c.graph.String()
}

func (c *Container) resolve(state *resolveState, t reflect.Type, params Parameters) (interface{}, error) {
	if t == nil {
		return nil, &ResolveError{Err: ErrUnregisteredService, Detail: "nil service type"}
	}

	reg, ok := c.services[t]
	if !ok {
		if t.Kind() == reflect.Func {
			fn, err := c.bindFactory(t, nil, state)
			if err != nil {
				return nil, err
			}

			return fn.Interface(), nil
		}

		return nil, &ResolveError{
			Err:     ErrUnregisteredService,
			Service: t,
			Path:    state.path(t),
		}
	}

	if state.contains(t) {
		return nil, &ResolveError{
			Err:     ErrCircularDependency,
			Service: t,
			Path:    state.path(t),
		}
	}

	state.stack = append(state.stack, t)
	defer func() { state.stack = state.stack[:len(state.stack)-1] }()

	ctx := &Context{
		container: c,
		logger:    c.logger.Named(t.String()),
		service:   t,
		params:    params,
		state:     state,
	}
	ctx.logger.Trace("resolving", "registration", reg.String(), "params", len(params))

	if reg.factory != nil {
		return recoverFactoryPanic(func() (interface{}, error) {
			return c.callFactory(ctx, reg)
		})
	}

	args, err := c.resolveParams(ctx, reg)
	if err != nil {
		return nil, err
	}

	return recoverFactoryPanic(func() (interface{}, error) {
		v, err := reg.ctor.call(args)
		if err != nil {
			return nil, fmt.Errorf("autowire: constructing %s: %w", t, err)
		}

		return v.Interface(), nil
	})
}

func (c *Container) callFactory(ctx *Context, reg *Registration) (interface{}, error) {
	t := ctx.service
	v, err := reg.factory(ctx, ctx.params)
	if err != nil {
		var rerr *ResolveError
		if errors.As(err, &rerr) {
			return nil, err
		}

		return nil, fmt.Errorf("autowire: factory for %s: %w", t, err)
	}

	if v == nil {
		return nil, fmt.Errorf("autowire: factory for %s returned nil", t)
	}
	if vt := reflect.TypeOf(v); !vt.AssignableTo(t) {
		return nil, &ResolveError{
			Err:     ErrParameterTypeMismatch,
			Service: t,
			Path:    ctx.Path(),
			Detail:  fmt.Sprintf("factory returned %s", vt),
		}
	}

	return v, nil
}

// active returns the registrations that serve at least one service, in
// registration order.
func (c *Container) active() []*Registration {
	seen := make(map[*Registration]struct{})
	var result []*Registration
	for _, reg := range c.services {
		if _, ok := seen[reg]; ok {
			continue
		}

		seen[reg] = struct{}{}
		result = append(result, reg)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].seq < result[j].seq })
	return result
}

// canResolve returns true if t is a registered service or a factory
// function type for one.
func (c *Container) canResolve(t reflect.Type) bool {
	if _, ok := c.services[t]; ok {
		return true
	}

	out, _, err := factoryType(t)
	if err != nil {
		return false
	}

	_, ok := c.services[out]
	return ok
}

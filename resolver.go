// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package autowire

import (
	"fmt"
	"reflect"
)

// parameterSource is where a set of parameters came from. Each source has
// its own priority order for parameter kinds.
type parameterSource struct {
	name   string
	params Parameters
	order  []parameterKind

	// strictTyped makes more than one Typed match an error instead of
	// taking the first.
	strictTyped bool
}

var (
	resolutionOrder   = []parameterKind{kindNamed, kindTyped, kindPositional, kindResolved}
	registrationOrder = []parameterKind{kindNamed, kindTyped, kindResolved, kindPositional}
)

// resolveParams returns the argument values for every constructor
// parameter of reg, in order.
func (c *Container) resolveParams(ctx *Context, reg *Registration) ([]reflect.Value, error) {
	params := reg.ctor.params

	// Check resolution-time parameters before resolving anything so a
	// reordered constructor is reported as such rather than as whatever
	// the first parameter happens to fail with.
	for _, p := range ctx.params {
		switch p.kind {
		case kindResolved:
			if err := p.validateResolved(); err != nil {
				return nil, &ResolveError{
					Err:     ErrUnresolvedParameter,
					Service: ctx.service,
					Path:    ctx.Path(),
					Detail:  err.Error(),
				}
			}

		case kindPositional:
			if p.index < 0 || p.index >= len(params) {
				return nil, &ResolveError{
					Err:     ErrPositionOutOfRange,
					Service: ctx.service,
					Path:    ctx.Path(),
					Detail:  fmt.Sprintf("%s but the constructor has %d parameters", p, len(params)),
				}
			}

			if cp := params[p.index]; !assignable(p.value, cp.Type) {
				return nil, ctx.mismatch(cp, p)
			}
		}
	}

	sources := []parameterSource{
		{name: "resolution", params: ctx.params, order: resolutionOrder, strictTyped: true},
		{name: "registration", params: reg.params, order: registrationOrder},
	}

	args := make([]reflect.Value, len(params))
	for i, cp := range params {
		v, err := c.resolveParam(ctx, sources, cp)
		if err != nil {
			return nil, err
		}

		args[i] = valueFor(v, cp.Type)
	}

	return args, nil
}

// resolveParam finds the value for a single constructor parameter.
func (c *Container) resolveParam(ctx *Context, sources []parameterSource, cp Param) (reflect.Value, error) {
	log := ctx.logger.With("param", cp.String())

	for _, src := range sources {
		for _, kind := range src.order {
			v, ok, err := ctx.match(src, kind, cp)
			if err != nil {
				return reflect.Value{}, err
			}
			if ok {
				log.Trace("parameter satisfied", "source", src.name, "kind", kind.String())
				return v, nil
			}
		}
	}

	if _, ok := c.services[cp.Type]; ok {
		log.Trace("resolving parameter as a service")
		v, err := c.resolve(ctx.state, cp.Type, nil)
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(v), nil
	}

	if c.canResolve(cp.Type) {
		log.Trace("binding parameter as a factory")
		return c.bindFactory(cp.Type, nil, ctx.state)
	}

	return reflect.Value{}, &ResolveError{
		Err:     ErrUnresolvedParameter,
		Service: ctx.service,
		Param:   &cp,
		Path:    ctx.Path(),
	}
}

// match looks for a parameter of the given kind in src that satisfies cp.
func (ctx *Context) match(src parameterSource, kind parameterKind, cp Param) (reflect.Value, bool, error) {
	switch kind {
	case kindNamed:
		if cp.Name == "" {
			return reflect.Value{}, false, nil
		}

		for _, p := range src.params {
			if p.kind != kindNamed || p.name != cp.Name {
				continue
			}

			if !assignable(p.value, cp.Type) {
				return reflect.Value{}, false, ctx.mismatch(cp, p)
			}

			return p.value, true, nil
		}

	case kindTyped:
		var found []Parameter
		for _, p := range src.params {
			if p.kind == kindTyped && p.typ != nil && p.typ.AssignableTo(cp.Type) {
				found = append(found, p)
			}
		}

		if len(found) > 1 && src.strictTyped {
			return reflect.Value{}, false, &ResolveError{
				Err:     ErrAmbiguousParameter,
				Service: ctx.service,
				Param:   &cp,
				Path:    ctx.Path(),
				Detail:  fmt.Sprintf("%d typed parameters match", len(found)),
			}
		}
		if len(found) > 0 {
			return found[0].value, true, nil
		}

	case kindPositional:
		for _, p := range src.params {
			if p.kind != kindPositional || p.index != cp.Index {
				continue
			}

			if !assignable(p.value, cp.Type) {
				return reflect.Value{}, false, ctx.mismatch(cp, p)
			}

			return p.value, true, nil
		}

	case kindResolved:
		for _, p := range src.params {
			if p.kind != kindResolved || !p.match(cp, ctx) {
				continue
			}

			v := reflect.ValueOf(p.fn(cp, ctx))
			if !assignable(v, cp.Type) {
				return reflect.Value{}, false, &ResolveError{
					Err:     ErrParameterTypeMismatch,
					Service: ctx.service,
					Param:   &cp,
					Path:    ctx.Path(),
					Detail:  fmt.Sprintf("resolved parameter returned %s", typeString(v)),
				}
			}

			return v, true, nil
		}
	}

	return reflect.Value{}, false, nil
}

func (ctx *Context) mismatch(cp Param, p Parameter) error {
	return &ResolveError{
		Err:     ErrParameterTypeMismatch,
		Service: ctx.service,
		Param:   &cp,
		Path:    ctx.Path(),
		Detail:  fmt.Sprintf("%s has type %s", p, typeString(p.value)),
	}
}

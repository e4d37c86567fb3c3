// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package autowire

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-multierror"
)

// FactoryFunc constructs a service directly, bypassing constructor
// parameter resolution. ctx can be used to resolve other services and p
// holds the parameters given to Resolve.
type FactoryFunc func(ctx *Context, p Parameters) (interface{}, error)

// Registration is a single registered component: either a constructor with
// its parameter descriptor or a factory function, plus the service types it
// satisfies and the parameters attached at registration time.
type Registration struct {
	ctor     *constructor
	factory  FactoryFunc
	services []reflect.Type
	params   Parameters
	names    []string

	// seq is the registration order, used for last-wins decisions.
	seq int
}

// Services returns the service types this registration satisfies.
func (r *Registration) Services() []reflect.Type {
	return append([]reflect.Type(nil), r.services...)
}

// Params returns the constructor parameter descriptors. This is nil for
// factory registrations.
func (r *Registration) Params() []Param {
	if r.ctor == nil {
		return nil
	}

	return append([]Param(nil), r.ctor.params...)
}

// IsFactory returns true if this registration was made with RegisterFactory.
func (r *Registration) IsFactory() bool {
	return r.factory != nil
}

func (r *Registration) String() string {
	if r.ctor != nil {
		return fmt.Sprintf("constructor %s", r.ctor)
	}

	return fmt.Sprintf("factory for %s", r.services[0])
}

// RegisterOption configures a registration made with Register.
type RegisterOption func(*Registration) error

// As sets the service types the component is exposed as. The constructor's
// result must be assignable to every type. Without As, the component is
// exposed as its own type.
func As(types ...reflect.Type) RegisterOption {
	return func(r *Registration) error {
		r.services = append(r.services, types...)
		return nil
	}
}

// AsType is As for a single type given as a type parameter:
//
//	r.Register(NewSMSLog, autowire.AsType[Log]())
func AsType[T any]() RegisterOption {
	return As(TypeOf[T]())
}

// WithParameter attaches parameters that are evaluated every time the
// component is resolved.
func WithParameter(ps ...Parameter) RegisterOption {
	return func(r *Registration) error {
		r.params = append(r.params, ps...)
		return nil
	}
}

// ParamNames names the parameters of a flat constructor, in order, so that
// Named parameters can match them.
func ParamNames(names ...string) RegisterOption {
	return func(r *Registration) error {
		r.names = names
		return nil
	}
}

func newRegistration(ctor interface{}, opts ...RegisterOption) (*Registration, error) {
	c, err := newConstructor(ctor)
	if err != nil {
		return nil, err
	}

	reg := &Registration{ctor: c}
	var buildErr error
	for _, opt := range opts {
		if err := opt(reg); err != nil {
			buildErr = multierror.Append(buildErr, err)
		}
	}
	if buildErr != nil {
		return nil, buildErr
	}

	if reg.names != nil {
		if err := c.setNames(reg.names); err != nil {
			return nil, err
		}
	}

	if len(reg.services) == 0 {
		reg.services = []reflect.Type{c.out}
	}

	if err := reg.validate(); err != nil {
		return nil, err
	}

	return reg, nil
}

// validate checks everything about the registration that can be known
// before any resolution happens.
func (r *Registration) validate() error {
	var result error
	for _, t := range r.services {
		if t == nil {
			result = multierror.Append(result, fmt.Errorf("service type can't be nil"))
			continue
		}

		if !r.ctor.out.AssignableTo(t) {
			result = multierror.Append(result, fmt.Errorf(
				"%s is not assignable to service type %s", r.ctor.out, t))
		}
	}

	params := r.ctor.params
	for _, p := range r.params {
		switch p.kind {
		case kindNamed:
			for _, cp := range params {
				if cp.Name == p.name && !assignable(p.value, cp.Type) {
					result = multierror.Append(result, &ResolveError{
						Err:     ErrParameterTypeMismatch,
						Service: r.ctor.out,
						Param:   &cp,
						Detail:  fmt.Sprintf("%s has type %s", p, typeString(p.value)),
					})
				}
			}

		case kindPositional:
			if p.index < 0 || p.index >= len(params) {
				result = multierror.Append(result, &ResolveError{
					Err:     ErrPositionOutOfRange,
					Service: r.ctor.out,
					Detail: fmt.Sprintf(
						"%s but the constructor has %d parameters", p, len(params)),
				})
				continue
			}

			if cp := params[p.index]; !assignable(p.value, cp.Type) {
				result = multierror.Append(result, &ResolveError{
					Err:     ErrParameterTypeMismatch,
					Service: r.ctor.out,
					Param:   &cp,
					Detail:  fmt.Sprintf("%s has type %s", p, typeString(p.value)),
				})
			}

		case kindTyped:
			if p.typ == nil {
				result = multierror.Append(result, fmt.Errorf("typed parameter can't be nil"))
			}

		case kindResolved:
			if err := p.validateResolved(); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}

	return result
}

// covers reports whether one of the registration-time parameters could
// satisfy cp. Resolved parameters can't be evaluated without a Context so
// any Resolved parameter is assumed to cover it.
func (r *Registration) covers(cp Param) bool {
	for _, p := range r.params {
		switch p.kind {
		case kindNamed:
			if cp.Name != "" && p.name == cp.Name {
				return true
			}

		case kindTyped:
			if p.typ.AssignableTo(cp.Type) {
				return true
			}

		case kindPositional:
			if p.index == cp.Index {
				return true
			}

		case kindResolved:
			return true
		}
	}

	return false
}

func typeString(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}

	return v.Type().String()
}

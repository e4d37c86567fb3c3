// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package autowire

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// DuplicatePolicy determines what Build does when more than one
// constructor registration claims the same service type.
type DuplicatePolicy uint8

const (
	// DuplicateReject fails Build with ErrAmbiguousRegistration.
	DuplicateReject DuplicatePolicy = iota

	// DuplicateLastWins uses the most recent registration.
	DuplicateLastWins
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateReject:
		return "reject"
	case DuplicateLastWins:
		return "last-wins"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", uint8(p))
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used by the registry and every container
// built from it. The default is hclog.L().
func WithLogger(l hclog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithDuplicatePolicy sets the DuplicatePolicy. The default is
// DuplicateReject.
func WithDuplicatePolicy(p DuplicatePolicy) RegistryOption {
	return func(r *Registry) {
		r.policy = p
	}
}

// Registry collects registrations. Once Build is called the registry is
// read-only and further registrations fail with ErrRegistryBuilt.
type Registry struct {
	mu            sync.Mutex
	logger        hclog.Logger
	policy        DuplicatePolicy
	registrations []*Registration
	built         bool
}

// NewRegistry returns an empty, open Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger: hclog.L(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.logger = r.logger.Named("autowire")
	return r
}

// Register registers a constructor. The constructor must be a function
// returning one value, optionally followed by an error. Its parameters are
// satisfied on every resolution using parameters and other registrations;
// see Container.Resolve for the exact order.
func (r *Registry) Register(ctor interface{}, opts ...RegisterOption) error {
	reg, err := newRegistration(ctor, opts...)
	if err != nil {
		return err
	}

	return r.add(reg)
}

// RegisterFactory registers fn as the way to construct serviceType. The
// factory is called on every resolution with the resolution-time parameters.
func (r *Registry) RegisterFactory(serviceType reflect.Type, fn FactoryFunc) error {
	if serviceType == nil {
		return fmt.Errorf("service type can't be nil")
	}
	if fn == nil {
		return fmt.Errorf("factory for %s can't be nil", serviceType)
	}

	return r.add(&Registration{
		factory:  fn,
		services: []reflect.Type{serviceType},
	})
}

// ProvideFactory is RegisterFactory with the service type given as a type
// parameter.
func ProvideFactory[T any](r *Registry, fn func(ctx *Context, p Parameters) (T, error)) error {
	return r.RegisterFactory(TypeOf[T](), func(ctx *Context, p Parameters) (interface{}, error) {
		return fn(ctx, p)
	})
}

func (r *Registry) add(reg *Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.built {
		return fmt.Errorf("registering %s: %w", reg, ErrRegistryBuilt)
	}

	reg.seq = len(r.registrations)
	r.registrations = append(r.registrations, reg)
	r.logger.Trace("registered", "registration", reg.String(), "services", reg.services)
	return nil
}

// Build validates the registrations and returns a Container. After Build
// the registry is read-only. Build can be called more than once; each call
// returns an independent Container with the same behavior.
//
// Build reports every problem it finds at once:
//
//   - ErrAmbiguousRegistration for duplicate constructor registrations
//     when the policy is DuplicateReject.
//   - ErrUnresolvedParameter for a service-typed parameter (an interface,
//     a pointer, or a factory function type) that no registration-time
//     parameter covers and that is not a registered service.
//
// Other parameter types, such as strings and numbers, are expected to be
// given at resolution time and are not validated.
func (r *Registry) Build() (*Container, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	services, err := r.services()
	if err != nil {
		return nil, err
	}

	c := &Container{
		logger:   r.logger,
		services: services,
	}

	var result error
	for _, reg := range c.active() {
		if reg.ctor == nil {
			continue
		}

		for _, p := range reg.ctor.params {
			if reg.covers(p) || !isServiceType(p.Type) || c.canResolve(p.Type) {
				continue
			}

			result = multierror.Append(result, &ResolveError{
				Err:     ErrUnresolvedParameter,
				Service: reg.ctor.out,
				Param:   &p,
				Detail:  fmt.Sprintf("%s is not a registered service", p.Type),
			})
		}
	}
	if result != nil {
		return nil, result
	}

	c.graph = c.dependencyGraph()
	r.logger.Trace("dependency graph", "graph", c.graph.String())
	if _, err := c.graph.KahnSort(); err != nil {
		r.logger.Warn("dependency cycle; resolution will fail unless a parameter breaks it",
			"error", err)
	}

	r.built = true
	r.logger.Debug("container built",
		"registrations", len(r.registrations),
		"services", c.graph.Len(),
		"policy", r.policy.String())
	return c, nil
}

// services maps every service type to the registration that will serve it.
func (r *Registry) services() (map[reflect.Type]*Registration, error) {
	result := make(map[reflect.Type]*Registration)
	claims := make(map[reflect.Type][]*Registration)
	var order []reflect.Type

	for _, reg := range r.registrations {
		for _, t := range reg.services {
			if _, ok := claims[t]; !ok {
				order = append(order, t)
			}

			claims[t] = append(claims[t], reg)
		}
	}

	var err error
	for _, t := range order {
		var ctor, factory *Registration
		var ctorCount int
		for _, reg := range claims[t] {
			if reg.factory != nil {
				factory = reg
				continue
			}

			ctor = reg
			ctorCount++
		}

		switch {
		case factory != nil:
			result[t] = factory

		case ctorCount > 1 && r.policy == DuplicateReject:
			err = multierror.Append(err, &ResolveError{
				Err:     ErrAmbiguousRegistration,
				Service: t,
				Detail:  fmt.Sprintf("%d constructor registrations", ctorCount),
			})

		default:
			if ctorCount > 1 {
				r.logger.Debug("last registration wins", "service", t, "registration", ctor.String())
			}

			result[t] = ctor
		}
	}

	return result, err
}

// isServiceType returns true for types that Build expects to come from a
// registration rather than from a resolution-time parameter.
func isServiceType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Func:
		return true
	default:
		return false
	}
}

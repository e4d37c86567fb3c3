// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package autowire

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrUnregisteredService is returned when the requested service type
	// has no registration.
	ErrUnregisteredService = errors.New("service is not registered")

	// ErrAmbiguousRegistration is returned by Build when more than one
	// constructor registration claims the same service type and the
	// registry rejects duplicates.
	ErrAmbiguousRegistration = errors.New("service has more than one registration")

	// ErrAmbiguousParameter is returned when more than one resolution-time
	// parameter matches a constructor parameter by type alone.
	ErrAmbiguousParameter = errors.New("more than one parameter matches by type")

	// ErrParameterTypeMismatch is returned when a named or positional
	// parameter matches but its value can't be assigned to the declared type.
	ErrParameterTypeMismatch = errors.New("parameter value is not assignable to the declared type")

	// ErrPositionOutOfRange is returned when a positional parameter index
	// doesn't exist on the constructor.
	ErrPositionOutOfRange = errors.New("positional parameter index is out of range")

	// ErrUnresolvedParameter is returned when no parameter, registration or
	// factory can supply a constructor parameter.
	ErrUnresolvedParameter = errors.New("parameter cannot be satisfied")

	// ErrCircularDependency is returned when a service depends on itself,
	// directly or through other services.
	ErrCircularDependency = errors.New("circular dependency")

	// ErrRegistryBuilt is returned when registering into a Registry that
	// was already built.
	ErrRegistryBuilt = errors.New("registry has already been built")
)

// ResolveError is the error returned when resolving a service fails. Use
// errors.Is with the Err* values to determine the kind of failure.
type ResolveError struct {
	// Err is one of the Err* sentinel values.
	Err error

	// Service is the service type being constructed when the error occurred.
	Service reflect.Type

	// Param is the constructor parameter that failed, if any.
	Param *Param

	// Path is the chain of services in progress, outermost first.
	Path []reflect.Type

	// Detail is additional human-friendly context.
	Detail string
}

func (e *ResolveError) Error() string {
	var buf strings.Builder
	buf.WriteString("autowire: ")
	if e.Service != nil {
		fmt.Fprintf(&buf, "resolving %s: ", e.Service)
	}
	if e.Param != nil {
		fmt.Fprintf(&buf, "parameter %s: ", e.Param)
	}
	buf.WriteString(e.Err.Error())
	if e.Detail != "" {
		fmt.Fprintf(&buf, " (%s)", e.Detail)
	}
	if len(e.Path) > 1 {
		fmt.Fprintf(&buf, " [path: %s]", formatPath(e.Path))
	}

	return buf.String()
}

func (e *ResolveError) Unwrap() error { return e.Err }

func formatPath(path []reflect.Type) string {
	names := make([]string, len(path))
	for i, t := range path {
		names[i] = t.String()
	}

	return strings.Join(names, " -> ")
}

var _ error = (*ResolveError)(nil)

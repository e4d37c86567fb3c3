// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package autowire

import (
	"reflect"

	"github.com/hashicorp/go-hclog"
)

// Resolver is implemented by Container and Context.
type Resolver interface {
	Resolve(t reflect.Type, params ...Parameter) (interface{}, error)
}

// Context is the state of a single resolution. It is passed to factory
// functions and Resolved parameters so they can read the resolution-time
// parameters or resolve other services.
//
// A Context is only valid during the call it was passed to.
type Context struct {
	container *Container
	logger    hclog.Logger
	service   reflect.Type
	params    Parameters
	state     *resolveState
}

// resolveState is shared by every Context created during one call to
// Container.Resolve.
type resolveState struct {
	// stack is the list of services currently being constructed,
	// outermost first.
	stack []reflect.Type
}

func (s *resolveState) contains(t reflect.Type) bool {
	for _, v := range s.stack {
		if v == t {
			return true
		}
	}

	return false
}

func (s *resolveState) path(t reflect.Type) []reflect.Type {
	result := make([]reflect.Type, 0, len(s.stack)+1)
	result = append(result, s.stack...)
	if t != nil {
		result = append(result, t)
	}

	return result
}

// Service returns the service type being constructed.
func (ctx *Context) Service() reflect.Type { return ctx.service }

// Parameters returns the resolution-time parameters for this service. These
// are empty for services resolved as dependencies of another service.
func (ctx *Context) Parameters() Parameters { return ctx.params }

// Path returns the services currently being constructed, outermost first.
func (ctx *Context) Path() []reflect.Type { return ctx.state.path(nil) }

// Logger returns the logger for this resolution.
func (ctx *Context) Logger() hclog.Logger { return ctx.logger }

// Resolve resolves another service as part of this resolution. Circular
// dependencies through this call are detected.
func (ctx *Context) Resolve(t reflect.Type, params ...Parameter) (interface{}, error) {
	return ctx.container.resolve(ctx.state, t, params)
}

var (
	_ Resolver = (*Container)(nil)
	_ Resolver = (*Context)(nil)
)

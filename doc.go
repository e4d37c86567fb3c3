// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package autowire is a small dependency-injection container for Go.
//
// Components are registered with a Registry as constructor functions (or
// factory functions), the Registry is built into an immutable Container,
// and the Container constructs services on demand, recursively resolving
// constructor parameters. Every resolution constructs new instances; there
// are no singletons or scopes.
//
// Constructor parameters can be supplied explicitly, either when
// registering (WithParameter) or when resolving, with named, typed,
// positional or predicate-based (Resolved) parameters. Parameters given at
// resolution time always win. A bound factory (BindFactory) produces a
// plain function taking the values the caller wants to supply while the
// container injects the rest.
//
//	r := autowire.NewRegistry()
//	r.Register(NewSMSLog, autowire.AsType[Log](), autowire.ParamNames("phoneNumber"),
//		autowire.WithParameter(autowire.Named("phoneNumber", "+12345678")))
//	r.Register(NewEngine)
//	c, err := r.Build()
//	engine, err := autowire.Resolve[*Engine](c)
package autowire

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package autowire

import (
	"reflect"

	"github.com/hashicorp/go-autowire/internal/graph"
)

// serviceVertex is a service type in the dependency graph.
type serviceVertex struct {
	Type reflect.Type
}

func (v *serviceVertex) Hashcode() interface{} { return v.Type }
func (v *serviceVertex) String() string        { return v.Type.String() }

// dependencyGraph builds the graph of services, with an edge from every
// service to the services its constructor will resolve. Parameters covered
// by registration-time parameters and factory function parameters are not
// edges: neither constructs anything when the service is resolved. Factory
// registrations have no known dependencies.
func (c *Container) dependencyGraph() *graph.Graph {
	var g graph.Graph
	for t := range c.services {
		g.Add(&serviceVertex{Type: t})
	}

	for t, reg := range c.services {
		if reg.ctor == nil {
			continue
		}

		from := g.Vertex(t)
		for _, p := range reg.ctor.params {
			if reg.covers(p) {
				continue
			}

			// Only registered services are vertices.
			if to := g.Vertex(p.Type); to != nil {
				g.AddEdge(from, to)
			}
		}
	}

	return &g
}

var _ graph.VertexHashable = (*serviceVertex)(nil)

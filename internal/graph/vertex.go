package graph

import "fmt"

// Vertex can be anything.
type Vertex interface{}

// VertexHashable is an optional interface that can be implemented to specify
// an alternate hash code for a Vertex. If this isn't implemented, Go interface
// equality is used.
type VertexHashable interface {
	Hashcode() interface{}
}

// VertexName returns the name of a vertex. This uses fmt.Stringer if
// implemented and otherwise the %v representation.
func VertexName(v Vertex) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}

	return fmt.Sprintf("%v", v)
}

// hashcode returns the hashcode for a Vertex.
func hashcode(v interface{}) interface{} {
	if h, ok := v.(VertexHashable); ok {
		return h.Hashcode()
	}

	return v
}

package graph

import (
	"bytes"
	"fmt"
	"sort"
)

// Graph is a directed graph. An edge from v1 to v2 means that v1 depends
// on v2.
//
// Unless otherwise documented, it is unsafe to call any method on Graph concurrently.
type Graph struct {
	// adjacency represents graphs using an adjaency list. Vertices are
	// represented using their hash codes for simpler equaliy checks.
	adjacencyOut map[interface{}]map[interface{}]struct{}
	adjacencyIn  map[interface{}]map[interface{}]struct{}

	// hash maintains the mapping of hash codes to the representative Vertex.
	// It is assumed that two identical hashcodes of v1 and v2 are semantically
	// the same Vertex even if v1 != v2 in Go.
	hash map[interface{}]Vertex
}

// Add adds a vertex to the graph. If a vertex with the same hash code
// already exists, the existing vertex is returned.
func (g *Graph) Add(v Vertex) Vertex {
	g.init()
	h := hashcode(v)
	if existing, ok := g.hash[h]; ok {
		return existing
	}

	g.adjacencyOut[h] = make(map[interface{}]struct{})
	g.adjacencyIn[h] = make(map[interface{}]struct{})
	g.hash[h] = v
	return v
}

// Vertex returns the vertex with the given hash code, or nil if it isn't in
// the graph.
func (g *Graph) Vertex(id interface{}) Vertex {
	return g.hash[id]
}

// Len returns the number of vertices.
func (g *Graph) Len() int {
	return len(g.hash)
}

// Vertices returns the list of all the vertices in this graph, ordered
// by name so that callers get deterministic output.
func (g *Graph) Vertices() []Vertex {
	result := make([]Vertex, 0, len(g.hash))
	for _, v := range g.hash {
		result = append(result, v)
	}

	sortVertices(result)
	return result
}

// AddEdge adds a directed edge to the graph from v1 to v2. Both v1 and v2
// must already be in the Graph via Add or this will do nothing.
func (g *Graph) AddEdge(v1, v2 Vertex) {
	g.init()
	h1, h2 := hashcode(v1), hashcode(v2)

	outMap, ok := g.adjacencyOut[h1]
	if !ok {
		return
	}
	inMap, ok := g.adjacencyIn[h2]
	if !ok {
		return
	}

	outMap[h2] = struct{}{}
	inMap[h1] = struct{}{}
}

// OutEdges returns the vertices v depends on.
func (g *Graph) OutEdges(v Vertex) []Vertex {
	return g.edges(g.adjacencyOut[hashcode(v)])
}

// InEdges returns the vertices that depend on v.
func (g *Graph) InEdges(v Vertex) []Vertex {
	return g.edges(g.adjacencyIn[hashcode(v)])
}

func (g *Graph) edges(set map[interface{}]struct{}) []Vertex {
	if len(set) == 0 {
		return nil
	}

	result := make([]Vertex, 0, len(set))
	for h := range set {
		result = append(result, g.hash[h])
	}

	sortVertices(result)
	return result
}

// String outputs some human-friendly output for the graph structure.
func (g *Graph) String() string {
	var buf bytes.Buffer
	for _, v := range g.Vertices() {
		buf.WriteString(fmt.Sprintf("%s\n", VertexName(v)))
		for _, dep := range g.OutEdges(v) {
			buf.WriteString(fmt.Sprintf("  %s\n", VertexName(dep)))
		}
	}

	return buf.String()
}

func (g *Graph) init() {
	if g.adjacencyOut == nil {
		g.adjacencyOut = make(map[interface{}]map[interface{}]struct{})
	}
	if g.adjacencyIn == nil {
		g.adjacencyIn = make(map[interface{}]map[interface{}]struct{})
	}
	if g.hash == nil {
		g.hash = make(map[interface{}]Vertex)
	}
}

func sortVertices(vs []Vertex) {
	sort.Slice(vs, func(i, j int) bool {
		return VertexName(vs[i]) < VertexName(vs[j])
	})
}

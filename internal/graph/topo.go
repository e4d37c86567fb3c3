package graph

import (
	"fmt"
	"strings"
)

// CycleError is returned by KahnSort when the graph is not acyclic.
type CycleError struct {
	// Cycle is one cycle found in the graph. The first vertex is repeated
	// at the end.
	Cycle []Vertex
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Cycle))
	for i, v := range e.Cycle {
		names[i] = VertexName(v)
	}

	return fmt.Sprintf("graph has a cycle: %s", strings.Join(names, " -> "))
}

// KahnSort returns the vertices ordered so that every vertex appears after
// all of the vertices it depends on. If the graph has a cycle, a *CycleError
// is returned.
func (g *Graph) KahnSort() ([]Vertex, error) {
	/*
	   L ← Empty list that will contain the sorted elements
	   S ← Set of all nodes with no dependencies

	   while S is non-empty do
	       remove a node n from S
	       add n to tail of L
	       for each node m depending on n do
	           decrement the remaining dependencies of m
	           if m has no remaining dependencies then
	               insert m into S
	*/

	vertices := g.Vertices()
	remaining := make(map[interface{}]int, len(vertices))
	L := make([]Vertex, 0, len(vertices))
	S := []Vertex{}
	for _, v := range vertices {
		remaining[hashcode(v)] = len(g.adjacencyOut[hashcode(v)])
		if remaining[hashcode(v)] == 0 {
			S = append(S, v)
		}
	}

	for len(S) > 0 {
		n := S[0]
		S = S[1:]
		L = append(L, n)

		for _, m := range g.InEdges(n) {
			h := hashcode(m)
			remaining[h]--
			if remaining[h] == 0 {
				S = append(S, m)
			}
		}
	}

	if len(L) != len(vertices) {
		return L, &CycleError{Cycle: g.FindCycle()}
	}

	return L, nil
}

// FindCycle returns one cycle in the graph, or nil if the graph is acyclic.
// The first vertex of the cycle is repeated at the end.
func (g *Graph) FindCycle() []Vertex {
	const (
		unvisited = iota
		inProgress
		done
	)

	state := make(map[interface{}]int, len(g.hash))
	var stack []Vertex

	var visit func(v Vertex) []Vertex
	visit = func(v Vertex) []Vertex {
		h := hashcode(v)
		state[h] = inProgress
		stack = append(stack, v)

		for _, dep := range g.OutEdges(v) {
			switch state[hashcode(dep)] {
			case inProgress:
				// Slice the stack from the first occurrence of dep.
				for i, s := range stack {
					if hashcode(s) == hashcode(dep) {
						cycle := append([]Vertex{}, stack[i:]...)
						return append(cycle, dep)
					}
				}

			case unvisited:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[h] = done
		return nil
	}

	for _, v := range g.Vertices() {
		if state[hashcode(v)] != unvisited {
			continue
		}

		if cycle := visit(v); cycle != nil {
			return cycle
		}
	}

	return nil
}

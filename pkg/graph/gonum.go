package graph

import (
	"gonum.org/v1/gonum/graph/simple"
)

// Directed converts g into a gonum directed graph. Node ids are the
// positions of the pages in Pages().
func (g *Graph) Directed() (*simple.DirectedGraph, []Page) {
	d := simple.NewDirectedGraph()
	ids := make(map[Page]int64, len(g.pages))
	for i, p := range g.pages {
		ids[p] = int64(i)
		d.AddNode(simple.Node(i))
	}
	for _, from := range g.pages {
		for to := range g.links[from] {
			d.SetEdge(simple.Edge{F: simple.Node(ids[from]), T: simple.Node(ids[to])})
		}
	}
	return d, g.Pages()
}

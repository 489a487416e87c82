package graph

import (
	"sort"

	"github.com/pkg/errors"
)

var (
	ErrEmptyGraph   = errors.New("graph has no pages")
	ErrSelfLoop     = errors.New("page links to itself")
	ErrDanglingLink = errors.New("link to a page outside the graph")
)

// Page identifies a document in the corpus
type Page string

// Graph is an immutable set of pages and the pages each of them links to.
// Every link target is itself a page and no page links to itself.
type Graph struct {
	links map[Page]map[Page]struct{}
	pages []Page // sorted, used for deterministic iteration
}

// New validates the link mapping and builds a Graph from it.
// Repeated links from the same page are collapsed.
func New(links map[Page][]Page) (*Graph, error) {
	if len(links) == 0 {
		return nil, ErrEmptyGraph
	}
	g := &Graph{
		links: make(map[Page]map[Page]struct{}, len(links)),
		pages: make([]Page, 0, len(links)),
	}
	for from, out := range links {
		set := make(map[Page]struct{}, len(out))
		for _, to := range out {
			if to == from {
				return nil, errors.Wrapf(ErrSelfLoop, "page %q", from)
			}
			if _, ok := links[to]; !ok {
				return nil, errors.Wrapf(ErrDanglingLink, "%q -> %q", from, to)
			}
			set[to] = struct{}{}
		}
		g.links[from] = set
		g.pages = append(g.pages, from)
	}
	sort.Slice(g.pages, func(i, j int) bool { return g.pages[i] < g.pages[j] })
	return g, nil
}

// Len returns the number of pages
func (g *Graph) Len() int {
	return len(g.pages)
}

// Pages returns every page in ascending order. The slice is a copy.
func (g *Graph) Pages() []Page {
	pages := make([]Page, len(g.pages))
	copy(pages, g.pages)
	return pages
}

func (g *Graph) Has(p Page) bool {
	_, ok := g.links[p]
	return ok
}

// Links returns the out-set of p in ascending order
func (g *Graph) Links(p Page) ([]Page, bool) {
	set, ok := g.links[p]
	if !ok {
		return nil, false
	}
	out := make([]Page, 0, len(set))
	for to := range set {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, true
}

func (g *Graph) OutDegree(p Page) int {
	return len(g.links[p])
}

// IsSink reports whether p is in the graph and has no outbound links
func (g *Graph) IsSink(p Page) bool {
	set, ok := g.links[p]
	return ok && len(set) == 0
}

// Contains reports whether from links to to
func (g *Graph) Contains(from, to Page) bool {
	_, ok := g.links[from][to]
	return ok
}

// Map returns a copy of the link structure, the inverse of New
func (g *Graph) Map() map[Page][]Page {
	m := make(map[Page][]Page, len(g.pages))
	for _, p := range g.pages {
		m[p], _ = g.Links(p)
	}
	return m
}

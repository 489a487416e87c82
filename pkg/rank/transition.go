package rank

import (
	"math"

	"github.com/lioia/markov-pagerank/pkg/graph"
	"github.com/pkg/errors"
)

// Distribution is the probability of visiting each page next
type Distribution map[graph.Page]float64

// Transition returns the distribution of the page a random surfer visits
// after page. With probability damping the surfer follows one of the
// links of page, otherwise it jumps to any page of g. A sink behaves as
// if it linked to every page, so its distribution is uniform.
func Transition(g *graph.Graph, page graph.Page, damping float64) (Distribution, error) {
	if err := checkDamping(damping); err != nil {
		return nil, err
	}
	links, ok := g.Links(page)
	if !ok {
		return nil, errors.Wrapf(ErrPageNotFound, "%q", page)
	}

	n := float64(g.Len())
	pages := g.Pages()
	dist := make(Distribution, len(pages))
	if len(links) == 0 {
		for _, p := range pages {
			dist[p] = 1 / n
		}
		return dist, nil
	}
	for _, p := range pages {
		dist[p] = (1 - damping) / n
	}
	for _, p := range links {
		dist[p] += damping / float64(len(links))
	}
	return dist, nil
}

func checkDamping(damping float64) error {
	if math.IsNaN(damping) || damping < 0 || damping > 1 {
		return errors.Wrapf(ErrInvalidConfig, "damping %v must be in [0, 1]", damping)
	}
	return nil
}

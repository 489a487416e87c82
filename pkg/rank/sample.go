package rank

import (
	"context"
	"math/rand/v2"
	"sort"

	"github.com/lioia/markov-pagerank/pkg/graph"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Number of walk steps between two cancellation checks
const cancelCheckInterval = 1024

// NewSource returns a generator seeded with seed, or with a random seed
// when seed is 0
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Sample estimates the ranks of g by walking `samples` steps of a single
// random surfer chain and counting how often each page is visited.
// The walk starts on a uniformly chosen page, which counts as the first
// visit. A nil rng uses a randomly seeded source.
func Sample(ctx context.Context, g *graph.Graph, damping float64, samples int, rng *rand.Rand) (Ranks, error) {
	if err := checkDamping(damping); err != nil {
		return nil, err
	}
	if samples <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "sample count %d must be positive", samples)
	}
	if rng == nil {
		rng = NewSource(0)
	}

	pages := g.Pages()
	visits := make(map[graph.Page]int, len(pages))
	weights := make([]float64, len(pages))
	cumulative := make([]float64, len(pages))

	page := pages[rng.IntN(len(pages))]
	visits[page]++
	for i := 1; i < samples; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		dist, err := Transition(g, page, damping)
		if err != nil {
			return nil, err
		}
		for j, p := range pages {
			weights[j] = dist[p]
		}
		page = pages[draw(rng, weights, cumulative)]
		visits[page]++
	}

	ranks := make(Ranks, len(pages))
	for _, p := range pages {
		ranks[p] = float64(visits[p]) / float64(samples)
	}
	return ranks, nil
}

// draw picks an index with probability proportional to its weight.
// cumulative is scratch space of the same length as weights.
func draw(rng *rand.Rand, weights, cumulative []float64) int {
	floats.CumSum(cumulative, weights)
	total := cumulative[len(cumulative)-1]
	u := rng.Float64() * total
	i := sort.Search(len(cumulative), func(i int) bool { return cumulative[i] > u })
	if i == len(cumulative) {
		// rounding at the upper end
		i--
	}
	return i
}

package rank

import (
	"context"

	"github.com/lioia/markov-pagerank/pkg/graph"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph/network"
)

// Reference computes the ranks with gonum's PageRank implementation.
// It is used to cross-check the two estimators.
//
// gonum iterates until convergence without a cap, which only holds for
// damping below 1, so damping 1 is rejected. The computation is abandoned
// when ctx is done.
func Reference(ctx context.Context, g *graph.Graph, damping, tolerance float64) (Ranks, error) {
	if err := checkDamping(damping); err != nil {
		return nil, err
	}
	if damping >= 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "reference estimator needs damping below 1, got %v", damping)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, pages := g.Directed()
	done := make(chan map[int64]float64, 1)
	go func() {
		done <- network.PageRank(d, damping, tolerance)
	}()

	var byID map[int64]float64
	select {
	case byID = <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	ranks := make(Ranks, len(pages))
	for i, p := range pages {
		ranks[p] = byID[int64(i)]
	}
	return ranks, nil
}

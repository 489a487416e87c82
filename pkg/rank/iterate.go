package rank

import (
	"context"
	"math"

	"github.com/lioia/markov-pagerank/pkg/graph"
	"github.com/lioia/markov-pagerank/pkg/utils"
	"github.com/pkg/errors"
)

type IterateOptions struct {
	Tolerance     float64 // Largest per-page change accepted as converged
	MaxIterations int     // Passes before giving up with ErrNotConverged
}

func DefaultIterateOptions() IterateOptions {
	return IterateOptions{Tolerance: 0.0001, MaxIterations: 1000}
}

// Iterate computes the ranks of g by repeatedly applying
//
//	R_(i+1)(p) = (1 - d)/N + d * (sum_(q in B_p) R_i(q)/|out(q)| + sum_(s sink) R_i(s)/N)
//
// starting from the uniform vector, until no page moves by Tolerance or
// more. It returns the converged ranks and the number of passes.
func Iterate(ctx context.Context, g *graph.Graph, damping float64, opts IterateOptions) (Ranks, int, error) {
	if err := checkDamping(damping); err != nil {
		return nil, 0, err
	}
	if math.IsNaN(opts.Tolerance) || opts.Tolerance <= 0 {
		return nil, 0, errors.Wrapf(ErrInvalidConfig, "tolerance %v must be positive", opts.Tolerance)
	}
	if opts.MaxIterations <= 0 {
		return nil, 0, errors.Wrapf(ErrInvalidConfig, "max iterations %d must be positive", opts.MaxIterations)
	}

	pages := g.Pages()
	n := float64(len(pages))
	ranks := make(Ranks, len(pages))
	for _, p := range pages {
		ranks[p] = 1 / n
	}

	for i := 1; i <= opts.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, i - 1, err
		}
		next := step(g, pages, ranks, damping)

		// Convergence check: every page has to be stable
		converged := true
		for _, p := range pages {
			if math.Abs(next[p]-ranks[p]) >= opts.Tolerance {
				converged = false
				break
			}
		}
		if converged {
			utils.NodeLog("iterate", "Converged after %d iteration(s)", i)
			return next, i, nil
		}
		ranks = next
	}
	return nil, opts.MaxIterations, errors.Wrapf(ErrNotConverged, "after %d iterations", opts.MaxIterations)
}

// step applies the recurrence once. The new vector is built entirely
// from ranks, which is left untouched.
func step(g *graph.Graph, pages []graph.Page, ranks Ranks, damping float64) Ranks {
	n := float64(len(pages))
	// Map phase: contributions through links, sink mass is shared by all
	sum := make(map[graph.Page]float64, len(pages))
	sinks := 0.0
	for _, q := range pages {
		links, _ := g.Links(q)
		if len(links) == 0 {
			sinks += ranks[q] / n
			continue
		}
		share := ranks[q] / float64(len(links))
		for _, p := range links {
			sum[p] += share
		}
	}

	// Reduce phase
	next := make(Ranks, len(pages))
	for _, p := range pages {
		next[p] = (1-damping)/n + damping*(sum[p]+sinks)
	}
	return next
}

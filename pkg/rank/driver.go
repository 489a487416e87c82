package rank

import (
	"context"
	"math"
	"math/rand/v2"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/lioia/markov-pagerank/pkg/graph"
	"github.com/lioia/markov-pagerank/pkg/utils"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Config holds the parameters shared by both estimators
type Config struct {
	Damping       float64
	Samples       int
	Tolerance     float64
	MaxIterations int
	Reference     bool // Also run the gonum reference implementation
}

func DefaultConfig() Config {
	opts := DefaultIterateOptions()
	return Config{
		Damping:       0.85,
		Samples:       10000,
		Tolerance:     opts.Tolerance,
		MaxIterations: opts.MaxIterations,
	}
}

// NewConfig takes the ranking parameters out of the file configuration
func NewConfig(c utils.Config) Config {
	return Config{
		Damping:       c.Damping,
		Samples:       c.Samples,
		Tolerance:     c.Tolerance,
		MaxIterations: c.MaxIterations,
		Reference:     c.Reference,
	}
}

// Validate reports every out of range parameter at once
func (c Config) Validate() error {
	var err error
	if math.IsNaN(c.Damping) || c.Damping < 0 || c.Damping > 1 {
		err = multierror.Append(err, errors.Wrapf(ErrInvalidConfig, "damping %v must be in [0, 1]", c.Damping))
	}
	if c.Reference && c.Damping == 1 {
		err = multierror.Append(err, errors.Wrap(ErrInvalidConfig, "reference estimator needs damping below 1"))
	}
	if c.Samples <= 0 {
		err = multierror.Append(err, errors.Wrapf(ErrInvalidConfig, "sample count %d must be positive", c.Samples))
	}
	if math.IsNaN(c.Tolerance) || c.Tolerance <= 0 {
		err = multierror.Append(err, errors.Wrapf(ErrInvalidConfig, "tolerance %v must be positive", c.Tolerance))
	}
	if c.MaxIterations <= 0 {
		err = multierror.Append(err, errors.Wrapf(ErrInvalidConfig, "max iterations %d must be positive", c.MaxIterations))
	}
	return err
}

// Report holds the output of both estimators for the same graph
type Report struct {
	Sampled      Ranks
	Iterated     Ranks
	Reference    Ranks // nil unless requested
	Iterations   int   // Passes needed by the iterative estimator
	MaxDeviation float64
}

// Compare runs the sampling and the iterative estimators side by side.
// The first failure of either is returned as is.
func Compare(ctx context.Context, g *graph.Graph, cfg Config, rng *rand.Rand) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	var report Report
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		ranks, err := Sample(ctx, g, cfg.Damping, cfg.Samples, rng)
		report.Sampled = ranks
		return err
	})
	eg.Go(func() error {
		opts := IterateOptions{Tolerance: cfg.Tolerance, MaxIterations: cfg.MaxIterations}
		ranks, iterations, err := Iterate(ctx, g, cfg.Damping, opts)
		report.Iterated = ranks
		report.Iterations = iterations
		return err
	})
	if cfg.Reference {
		eg.Go(func() error {
			ranks, err := Reference(ctx, g, cfg.Damping, cfg.Tolerance)
			report.Reference = ranks
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return Report{}, err
	}
	report.MaxDeviation = report.Sampled.MaxDiff(report.Iterated)
	utils.NodeLog("compare", "%d pages, max deviation %.4f", g.Len(), report.MaxDeviation)
	return report, nil
}

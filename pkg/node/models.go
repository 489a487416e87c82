package node

import (
	"context"

	"github.com/lioia/markov-pagerank/pkg/graph"
	"github.com/lioia/markov-pagerank/pkg/rank"
	"github.com/lioia/markov-pagerank/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkg/errors"
)

// ErrBadRequest marks requests that could not be decoded
var ErrBadRequest = errors.New("bad request")

// RankRequest is a ranking job, as received by every transport.
// Absent parameters take the default value.
type RankRequest struct {
	ID            string              `json:"id,omitempty"`
	Graph         map[string][]string `json:"graph"`
	Damping       *float64            `json:"damping,omitempty"`
	Samples       *int                `json:"samples,omitempty"`
	Tolerance     *float64            `json:"tolerance,omitempty"`
	MaxIterations *int                `json:"max_iterations,omitempty"`
	Seed          uint64              `json:"seed,omitempty"` // 0: random seed
	Reference     bool                `json:"reference,omitempty"`
}

type RankResponse struct {
	ID           string             `json:"id"`
	Sampled      map[string]float64 `json:"sampled,omitempty"`
	Iterated     map[string]float64 `json:"iterated,omitempty"`
	Reference    map[string]float64 `json:"reference,omitempty"`
	Iterations   int                `json:"iterations,omitempty"`
	MaxDeviation float64            `json:"max_deviation,omitempty"`
	Error        string             `json:"error,omitempty"` // Set by the worker for failed jobs
}

// NewRankRequest builds a request for g using the file configuration
func NewRankRequest(g *graph.Graph, c utils.Config) RankRequest {
	links := make(map[string][]string, g.Len())
	for from, out := range g.Map() {
		targets := make([]string, len(out))
		for i, to := range out {
			targets[i] = string(to)
		}
		links[string(from)] = targets
	}
	return RankRequest{
		Graph:         links,
		Damping:       &c.Damping,
		Samples:       &c.Samples,
		Tolerance:     &c.Tolerance,
		MaxIterations: &c.MaxIterations,
		Seed:          c.Seed,
		Reference:     c.Reference,
	}
}

// Build validates the request graph and fills the parameters left out.
// Parameter ranges are checked by rank.Compare.
func (r RankRequest) Build() (*graph.Graph, rank.Config, error) {
	links := make(map[graph.Page][]graph.Page, len(r.Graph))
	for from, out := range r.Graph {
		targets := make([]graph.Page, len(out))
		for i, to := range out {
			targets[i] = graph.Page(to)
		}
		links[graph.Page(from)] = targets
	}
	g, err := graph.New(links)
	if err != nil {
		return nil, rank.Config{}, err
	}

	cfg := rank.DefaultConfig()
	if r.Damping != nil {
		cfg.Damping = *r.Damping
	}
	if r.Samples != nil {
		cfg.Samples = *r.Samples
	}
	if r.Tolerance != nil {
		cfg.Tolerance = *r.Tolerance
	}
	if r.MaxIterations != nil {
		cfg.MaxIterations = *r.MaxIterations
	}
	cfg.Reference = r.Reference
	return g, cfg, nil
}

// Handle runs both estimators for r. Requests without an id get one.
func Handle(ctx context.Context, r RankRequest) (RankResponse, error) {
	if r.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return RankResponse{}, err
		}
		r.ID = id
	}
	g, cfg, err := r.Build()
	if err != nil {
		return RankResponse{ID: r.ID}, err
	}
	utils.NodeLog("node", "Ranking job %s (%d pages)", r.ID, g.Len())
	report, err := rank.Compare(ctx, g, cfg, rank.NewSource(r.Seed))
	if err != nil {
		return RankResponse{ID: r.ID}, err
	}
	return RankResponse{
		ID:           r.ID,
		Sampled:      toWire(report.Sampled),
		Iterated:     toWire(report.Iterated),
		Reference:    toWire(report.Reference),
		Iterations:   report.Iterations,
		MaxDeviation: report.MaxDeviation,
	}, nil
}

func toWire(r rank.Ranks) map[string]float64 {
	if r == nil {
		return nil
	}
	m := make(map[string]float64, len(r))
	for p, v := range r {
		m[string(p)] = v
	}
	return m
}

// FromWire converts a rank map of a response back to Ranks
func FromWire(m map[string]float64) rank.Ranks {
	if m == nil {
		return nil
	}
	r := make(rank.Ranks, len(m))
	for p, v := range m {
		r[graph.Page(p)] = v
	}
	return r
}

// isClientError reports whether err was caused by the request content
func isClientError(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, rank.ErrInvalidConfig) ||
		errors.Is(err, graph.ErrEmptyGraph) ||
		errors.Is(err, graph.ErrSelfLoop) ||
		errors.Is(err, graph.ErrDanglingLink)
}

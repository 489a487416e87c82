package rank

import (
	"testing"

	"github.com/lioia/markov-pagerank/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cycleWithSink(t *testing.T) *graph.Graph {
	g, err := graph.New(map[graph.Page][]graph.Page{
		"A": {"B"},
		"B": {"C"},
		"C": {"A"},
		"D": {},
	})
	require.NoError(t, err)
	return g
}

func TestTransition(t *testing.T) {
	g := cycleWithSink(t)

	tests := []struct {
		name string
		page graph.Page
		want Distribution
	}{
		{
			"sink is uniform",
			"D",
			Distribution{"A": 0.25, "B": 0.25, "C": 0.25, "D": 0.25},
		},
		{
			"single link",
			"A",
			Distribution{"A": 0.0375, "B": 0.8875, "C": 0.0375, "D": 0.0375},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, err := Transition(g, tt.page, 0.85)
			require.NoError(t, err)
			require.Len(t, dist, len(tt.want))
			for p, want := range tt.want {
				assert.InDelta(t, want, dist[p], 1e-12, "page %s", p)
			}
		})
	}
}

func TestTransitionSumsToOne(t *testing.T) {
	g, err := graph.New(map[graph.Page][]graph.Page{
		"1": {"2", "3", "4"},
		"2": {"1"},
		"3": {"2", "5"},
		"4": {},
		"5": {"1", "2", "3", "4"},
	})
	require.NoError(t, err)

	for _, d := range []float64{0, 0.15, 0.5, 0.85, 0.99, 1} {
		for _, p := range g.Pages() {
			dist, err := Transition(g, p, d)
			require.NoError(t, err)
			sum := 0.0
			for _, v := range dist {
				assert.GreaterOrEqual(t, v, 0.0)
				sum += v
			}
			assert.InDelta(t, 1.0, sum, 1e-9, "page %s damping %v", p, d)
		}
	}
}

func TestTransitionLinkShares(t *testing.T) {
	g, err := graph.New(map[graph.Page][]graph.Page{
		"a": {"b", "c"},
		"b": {},
		"c": {},
		"d": {},
		"e": {"a"},
	})
	require.NoError(t, err)
	const d = 0.6
	n := float64(g.Len())

	dist, err := Transition(g, "a", d)
	require.NoError(t, err)
	for _, p := range g.Pages() {
		if g.Contains("a", p) {
			assert.InDelta(t, (1-d)/n+d/2, dist[p], 1e-12)
		} else {
			assert.InDelta(t, (1-d)/n, dist[p], 1e-12)
		}
	}
}

func TestTransitionSinkIgnoresDamping(t *testing.T) {
	g := cycleWithSink(t)
	for _, d := range []float64{0, 0.3, 0.85, 1} {
		dist, err := Transition(g, "D", d)
		require.NoError(t, err)
		for _, p := range g.Pages() {
			assert.Equal(t, 0.25, dist[p])
		}
	}
}

func TestTransitionErrors(t *testing.T) {
	g := cycleWithSink(t)

	_, err := Transition(g, "Z", 0.85)
	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.Contains(t, err.Error(), "Z")

	for _, d := range []float64{-0.1, 1.5} {
		_, err = Transition(g, "A", d)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestTransitionReturnsFreshDistribution(t *testing.T) {
	g := cycleWithSink(t)
	first, err := Transition(g, "A", 0.85)
	require.NoError(t, err)
	first["B"] = 42

	second, err := Transition(g, "A", 0.85)
	require.NoError(t, err)
	assert.InDelta(t, 0.8875, second["B"], 1e-12)
}

package rank

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/lioia/markov-pagerank/pkg/graph"
	"gonum.org/v1/gonum/floats"
)

// Ranks maps every page of a graph to its share of the stationary
// probability mass
type Ranks map[graph.Page]float64

type Entry struct {
	Page graph.Page
	Rank float64
}

// Sorted returns the ranks ordered by page
func (r Ranks) Sorted() []Entry {
	entries := make([]Entry, 0, len(r))
	for p, v := range r {
		entries = append(entries, Entry{Page: p, Rank: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Page < entries[j].Page })
	return entries
}

func (r Ranks) Sum() float64 {
	values := make([]float64, 0, len(r))
	for _, e := range r.Sorted() {
		values = append(values, e.Rank)
	}
	return floats.Sum(values)
}

// MaxDiff is the largest per-page absolute difference between r and
// other. Pages missing from one side count as zero there.
func (r Ranks) MaxDiff(other Ranks) float64 {
	diff := 0.0
	for p, v := range r {
		diff = math.Max(diff, math.Abs(v-other[p]))
	}
	for p, v := range other {
		if _, ok := r[p]; !ok {
			diff = math.Max(diff, math.Abs(v))
		}
	}
	return diff
}

// Write prints one `  page: 0.1234` line per page, sorted by page
func (r Ranks) Write(w io.Writer) error {
	for _, e := range r.Sorted() {
		if _, err := fmt.Fprintf(w, "  %s: %.4f\n", e.Page, e.Rank); err != nil {
			return err
		}
	}
	return nil
}

func (r Ranks) String() string {
	var sb strings.Builder
	_ = r.Write(&sb)
	return sb.String()
}

package graph

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g, err := New(map[Page][]Page{
		"C": {"A", "A", "B"},
		"A": {"B"},
		"B": {},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []Page{"A", "B", "C"}, g.Pages())
	links, ok := g.Links("C")
	assert.True(t, ok)
	assert.Equal(t, []Page{"A", "B"}, links)
	assert.Equal(t, 2, g.OutDegree("C"))
	assert.True(t, g.IsSink("B"))
	assert.False(t, g.IsSink("A"))
	assert.False(t, g.IsSink("Z"))
	assert.True(t, g.Contains("A", "B"))
	assert.False(t, g.Contains("B", "A"))
	assert.True(t, g.Has("A"))
	assert.False(t, g.Has("Z"))
	_, ok = g.Links("Z")
	assert.False(t, ok)
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name  string
		links map[Page][]Page
		want  error
	}{
		{"empty", map[Page][]Page{}, ErrEmptyGraph},
		{"self loop", map[Page][]Page{"A": {"A"}}, ErrSelfLoop},
		{"dangling", map[Page][]Page{"A": {"B"}}, ErrDanglingLink},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.links)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGraphIsNotShared(t *testing.T) {
	links := map[Page][]Page{"A": {"B"}, "B": {}}
	g, err := New(links)
	require.NoError(t, err)

	links["B"] = append(links["B"], "A")
	pages := g.Pages()
	pages[0] = "Z"
	out, _ := g.Links("A")
	out[0] = "Z"

	assert.True(t, g.IsSink("B"))
	assert.Equal(t, []Page{"A", "B"}, g.Pages())
	assert.Equal(t, map[Page][]Page{"A": {"B"}, "B": {}}, g.Map())
}

func TestLoadGraphFromBytes(t *testing.T) {
	contents := []byte("# comment\r\n// other comment\n1 2\n2,3\n3\t1\n\n3 3\n1 2\n4 1\n")
	g, err := LoadGraphFromBytes(contents)
	require.NoError(t, err)
	assert.Equal(t, map[Page][]Page{
		"1": {"2"},
		"2": {"3"},
		"3": {"1"},
		"4": {"1"},
	}, g.Map())

	_, err = LoadGraphFromBytes([]byte("1 2 3\n"))
	assert.Error(t, err)
}

func TestLoadGraphResource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graph.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("a b\nb c\n"))
	}))
	defer server.Close()

	g, err := LoadGraphResource(server.URL + "/graph.txt")
	require.NoError(t, err)
	assert.True(t, g.IsSink("c"))
	assert.Equal(t, 3, g.Len())

	_, err = LoadGraphResource(server.URL + "/missing")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "graph.txt")
	require.NoError(t, os.WriteFile(path, []byte("x y\ny x\n"), 0o644))
	g, err = LoadGraphResource(path)
	require.NoError(t, err)
	assert.True(t, g.Contains("y", "x"))
}

func TestLoadCorpus(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"1.html": `<html><body><a href="2.html">two</a><a class="x" href="1.html">self</a></body></html>`,
		"2.html": `<a href="1.html">one</a> <A HREF="3.html">three</A> <a href="https://example.com">out</a>`,
		"3.html": `<p>no links here</p>`,
		"notes.txt": `<a href="1.html">ignored</a>`,
	}
	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
	}

	g, err := LoadGraphResource(dir)
	require.NoError(t, err)
	assert.Equal(t, map[Page][]Page{
		"1.html": {"2.html"},
		"2.html": {"1.html", "3.html"},
		"3.html": {},
	}, g.Map())
}

func TestDirected(t *testing.T) {
	g, err := New(map[Page][]Page{"a": {"b", "c"}, "b": {"c"}, "c": {}})
	require.NoError(t, err)
	d, pages := g.Directed()
	assert.Equal(t, []Page{"a", "b", "c"}, pages)
	assert.Equal(t, 3, d.Nodes().Len())
	assert.True(t, d.HasEdgeFromTo(0, 2))
	assert.True(t, d.HasEdgeFromTo(1, 2))
	assert.False(t, d.HasEdgeFromTo(2, 0))
}

func TestRender(t *testing.T) {
	g, err := New(map[Page][]Page{"a": {"b"}, "b": {}})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Render(g, map[Page]float64{"a": 0.25, "b": 0.75}, formatOf("out.dot"), &buf))
	assert.Contains(t, buf.String(), "0.7500")
	assert.Contains(t, buf.String(), "->")
}

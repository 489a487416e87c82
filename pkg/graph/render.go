package graph

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// Render draws g with every page labelled by its rank (if present)
func Render(g *Graph, ranks map[Page]float64, format graphviz.Format, w io.Writer) (err error) {
	gv := graphviz.New()
	cg, err := gv.Graph()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cg.Close(); err == nil {
			err = cerr
		}
		gv.Close()
	}()

	nodes := make(map[Page]*cgraph.Node, g.Len())
	for _, p := range g.pages {
		n, err := cg.CreateNode(string(p))
		if err != nil {
			return err
		}
		if rank, ok := ranks[p]; ok {
			n.SetLabel(fmt.Sprintf("%s\n%.4f", p, rank))
		}
		nodes[p] = n
	}
	for _, from := range g.pages {
		out, _ := g.Links(from)
		for _, to := range out {
			if _, err := cg.CreateEdge(fmt.Sprintf("%s->%s", from, to), nodes[from], nodes[to]); err != nil {
				return err
			}
		}
	}
	return gv.Render(cg, format, w)
}

// Write renders g into output, choosing the format from its extension
// (.svg, .png, .jpg; anything else is written as dot)
func Write(output string, g *Graph, ranks map[Page]float64) error {
	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()
	return Render(g, ranks, formatOf(output), file)
}

func formatOf(output string) graphviz.Format {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".svg":
		return graphviz.SVG
	case ".png":
		return graphviz.PNG
	case ".jpg", ".jpeg":
		return graphviz.JPG
	}
	return graphviz.XDOT
}

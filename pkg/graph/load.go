package graph

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/lioia/markov-pagerank/pkg/utils"
	"github.com/pkg/errors"
)

// Load graph from either a network resource or a local file.
// A local directory is loaded as an HTML corpus.
func LoadGraphResource(resource string) (*Graph, error) {
	var bytes []byte
	// Check if it's a network resource or a local one
	if strings.HasPrefix(resource, "http") {
		// Loading file from network
		resp, err := http.Get(resource)
		if err != nil {
			utils.WarnLog("graph", "Could not load network file at %s: %v", resource, err)
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("could not load %s: %s", resource, resp.Status)
		}
		// Read response body
		bytes, err = io.ReadAll(resp.Body)
		if err != nil {
			utils.WarnLog("graph", "Could not load body from request: %v", err)
			return nil, err
		}
	} else {
		info, err := os.Stat(resource)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return LoadCorpus(resource)
		}
		// Loading file from local filesystem
		bytes, err = os.ReadFile(resource)
		if err != nil {
			utils.WarnLog("graph", "Could not read graph at %s: %v", resource, err)
			return nil, err
		}
	}
	// Parse graph file into graph representation
	g, err := LoadGraphFromBytes(bytes)
	if err != nil {
		return nil, errors.Wrapf(err, "load graph from %s", resource)
	}
	return g, nil
}

// Parse an edge list: one `from to` (or `from,to`) pair per line.
// Self links are dropped, pages only ever linked to become sinks.
func LoadGraphFromBytes(contents []byte) (*Graph, error) {
	links := make(map[Page][]Page)
	// Split file contents in lines (based on newline delimiter)
	lines := strings.Split(strings.ReplaceAll(string(contents), "\r\n", "\n"), "\n")
	for i, line := range lines {
		from, to, skip, err := convertLine(line)
		// There was an error loading the line
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", i+1)
		}
		// Comment line -> no new node to add
		if skip {
			continue
		}
		// First time encountering these pages
		if _, ok := links[from]; !ok {
			links[from] = []Page{}
		}
		if _, ok := links[to]; !ok {
			links[to] = []Page{}
		}
		if from == to {
			continue
		}
		links[from] = append(links[from], to)
	}
	return New(links)
}

func convertLine(line string) (Page, Page, bool, error) {
	line = strings.TrimSpace(line)
	// Skip comment lines
	if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") || line == "" {
		return "", "", true, nil
	}
	// Split line in FromNode and ToNode
	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(tokens) != 2 {
		return "", "", false, fmt.Errorf("expected 2 pages, found %d in %q", len(tokens), line)
	}
	return Page(tokens[0]), Page(tokens[1]), false, nil
}

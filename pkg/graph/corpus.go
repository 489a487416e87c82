package graph

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lioia/markov-pagerank/pkg/utils"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// LoadCorpus reads every .html file in dir as a page. Links to the page
// itself and to files outside the corpus are discarded.
func LoadCorpus(dir string) (*Graph, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read corpus %s", dir)
	}
	raw := make(map[Page][]Page)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		hrefs, err := extractLinks(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", entry.Name())
		}
		raw[Page(entry.Name())] = hrefs
	}

	// Only keep links to other pages in the corpus
	links := make(map[Page][]Page, len(raw))
	for page, hrefs := range raw {
		links[page] = []Page{}
		for _, to := range hrefs {
			if _, ok := raw[to]; !ok || to == page {
				continue
			}
			links[page] = append(links[page], to)
		}
	}
	utils.NodeLog("corpus", "Loaded %d pages from %s", len(links), dir)
	return New(links)
}

func extractLinks(f io.Reader) ([]Page, error) {
	var hrefs []Page
	z := html.NewTokenizer(f)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			return hrefs, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "href" {
					hrefs = append(hrefs, Page(val))
				}
				if !more {
					break
				}
			}
		}
	}
}

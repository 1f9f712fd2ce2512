package domain

import (
	"fmt"
	"sort"

	"solseed.dev/pkg/solseed/internal/catalog"
	"solseed.dev/pkg/solseed/internal/domain/patterns"
	m "solseed.dev/pkg/solseed/internal/model"
)

// Candidate pairs a snippet with a legal insertion site in the scanned text.
type Candidate struct {
	Snippet m.Snippet
	Site    patterns.Site
}

// Locator finds injection points for a bug type against a source text.
// It is stateless; per-run used-site bookkeeping lives in the session,
// which passes its exclusion set back in.
type Locator struct {
	catalog *catalog.Catalog
}

// NewLocator constructs a Locator over the given catalog.
func NewLocator(cat *catalog.Catalog) *Locator {
	return &Locator{catalog: cat}
}

// Locate returns the ordered candidates for a bug type: snippets in catalog
// order, sites for each snippet in ascending line order. Sites whose line is
// in the exclude set are dropped, so one run never selects an already-used
// or overlapping site twice. Returns ErrNoInjectionPoint when nothing is left.
func (l *Locator) Locate(src string, bt m.BugType, exclude map[int]bool) ([]Candidate, error) {
	if !l.catalog.Has(bt) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBugType, bt)
	}

	scan := patterns.NewScan(src)

	var out []Candidate

	for _, snippet := range l.catalog.Snippets(bt) {
		sites := patterns.Sites(snippet.Pattern, scan)

		sort.Slice(sites, func(i, j int) bool { return sites[i].Line < sites[j].Line })

		for _, site := range sites {
			if exclude[site.Line] {
				continue
			}

			out = append(out, Candidate{Snippet: snippet, Site: site})
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: bug type %s", ErrNoInjectionPoint, bt)
	}

	return out, nil
}

// Package catalog loads the pattern catalog: the mapping from bug type to
// injectable snippets and the structural pattern each snippet requires at
// its insertion site. The catalog is read-only after load.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	m "solseed.dev/pkg/solseed/internal/model"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// Catalog maps bug types to their injectable snippets in declaration order.
type Catalog struct {
	order    []m.BugType
	snippets map[m.BugType][]m.Snippet
}

type catalogFile struct {
	Version  int            `yaml:"version"`
	BugTypes []bugTypeEntry `yaml:"bug_types"`
}

type bugTypeEntry struct {
	Name     string      `yaml:"name"`
	Snippets []m.Snippet `yaml:"snippets"`
}

// Default returns the built-in catalog covering the seven standard bug types.
func Default() (*Catalog, error) {
	return parse(defaultCatalogYAML)
}

// Load reads a catalog from a YAML file.
func Load(path m.Path) (*Catalog, error) {
	raw, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	return parse(raw)
}

func parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{snippets: make(map[m.BugType][]m.Snippet)}

	for _, entry := range file.BugTypes {
		bt := m.BugType(entry.Name)
		if entry.Name == "" {
			return nil, fmt.Errorf("catalog entry with empty bug type name")
		}

		if _, dup := c.snippets[bt]; dup {
			return nil, fmt.Errorf("duplicate catalog entry for bug type %q", bt)
		}

		if len(entry.Snippets) == 0 {
			return nil, fmt.Errorf("bug type %q has no snippets", bt)
		}

		snippets := make([]m.Snippet, 0, len(entry.Snippets))

		for _, sn := range entry.Snippets {
			if sn.ID == "" {
				return nil, fmt.Errorf("bug type %q has a snippet without an id", bt)
			}

			if err := validatePattern(sn.Pattern); err != nil {
				return nil, fmt.Errorf("snippet %q: %w", sn.ID, err)
			}

			sn.BugType = bt
			sn.Code = normalizeCode(sn.Code)

			if sn.Code == "" {
				return nil, fmt.Errorf("snippet %q has empty code", sn.ID)
			}

			snippets = append(snippets, sn)
		}

		c.order = append(c.order, bt)
		c.snippets[bt] = snippets
	}

	if len(c.order) == 0 {
		return nil, fmt.Errorf("catalog declares no bug types")
	}

	return c, nil
}

func validatePattern(p m.SitePattern) error {
	switch p {
	case m.SiteContractBody, m.SiteAfterExternalCall, m.SiteAfterSend,
		m.SiteFunctionStart, m.SiteAfterLoopHeader:
		return nil
	}

	return fmt.Errorf("unknown site pattern %q", p)
}

// normalizeCode guarantees the snippet ends with exactly one newline so an
// insertion always adds whole lines.
func normalizeCode(code string) string {
	code = strings.TrimRight(code, "\n")
	if code == "" {
		return ""
	}

	return code + "\n"
}

// BugTypes returns the catalog's bug types in declaration order.
func (c *Catalog) BugTypes() []m.BugType {
	out := make([]m.BugType, len(c.order))
	copy(out, c.order)

	return out
}

// Snippets returns the snippets declared for a bug type, in order.
func (c *Catalog) Snippets(bt m.BugType) []m.Snippet {
	return c.snippets[bt]
}

// Has reports whether the catalog declares the given bug type.
func (c *Catalog) Has(bt m.BugType) bool {
	_, ok := c.snippets[bt]
	return ok
}

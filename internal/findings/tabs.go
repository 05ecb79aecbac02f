package findings

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tabs.yaml
var tabsYAML []byte

// Tab is one analysis dimension shown to users.
type Tab struct {
	Key         string `yaml:"key" json:"key"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description"`
}

// Catalog is the ordered set of known tabs plus the generic fallback used for
// unknown keys.
type Catalog struct {
	tabs     []Tab
	fallback Tab
}

type catalogFile struct {
	Tabs     []Tab `yaml:"tabs"`
	Fallback Tab   `yaml:"fallback"`
}

// ParseCatalog reads a catalog from YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tab catalog: %w", err)
	}
	if len(f.Tabs) == 0 {
		return nil, fmt.Errorf("parse tab catalog: no tabs")
	}
	seen := make(map[string]bool, len(f.Tabs))
	for _, t := range f.Tabs {
		k := strings.ToLower(t.Key)
		if k == "" || t.Label == "" {
			return nil, fmt.Errorf("parse tab catalog: tab needs key and label")
		}
		if seen[k] {
			return nil, fmt.Errorf("parse tab catalog: duplicate key %q", t.Key)
		}
		seen[k] = true
	}
	return &Catalog{tabs: f.Tabs, fallback: f.Fallback}, nil
}

var defaultCatalog = mustParseCatalog(tabsYAML)

func mustParseCatalog(data []byte) *Catalog {
	c, err := ParseCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the five built-in tabs.
func DefaultCatalog() *Catalog { return defaultCatalog }

// Tabs returns the known tabs in display order.
func (c *Catalog) Tabs() []Tab {
	out := make([]Tab, len(c.tabs))
	copy(out, c.tabs)
	return out
}

// Lookup finds a tab by key, case-insensitively. Unknown keys yield the
// fallback tab and false.
func (c *Catalog) Lookup(key string) (Tab, bool) {
	for _, t := range c.tabs {
		if strings.EqualFold(t.Key, key) {
			return t, true
		}
	}
	return c.fallback, false
}

// Matches reports whether a finding category belongs to tab t. Both the tab
// key and its label are accepted.
func (t Tab) Matches(category string) bool {
	if category == "" {
		return false
	}
	return strings.EqualFold(category, t.Key) || strings.EqualFold(category, t.Label)
}

// TabFor returns the known tab a category belongs to.
func (c *Catalog) TabFor(category string) (Tab, bool) {
	for _, t := range c.tabs {
		if t.Matches(category) {
			return t, true
		}
	}
	return Tab{}, false
}

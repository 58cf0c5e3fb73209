// Package result maps the names selected during a finished walk to the
// article shown on the result panel.
package result

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smileynet/branchwalk/internal/tree"
)

// KeySep joins selected names into an article key.
const KeySep = "|"

// Article is the content shown for a combination of selections.
type Article struct {
	Title    string `yaml:"title"`
	Markdown string `yaml:"markdown"`
}

// Key returns the catalog key for a sequence of selected names.
func Key(names []string) string {
	return strings.Join(names, KeySep)
}

// Catalog holds articles keyed by joined selection names.
type Catalog struct {
	articles map[string]Article
}

// NewCatalog creates a Catalog from a key → article map.
func NewCatalog(articles map[string]Article) *Catalog {
	c := &Catalog{articles: make(map[string]Article, len(articles))}
	for k, a := range articles {
		c.articles[k] = a
	}
	return c
}

// Parse decodes a YAML mapping of keys to articles. An empty document
// yields an empty catalog.
func Parse(data []byte) (*Catalog, error) {
	articles := make(map[string]Article)
	if len(bytes.TrimSpace(data)) == 0 {
		return NewCatalog(articles), nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&articles); err != nil {
		if errors.Is(err, io.EOF) {
			return NewCatalog(nil), nil
		}
		return nil, fmt.Errorf("result: parsing articles: %w", err)
	}
	return NewCatalog(articles), nil
}

// LoadFS reads a catalog from name within fsys.
func LoadFS(fsys fs.FS, name string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("result: reading %s: %w", name, err)
	}
	return Parse(data)
}

// Len returns the number of articles.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.articles)
}

// keys returns all article keys, sorted.
func (c *Catalog) keys() []string {
	keys := make([]string, 0, len(c.articles))
	for k := range c.articles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the article for names, if the catalog has one.
func (c *Catalog) Lookup(names []string) (Article, bool) {
	if c == nil {
		return Article{}, false
	}
	a, ok := c.articles[Key(names)]
	return a, ok
}

// Resolve returns the article for names, or a fallback that lists the
// selections when the catalog has no entry. It never fails.
func (c *Catalog) Resolve(names []string) Article {
	if a, ok := c.Lookup(names); ok {
		return a
	}
	return Fallback(names)
}

// Fallback builds the article shown when no mapping exists.
func Fallback(names []string) Article {
	var b strings.Builder
	if len(names) == 0 {
		b.WriteString("No article matches this path yet.")
	} else {
		b.WriteString("No article matches this combination yet. You chose:\n\n")
		for _, n := range names {
			fmt.Fprintf(&b, "* %s\n", n)
		}
	}
	return Article{Title: "Your selection", Markdown: b.String()}
}

// Coverage compares the catalog against the leaf paths of a tree.
type Coverage struct {
	Missing []string // Leaf path keys with no article.
	Orphans []string // Article keys no leaf path produces.
}

// Check reports which leaf paths of root lack an article and which articles
// can never be reached.
func (c *Catalog) Check(root *tree.Node) Coverage {
	reachable := make(map[string]bool)
	var cov Coverage
	for _, names := range tree.Paths(root) {
		key := Key(names)
		if reachable[key] {
			continue
		}
		reachable[key] = true
		if _, ok := c.articles[key]; !ok {
			cov.Missing = append(cov.Missing, key)
		}
	}
	for _, k := range c.keys() {
		if !reachable[k] {
			cov.Orphans = append(cov.Orphans, k)
		}
	}
	sort.Strings(cov.Missing)
	return cov
}

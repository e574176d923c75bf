package guide

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/digiguide/digiguide/internal/config"
	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/search"
)

// Library holds the rendered guide pages.
type Library struct {
	dir     string
	include []string
	md      goldmark.Markdown

	mu    sync.RWMutex
	pages map[string]*Page
	tree  *Tree
}

// NewLibrary returns an empty library over cfg.Dir. Call Load to read it.
func NewLibrary(cfg config.GuidesConfig) *Library {
	include := cfg.Include
	if len(include) == 0 {
		include = config.DefaultGuideIncludes
	}
	return &Library{
		dir:     cfg.Dir,
		include: include,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
		pages: map[string]*Page{},
		tree:  BuildTree(nil),
	}
}

// Dir is the guides directory.
func (l *Library) Dir() string { return l.dir }

// Load parses and renders every page matched by the include globs and
// swaps them in. A missing guides directory leaves the library empty.
func (l *Library) Load() error {
	fsys := os.DirFS(l.dir)
	if _, err := fs.Stat(fsys, "."); errors.Is(err, fs.ErrNotExist) {
		l.swap(map[string]*Page{})
		return nil
	}

	seen := map[string]bool{}
	var files []string
	for _, pattern := range l.include {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return fmt.Errorf("guides include %q: %w", pattern, err)
		}
		for _, m := range matches {
			if strings.HasSuffix(m, ".md") && !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)

	pages := make(map[string]*Page, len(files))
	for _, rel := range files {
		raw, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return fmt.Errorf("reading guide %s: %w", rel, err)
		}
		p, err := l.render(rel, raw)
		if err != nil {
			return fmt.Errorf("rendering guide %s: %w", rel, err)
		}
		pages[p.Path] = p
	}
	l.swap(pages)
	return nil
}

func (l *Library) swap(pages map[string]*Page) {
	list := make([]*Page, 0, len(pages))
	for _, p := range pages {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Path < list[j].Path })
	tree := BuildTree(list)

	l.mu.Lock()
	l.pages = pages
	l.tree = tree
	l.mu.Unlock()
}

// render converts one markdown file into a page.
func (l *Library) render(rel string, raw []byte) (*Page, error) {
	fm, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := l.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	p := &Page{
		Path:    strings.TrimSuffix(rel, path.Ext(rel)),
		Title:   fm.Title,
		Summary: fm.Summary,
		Order:   fm.Order,
		Tags:    fm.Tags,
		HTML:    template.HTML(buf.String()),
	}
	if p.Title == "" {
		p.Title = extractTitle(body, rel)
	}
	if p.Summary == "" {
		p.Summary = extractSummary(body)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

// Page returns the page at path.
func (l *Library) Page(path string) (*Page, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.pages[strings.Trim(path, "/")]
	return p, ok
}

// Pages returns every page sorted by path.
func (l *Library) Pages() []*Page {
	l.mu.RLock()
	defer l.mu.RUnlock()
	list := make([]*Page, 0, len(l.pages))
	for _, p := range l.pages {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Path < list[j].Path })
	return list
}

// Tree returns the navigation tree.
func (l *Library) Tree() *Tree {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree
}

// First returns the first page in navigation order, used as the landing
// page when no index page exists.
func (l *Library) First() (*Page, bool) {
	if p, ok := l.Page("index"); ok {
		return p, true
	}
	var walk func(*Tree) *Tree
	walk = func(t *Tree) *Tree {
		for _, c := range t.Children {
			if !c.IsDir {
				return c
			}
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	if n := walk(l.Tree()); n != nil {
		return l.Page(n.Path)
	}
	return nil, false
}

// SearchDocuments returns one search document per page.
func (l *Library) SearchDocuments() []search.Document {
	pages := l.Pages()
	docs := make([]search.Document, 0, len(pages))
	for _, p := range pages {
		docs = append(docs, search.Document{
			Item: data.SearchItem{
				Kind:     data.KindGuide,
				Key:      p.Path,
				Title:    p.Title,
				Subtitle: p.Summary,
				URL:      "/guide/" + p.Path,
			},
			Names:   data.Names{data.DefaultLocale: p.Title},
			Slug:    path.Base(p.Path),
			Summary: p.Summary,
		})
	}
	return docs
}

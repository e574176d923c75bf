package guide

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/digidex"
	"github.com/digiguide/digiguide/internal/progress"
	"github.com/digiguide/digiguide/internal/query"
	"github.com/digiguide/digiguide/internal/search"
)

// ExportResult counts what Export wrote.
type ExportResult struct {
	Pages         int
	Digimon       int
	SearchEntries int
}

// SearchEntry is one record of the exported search-index.json.
type SearchEntry struct {
	data.SearchItem
	Names   data.Names `json:"names,omitempty"`
	Summary string     `json:"summary,omitempty"`
}

// Export writes every guide page as static HTML into outDir together with
// digimon.json and search-index.json.
func Export(ctx context.Context, lib *Library, c *data.Catalog, docs []search.Document, outDir string, rep progress.Reporter) (ExportResult, error) {
	var res ExportResult
	pages := lib.Pages()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, err
	}

	rep.Start(len(pages) + 2)
	defer rep.Finish()
	step := 0

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := lib.exportPage(outDir, p, p.Path+".html"); err != nil {
			return res, fmt.Errorf("exporting %s: %w", p.Path, err)
		}
		res.Pages++
		step++
		rep.Update(step, p.Path)
	}
	if _, ok := lib.Page("index"); !ok {
		if first, ok := lib.First(); ok {
			if err := lib.exportPage(outDir, first, "index.html"); err != nil {
				return res, fmt.Errorf("exporting landing page: %w", err)
			}
		}
	}

	all := digidex.List(ctx, c, digidex.Filter{}, query.SortSpec{Field: "number"},
		query.Page{Page: 1, PerPage: len(c.Digimon) + 1})
	if err := writeJSON(filepath.Join(outDir, "digimon.json"), all.Items); err != nil {
		return res, err
	}
	res.Digimon = len(all.Items)
	step++
	rep.Update(step, "digimon.json")

	entries := make([]SearchEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, SearchEntry{SearchItem: d.Item, Names: d.Names, Summary: d.Summary})
	}
	if err := writeJSON(filepath.Join(outDir, "search-index.json"), entries); err != nil {
		return res, err
	}
	res.SearchEntries = len(entries)
	step++
	rep.Update(step, "search-index.json")

	return res, nil
}

// exportPage writes p to rel under outDir with links relative to rel.
func (l *Library) exportPage(outDir string, p *Page, rel string) error {
	base := strings.Repeat("../", strings.Count(rel, "/"))
	link := func(path string) string { return base + path + ".html" }

	out := filepath.Join(outDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	return l.writePage(f, p, data.DefaultLocale, base+"index.html", link, ".html")
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

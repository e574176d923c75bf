// Package search is the fuzzy search index over every record kind and the
// guide pages.
package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/digiguide/digiguide/internal/config"
	"github.com/digiguide/digiguide/internal/data"
)

const (
	// scoreOffset lifts raw fuzzy scores, which go negative for long
	// candidates, above zero so field weights scale them monotonically.
	scoreOffset = 100
	prefixBonus = 100.0

	DefaultLimit = 20
	MaxLimit     = 100
)

var kindOrder = map[data.SearchKind]int{
	data.KindDigimon: 0,
	data.KindSkill:   1,
	data.KindItem:    2,
	data.KindBoss:    3,
	data.KindGuide:   4,
}

// Document is one searchable record.
type Document struct {
	Item    data.SearchItem
	Names   data.Names
	Slug    string
	Type    string
	Summary string
}

// Hit is a scored search result.
type Hit struct {
	data.SearchItem
	Score float64 `json:"score"`
}

type field struct {
	doc    int
	text   string
	weight float64
}

// fields implements fuzzy.Source.
type fields []field

func (f fields) String(i int) string { return f[i].text }
func (f fields) Len() int            { return len(f) }

// Index ranks documents against a query.
type Index struct {
	docs   []Document
	fields fields
	minLen int
}

// NewIndex flattens docs into weighted fields.
func NewIndex(docs []Document, cfg config.SearchConfig) *Index {
	ix := &Index{docs: docs, minLen: cfg.MinQueryLength}
	w := cfg.Weights
	add := func(doc int, text string, weight float64) {
		if text != "" && weight > 0 {
			ix.fields = append(ix.fields, field{doc: doc, text: text, weight: weight})
		}
	}
	for i, d := range docs {
		add(i, d.Names[data.DefaultLocale], w.Name)
		for _, loc := range sortedLocales(d.Names) {
			if loc != data.DefaultLocale {
				add(i, d.Names[loc], w.AltName)
			}
		}
		add(i, d.Slug, w.Slug)
		add(i, d.Type, w.Type)
		add(i, d.Summary, w.Summary)
	}
	return ix
}

func sortedLocales(n data.Names) []string {
	locs := make([]string, 0, len(n))
	for l := range n {
		locs = append(locs, l)
	}
	sort.Strings(locs)
	return locs
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.docs) }

// Search returns up to limit hits for q. An empty kinds matches every
// kind. Titles are localized to locale. A query shorter than the minimum
// length yields no hits.
func (ix *Index) Search(q string, kinds []data.SearchKind, limit int, locale string) []Hit {
	q = strings.TrimSpace(q)
	hits := []Hit{}
	if len([]rune(q)) < ix.minLen || q == "" {
		return hits
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	allowed := func(k data.SearchKind) bool {
		if len(kinds) == 0 {
			return true
		}
		for _, want := range kinds {
			if want == k {
				return true
			}
		}
		return false
	}

	best := map[int]float64{}
	for _, m := range fuzzy.FindFrom(q, ix.fields) {
		f := ix.fields[m.Index]
		if !allowed(ix.docs[f.doc].Item.Kind) {
			continue
		}
		base := float64(m.Score + scoreOffset)
		if base < 1 {
			base = 1
		}
		if s := base * f.weight; s > best[f.doc] {
			best[f.doc] = s
		}
	}

	lq := strings.ToLower(q)
	for doc := range best {
		for _, n := range ix.docs[doc].Names {
			if strings.HasPrefix(strings.ToLower(n), lq) {
				best[doc] += prefixBonus
				break
			}
		}
	}

	for doc, score := range best {
		d := ix.docs[doc]
		item := d.Item
		if len(d.Names) > 0 {
			item.Title = d.Names.Get(locale)
		}
		hits = append(hits, Hit{SearchItem: item, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if kindOrder[a.Kind] != kindOrder[b.Kind] {
			return kindOrder[a.Kind] < kindOrder[b.Kind]
		}
		return a.Key < b.Key
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// CatalogDocuments turns every catalog record into a search document.
func CatalogDocuments(c *data.Catalog) []Document {
	docs := make([]Document, 0, len(c.Digimon)+len(c.Skills)+len(c.Items)+len(c.Bosses))
	for _, d := range c.Digimon {
		docs = append(docs, Document{
			Item: data.SearchItem{
				Kind:     data.KindDigimon,
				Key:      d.Slug,
				Title:    d.Names.Get(data.DefaultLocale),
				Subtitle: string(d.Stage),
				URL:      "/digimon/" + d.Slug,
			},
			Names: d.Names,
			Slug:  d.Slug,
			Type:  d.Type,
		})
	}
	for _, s := range c.Skills {
		docs = append(docs, Document{
			Item: data.SearchItem{
				Kind:     data.KindSkill,
				Key:      s.ID,
				Title:    s.Names.Get(data.DefaultLocale),
				Subtitle: s.Element,
				URL:      "/skills/" + s.ID,
			},
			Names: s.Names,
			Slug:  s.ID,
			Type:  s.Element,
		})
	}
	for _, it := range c.Items {
		docs = append(docs, Document{
			Item: data.SearchItem{
				Kind:     data.KindItem,
				Key:      it.ID,
				Title:    it.Names.Get(data.DefaultLocale),
				Subtitle: it.Category,
				URL:      "/items/" + it.ID,
			},
			Names: it.Names,
			Slug:  it.ID,
			Type:  it.Category,
		})
	}
	for _, b := range c.Bosses {
		key := strconv.Itoa(b.ID)
		docs = append(docs, Document{
			Item: data.SearchItem{
				Kind:     data.KindBoss,
				Key:      key,
				Title:    b.Names.Get(data.DefaultLocale),
				Subtitle: b.Location,
				URL:      "/bosses/" + key,
			},
			Names: b.Names,
			Slug:  data.Slugify(b.Names.Get(data.DefaultLocale)),
			Type:  b.Location,
		})
	}
	return docs
}

// ParseKinds parses a comma separated kind list.
func ParseKinds(s string) ([]data.SearchKind, bool) {
	var kinds []data.SearchKind
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		k := data.SearchKind(part)
		if _, ok := kindOrder[k]; !ok {
			return nil, false
		}
		kinds = append(kinds, k)
	}
	return kinds, true
}

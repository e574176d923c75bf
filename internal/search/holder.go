package search

import (
	"context"
	"sync"

	"github.com/digiguide/digiguide/internal/config"
	"github.com/digiguide/digiguide/internal/data"
)

// Holder owns the live index. It rebuilds when the catalog from src
// changes or new guide documents arrive.
type Holder struct {
	src *data.Source
	cfg config.SearchConfig

	mu      sync.Mutex
	catalog *data.Catalog
	guides  []Document
	index   *Index
}

// NewHolder returns a holder over src.
func NewHolder(src *data.Source, cfg config.SearchConfig) *Holder {
	return &Holder{src: src, cfg: cfg}
}

// SetGuides replaces the guide documents; the next Index call rebuilds.
func (h *Holder) SetGuides(docs []Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.guides = docs
	h.index = nil
}

// Index returns the index for the current catalog.
func (h *Holder) Index(ctx context.Context) (*Index, error) {
	c, err := h.src.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == nil || h.catalog != c {
		docs := append(CatalogDocuments(c), h.guides...)
		h.index = NewIndex(docs, h.cfg)
		h.catalog = c
	}
	return h.index, nil
}

// SuggestLimit is the configured number of suggestions.
func (h *Holder) SuggestLimit() int { return h.cfg.SuggestLimit }

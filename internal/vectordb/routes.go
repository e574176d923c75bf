package vectordb

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/httpx"
	"github.com/digiguide/digiguide/internal/i18n"
)

const (
	defaultRelated = 5
	maxRelated     = 20
)

// RelatedEntry is one similar digimon.
type RelatedEntry struct {
	ID         int     `json:"id"`
	Slug       string  `json:"slug"`
	Name       string  `json:"name"`
	Stage      string  `json:"stage"`
	Attribute  string  `json:"attribute"`
	Image      string  `json:"image,omitempty"`
	Similarity float32 `json:"similarity"`
}

// RegisterRoutes mounts the related-digimon route.
func RegisterRoutes(r chi.Router, src *data.Source, ix *Index, log *zap.Logger) {
	r.Get("/api/digimon/{id}/related", handleRelated(src, ix, log))
}

func handleRelated(src *data.Source, ix *Index, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := httpx.IntParam(r, "limit", defaultRelated)
		if !ok {
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadParam, "limit")
			return
		}
		if limit < 1 {
			limit = defaultRelated
		}
		if limit > maxRelated {
			limit = maxRelated
		}

		c, err := src.Catalog(r.Context())
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		param := chi.URLParam(r, "id")
		d, err := c.LookupDigimon(param)
		if err != nil {
			httpx.WriteError(w, r, http.StatusNotFound, i18n.MsgNotFound, param)
			return
		}

		entries, err := RelatedDigimon(r.Context(), c, ix, d.ID, limit)
		if errors.Is(err, ErrNotFound) {
			httpx.WriteError(w, r, http.StatusNotFound, i18n.MsgNotFound, param)
			return
		}
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, entries)
	}
}

// RelatedDigimon resolves the nearest neighbours of id against c.
func RelatedDigimon(ctx context.Context, c *data.Catalog, ix *Index, id, limit int) ([]RelatedEntry, error) {
	store, err := ix.Store(ctx)
	if err != nil {
		return nil, err
	}
	results, err := store.Related(ctx, strconv.Itoa(id), limit)
	if err != nil {
		return nil, err
	}

	locale := i18n.Locale(i18n.FromContext(ctx))
	entries := []RelatedEntry{}
	for _, res := range results {
		d, err := c.DigimonByID(res.Document.Metadata.RecordID)
		if err != nil {
			continue
		}
		entries = append(entries, RelatedEntry{
			ID:         d.ID,
			Slug:       d.Slug,
			Name:       d.Name(locale),
			Stage:      string(d.Stage),
			Attribute:  string(d.Attribute),
			Image:      httpx.ImageURL(d.Image),
			Similarity: res.Similarity,
		})
	}
	return entries, nil
}

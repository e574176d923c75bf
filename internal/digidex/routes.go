package digidex

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/httpx"
	"github.com/digiguide/digiguide/internal/i18n"
	"github.com/digiguide/digiguide/internal/query"
)

// RegisterRoutes mounts the Digidex API routes.
func RegisterRoutes(r chi.Router, src *data.Source, lim query.Limits, log *zap.Logger) {
	r.Get("/api/digimon", handleList(src, lim, log))
	r.Get("/api/digimon/{id}", handleGet(src, log))
	r.Get("/api/stats", handleStats(src, log))
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{
		Stage:     q.Get("stage"),
		Attribute: q.Get("attribute"),
		Type:      q.Get("type"),
		Name:      q.Get("name"),
		Skill:     q.Get("skill"),
	}
	if n, ok, err := query.OptionalInt(r, "min_memory"); err != nil {
		return f, err
	} else if ok {
		f.MinMemory = &n
	}
	if n, ok, err := query.OptionalInt(r, "max_memory"); err != nil {
		return f, err
	} else if ok {
		f.MaxMemory = &n
	}
	return f, nil
}

func handleList(src *data.Source, lim query.Limits, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r)
		if err != nil {
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadParam, err.Error())
			return
		}
		sort, err := query.ParseSort(r, "number", SortFields)
		if err != nil {
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadParam, err.Error())
			return
		}
		page, err := query.ParsePage(r, lim)
		if err != nil {
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadParam, err.Error())
			return
		}

		c, err := src.Catalog(r.Context())
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, List(r.Context(), c, filter, sort, page))
	}
}

func handleGet(src *data.Source, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := src.Catalog(r.Context())
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		id := chi.URLParam(r, "id")
		det, err := Get(r.Context(), c, id)
		if errors.Is(err, data.ErrNotFound) {
			httpx.WriteError(w, r, http.StatusNotFound, i18n.MsgNotFound, id)
			return
		}
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, det)
	}
}

func handleStats(src *data.Source, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := src.Catalog(r.Context())
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		locale := i18n.Locale(i18n.FromContext(r.Context()))
		httpx.WriteJSON(w, http.StatusOK, Stats(c, locale))
	}
}

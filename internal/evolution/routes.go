package evolution

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/httpx"
	"github.com/digiguide/digiguide/internal/i18n"
)

// RootRef is a digimon with no pre-evolutions.
type RootRef struct {
	ID    int    `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Stage string `json:"stage"`
}

// RegisterRoutes mounts the evolution routes.
func RegisterRoutes(r chi.Router, src *data.Source, graphs *Cache, log *zap.Logger) {
	r.Get("/api/evolution/roots", handleRoots(src, graphs, log))
	r.Get("/api/evolution/path", handlePath(src, graphs, log))
	r.Get("/api/evolution/{id}", handleTree(src, graphs, log))
}

func handleTree(src *data.Source, graphs *Cache, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dir, ok := ParseDirection(r.URL.Query().Get("direction"))
		if !ok {
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadParam, "direction")
			return
		}
		depth, ok := httpx.IntParam(r, "depth", DefaultDepth)
		if !ok {
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadParam, "depth")
			return
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

		tree, err := graphs.For(c).Tree(d.ID, dir, depth, i18n.Locale(i18n.FromContext(r.Context())))
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, tree)
	}
}

func handlePath(src *data.Source, graphs *Cache, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fromParam, toParam := r.URL.Query().Get("from"), r.URL.Query().Get("to")
		if fromParam == "" || toParam == "" {
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadParam, "from and to are required")
			return
		}

		c, err := src.Catalog(r.Context())
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		from, err := c.LookupDigimon(fromParam)
		if err != nil {
			httpx.WriteError(w, r, http.StatusNotFound, i18n.MsgNotFound, fromParam)
			return
		}
		to, err := c.LookupDigimon(toParam)
		if err != nil {
			httpx.WriteError(w, r, http.StatusNotFound, i18n.MsgNotFound, toParam)
			return
		}

		steps, err := graphs.For(c).Path(from.ID, to.ID, i18n.Locale(i18n.FromContext(r.Context())))
		if errors.Is(err, ErrNoPath) {
			httpx.WriteError(w, r, http.StatusNotFound, i18n.MsgNoPath, fmt.Sprintf("%s -> %s", from.Slug, to.Slug))
			return
		}
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"steps": steps, "length": len(steps) - 1})
	}
}

func handleRoots(src *data.Source, graphs *Cache, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := src.Catalog(r.Context())
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		locale := i18n.Locale(i18n.FromContext(r.Context()))
		roots := []RootRef{}
		for _, d := range graphs.For(c).Roots() {
			roots = append(roots, RootRef{ID: d.ID, Slug: d.Slug, Name: d.Name(locale), Stage: string(d.Stage)})
		}
		httpx.WriteJSON(w, http.StatusOK, roots)
	}
}

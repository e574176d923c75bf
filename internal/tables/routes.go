package tables

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/httpx"
	"github.com/digiguide/digiguide/internal/i18n"
	"github.com/digiguide/digiguide/internal/query"
)

// RegisterRoutes mounts the skill, item and boss table routes.
func RegisterRoutes(r chi.Router, src *data.Source, lim query.Limits, log *zap.Logger) {
	r.Get("/api/skills", handle(src, log, func(r *http.Request, c *data.Catalog) (any, error) {
		f := SkillFilter{
			Element: r.URL.Query().Get("element"),
			Kind:    r.URL.Query().Get("kind"),
			Name:    r.URL.Query().Get("name"),
		}
		var err error
		if f.MinPower, err = optional(r, "min_power"); err != nil {
			return nil, err
		}
		if f.MaxSP, err = optional(r, "max_sp"); err != nil {
			return nil, err
		}
		s, p, err := sortAndPage(r, lim, "id", SkillSortFields)
		if err != nil {
			return nil, err
		}
		return ListSkills(r.Context(), c, f, s, p), nil
	}))
	r.Get("/api/skills/{id}", handle(src, log, func(r *http.Request, c *data.Catalog) (any, error) {
		return GetSkill(r.Context(), c, chi.URLParam(r, "id"))
	}))

	r.Get("/api/items", handle(src, log, func(r *http.Request, c *data.Catalog) (any, error) {
		f := ItemFilter{
			Category: r.URL.Query().Get("category"),
			Name:     r.URL.Query().Get("name"),
		}
		var err error
		if f.MaxPrice, err = optional(r, "max_price"); err != nil {
			return nil, err
		}
		s, p, err := sortAndPage(r, lim, "id", ItemSortFields)
		if err != nil {
			return nil, err
		}
		return ListItems(r.Context(), c, f, s, p), nil
	}))
	r.Get("/api/items/{id}", handle(src, log, func(r *http.Request, c *data.Catalog) (any, error) {
		return GetItem(r.Context(), c, chi.URLParam(r, "id"))
	}))

	r.Get("/api/bosses", handle(src, log, func(r *http.Request, c *data.Catalog) (any, error) {
		f := BossFilter{
			Location: r.URL.Query().Get("location"),
			Name:     r.URL.Query().Get("name"),
			Weakness: r.URL.Query().Get("weakness"),
		}
		var err error
		if f.MinLevel, err = optional(r, "min_level"); err != nil {
			return nil, err
		}
		if f.MaxLevel, err = optional(r, "max_level"); err != nil {
			return nil, err
		}
		s, p, err := sortAndPage(r, lim, "id", BossSortFields)
		if err != nil {
			return nil, err
		}
		return ListBosses(r.Context(), c, f, s, p), nil
	}))
	r.Get("/api/bosses/{id}", handle(src, log, func(r *http.Request, c *data.Catalog) (any, error) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			return nil, data.ErrNotFound
		}
		return GetBoss(r.Context(), c, id)
	}))
}

type handlerFunc func(r *http.Request, c *data.Catalog) (any, error)

// handle loads the catalog, runs fn and maps its error onto a status.
func handle(src *data.Source, log *zap.Logger, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := src.Catalog(r.Context())
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		v, err := fn(r, c)
		switch {
		case err == nil:
			httpx.WriteJSON(w, http.StatusOK, v)
		case errors.Is(err, query.ErrBadParam):
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadParam, err.Error())
		case errors.Is(err, data.ErrNotFound):
			httpx.WriteError(w, r, http.StatusNotFound, i18n.MsgNotFound, chi.URLParam(r, "id"))
		default:
			httpx.Internal(w, r, log, err)
		}
	}
}

func optional(r *http.Request, name string) (*int, error) {
	n, ok, err := query.OptionalInt(r, name)
	if err != nil || !ok {
		return nil, err
	}
	return &n, nil
}

func sortAndPage(r *http.Request, lim query.Limits, def string, allowed []string) (query.SortSpec, query.Page, error) {
	s, err := query.ParseSort(r, def, allowed)
	if err != nil {
		return s, query.Page{}, err
	}
	p, err := query.ParsePage(r, lim)
	return s, p, err
}

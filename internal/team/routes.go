package team

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/config"
	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/httpx"
	"github.com/digiguide/digiguide/internal/i18n"
)

// maxBody bounds team request bodies.
const maxBody = 64 << 10

type request struct {
	Name    string `json:"name"`
	Members []int  `json:"members"`
}

// Saved is a stored team with a fresh analysis.
type Saved struct {
	Team
	Analysis *Analysis `json:"analysis"`
}

// RegisterRoutes mounts the team builder routes.
func RegisterRoutes(r chi.Router, src *data.Source, store *Store, cfg config.TeamConfig, log *zap.Logger) {
	r.Route("/api/teams", func(r chi.Router) {
		r.Post("/analyze", handleAnalyze(src, cfg, log))
		r.Get("/", handleList(store, log))
		r.Post("/", handleCreate(src, store, cfg, log))
		r.Get("/{id}", handleGet(src, store, cfg, log))
		r.Delete("/{id}", handleDelete(store, log))
	})
}

func decode(w http.ResponseWriter, r *http.Request) (request, bool) {
	var req request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadBody, err.Error())
		return req, false
	}
	return req, true
}

// writeAnalysisError maps analysis failures to 400s; it reports whether
// err was handled.
func writeAnalysisError(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case errors.Is(err, ErrTooManyMembers):
		httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgTeamTooLarge, err.Error())
	case errors.Is(err, ErrUnknownDigimon):
		httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgUnknownDigimon, err.Error())
	default:
		return false
	}
	return true
}

func analyze(r *http.Request, src *data.Source, ids []int, cfg config.TeamConfig) (*Analysis, error) {
	c, err := src.Catalog(r.Context())
	if err != nil {
		return nil, err
	}
	return Analyze(c, ids, cfg, i18n.Locale(i18n.FromContext(r.Context())))
}

func handleAnalyze(src *data.Source, cfg config.TeamConfig, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode(w, r)
		if !ok {
			return
		}
		a, err := analyze(r, src, req.Members, cfg)
		if err != nil {
			if !writeAnalysisError(w, r, err) {
				httpx.Internal(w, r, log, err)
			}
			return
		}
		httpx.WriteJSON(w, http.StatusOK, a)
	}
}

func handleCreate(src *data.Source, store *Store, cfg config.TeamConfig, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode(w, r)
		if !ok {
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadBody, "name is required")
			return
		}
		a, err := analyze(r, src, req.Members, cfg)
		if err != nil {
			if !writeAnalysisError(w, r, err) {
				httpx.Internal(w, r, log, err)
			}
			return
		}

		t := &Team{Name: req.Name, Members: req.Members}
		if err := store.Create(r.Context(), t); err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		log.Info("team saved", zap.String("id", t.ID), zap.Int("members", len(t.Members)))
		httpx.WriteJSON(w, http.StatusCreated, Saved{Team: *t, Analysis: a})
	}
}

func handleList(store *Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := httpx.IntParam(r, "limit", 50)
		if !ok {
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadParam, "limit")
			return
		}
		teams, err := store.List(r.Context(), limit)
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, teams)
	}
}

func handleGet(src *data.Source, store *Store, cfg config.TeamConfig, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		t, err := store.Get(r.Context(), id)
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		if t == nil {
			httpx.WriteError(w, r, http.StatusNotFound, i18n.MsgNotFound, id)
			return
		}

		// The catalog may have changed since the team was saved; an
		// unknown member leaves the analysis empty rather than failing.
		saved := Saved{Team: *t}
		a, err := analyze(r, src, t.Members, config.TeamConfig{MemoryCapacity: cfg.MemoryCapacity})
		switch {
		case err == nil:
			saved.Analysis = a
		case errors.Is(err, ErrUnknownDigimon):
			log.Warn("saved team references unknown digimon", zap.String("id", id), zap.Error(err))
		default:
			httpx.Internal(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, saved)
	}
}

func handleDelete(store *Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ok, err := store.Delete(r.Context(), id)
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		if !ok {
			httpx.WriteError(w, r, http.StatusNotFound, i18n.MsgNotFound, id)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

package search

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/httpx"
	"github.com/digiguide/digiguide/internal/i18n"
)

// Response is the body of a search request.
type Response struct {
	Query string `json:"query"`
	Hits  []Hit  `json:"hits"`
}

// Suggestion is the trimmed hit returned by the suggest endpoint.
type Suggestion struct {
	Title string `json:"title"`
	Kind  string `json:"kind"`
	URL   string `json:"url"`
}

// RegisterRoutes mounts the search routes.
func RegisterRoutes(r chi.Router, h *Holder, log *zap.Logger) {
	r.Get("/api/search", handleSearch(h, log))
	r.Get("/api/search/suggest", handleSuggest(h, log))
}

func handleSearch(h *Holder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		kinds, ok := ParseKinds(r.URL.Query().Get("kind"))
		if !ok {
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadParam, "kind")
			return
		}
		limit, ok := httpx.IntParam(r, "limit", DefaultLimit)
		if !ok {
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadParam, "limit")
			return
		}

		ix, err := h.Index(r.Context())
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		hits := ix.Search(q, kinds, limit, i18n.Locale(i18n.FromContext(r.Context())))
		httpx.WriteJSON(w, http.StatusOK, Response{Query: q, Hits: hits})
	}
}

func handleSuggest(h *Holder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ix, err := h.Index(r.Context())
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		hits := ix.Search(r.URL.Query().Get("q"), nil, h.SuggestLimit(), i18n.Locale(i18n.FromContext(r.Context())))
		out := make([]Suggestion, len(hits))
		for i, hit := range hits {
			out[i] = Suggestion{Title: hit.Title, Kind: string(hit.Kind), URL: hit.URL}
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

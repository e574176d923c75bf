package imageproxy

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/httpx"
	"github.com/digiguide/digiguide/internal/i18n"
	"github.com/digiguide/digiguide/internal/metrics"
)

// RegisterRoutes mounts the image proxy route.
func RegisterRoutes(r chi.Router, p *Proxy, log *zap.Logger) {
	r.Get("/api/image", handleImage(p, log))
}

func handleImage(p *Proxy, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		width, ok := httpx.IntParam(r, "w", 0)
		if !ok || width < 0 || width > MaxWidth {
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadParam, "w")
			return
		}
		u, err := p.Resolve(r.URL.Query().Get("src"), width)
		switch {
		case errors.Is(err, ErrForbiddenHost):
			httpx.WriteError(w, r, http.StatusForbidden, i18n.MsgHostForbidden, err.Error())
			return
		case err != nil:
			httpx.WriteError(w, r, http.StatusBadRequest, i18n.MsgBadParam, err.Error())
			return
		}

		entry, outcome, err := p.Get(r.Context(), u)
		metrics.ImageOutcome(string(outcome))
		if errors.Is(err, ErrUpstream) {
			log.Warn("image unavailable", zap.String("src", u.String()), zap.Error(err))
			httpx.WriteError(w, r, http.StatusBadGateway, i18n.MsgUpstream, "")
			return
		}
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}

		f, err := os.Open(entry.Path)
		if err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		defer f.Close()

		h := w.Header()
		h.Set("Content-Type", entry.ContentType)
		h.Set("Cache-Control", "public, max-age="+strconv.Itoa(int(p.cfg.TTL.Seconds())))
		h.Set("X-Cache", cacheHeader(outcome))
		if entry.ETag != "" {
			h.Set("ETag", entry.ETag)
		}
		http.ServeContent(w, r, "", entry.FetchedAt, f)
	}
}

func cacheHeader(o Outcome) string {
	switch o {
	case OutcomeHit, OutcomeRevalidated:
		return "HIT"
	case OutcomeStale:
		return "STALE"
	default:
		return "MISS"
	}
}

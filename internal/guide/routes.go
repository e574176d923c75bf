package guide

import (
	"bytes"
	"html/template"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/httpx"
	"github.com/digiguide/digiguide/internal/i18n"
)

// SiteName is shown in page titles and the sidebar header.
const SiteName = "DigiGuide"

// RegisterRoutes mounts the guide JSON API and the rendered pages.
func RegisterRoutes(r chi.Router, lib *Library, log *zap.Logger) {
	r.Get("/api/guides", handleTree(lib))
	r.Get("/api/guides/*", handlePageJSON(lib))
	r.Get("/guide", handlePageHTML(lib, log))
	r.Get("/guide/*", handlePageHTML(lib, log))
}

func handleTree(lib *Library) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, lib.Tree())
	}
}

func handlePageJSON(lib *Library) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := lib.Page(chi.URLParam(r, "*"))
		if !ok {
			httpx.WriteError(w, r, http.StatusNotFound, i18n.MsgNotFound, "guide")
			return
		}
		out := *p
		out.HTML = template.HTML(rewriteLinks(string(p.HTML), ""))
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func handlePageHTML(lib *Library, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			p  *Page
			ok bool
		)
		if rest := chi.URLParam(r, "*"); rest != "" {
			p, ok = lib.Page(rest)
		} else {
			p, ok = lib.First()
		}
		if !ok {
			httpx.WriteError(w, r, http.StatusNotFound, i18n.MsgNotFound, "guide")
			return
		}

		var buf bytes.Buffer
		lang := i18n.Locale(i18n.FromContext(r.Context()))
		if err := lib.writePage(&buf, p, lang, "/guide", servedLink, ""); err != nil {
			httpx.Internal(w, r, log, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

func servedLink(path string) string { return "/guide/" + path }

// writePage renders p in the site layout. link builds navigation hrefs
// and ext replaces .md in links inside the page body.
func (l *Library) writePage(w io.Writer, p *Page, lang, home string, link func(string) string, ext string) error {
	return renderLayout(w, layoutData{
		SiteName: SiteName,
		Lang:     lang,
		Title:    p.Title,
		Summary:  p.Summary,
		Tags:     p.Tags,
		Content:  template.HTML(rewriteLinks(string(p.HTML), ext)),
		Nav:      l.Tree().navHTML(p.Path, link),
		Home:     home,
	})
}

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/config"
	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/db"
	"github.com/digiguide/digiguide/internal/embeddings"
	"github.com/digiguide/digiguide/internal/guide"
	"github.com/digiguide/digiguide/internal/live"
	"github.com/digiguide/digiguide/internal/search"
	"github.com/digiguide/digiguide/internal/team"
	"github.com/digiguide/digiguide/internal/vectordb"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Data.Dir = "../data/testdata"
	cfg.Guides.Dir = "../guide/testdata/guides"
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	lib := guide.NewLibrary(cfg.Guides)
	if err := lib.Load(); err != nil {
		t.Fatalf("loading guides: %v", err)
	}
	src := data.NewSource(data.DirLoader(cfg.Data.Dir))
	holder := search.NewHolder(src, cfg.Search)
	holder.SetGuides(lib.SearchDocuments())

	return New(cfg, Deps{
		Source:  src,
		Search:  holder,
		Related: vectordb.NewIndex(src, embeddings.NewHashingEmbedder(0), "", zap.NewNop()),
		Teams:   team.NewStore(database),
		Guides:  lib,
		Hub:     live.NewHub(zap.NewNop()),
	}, zap.NewNop())
}

func get(srv *Server, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := get(srv, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Status  string      `json:"status"`
		Catalog data.Counts `json:"catalog"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", body.Status)
	}
	if body.Catalog.Digimon != 9 {
		t.Errorf("digimon count = %d, want 9", body.Catalog.Digimon)
	}
}

func TestHealthCheckDegraded(t *testing.T) {
	cfg := testConfig()
	cfg.Data.Dir = "../data/testdata/missing"
	srv := newTestServer(t, cfg)

	if w := get(srv, "/healthz"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	cfg := testConfig()
	cfg.Server.AllowAll = true
	srv := newTestServer(t, cfg)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestRoutesMounted(t *testing.T) {
	srv := newTestServer(t, testConfig())

	tests := []struct {
		path   string
		status int
	}{
		{"/api/digimon", http.StatusOK},
		{"/api/digimon/agumon", http.StatusOK},
		{"/api/digimon/agumon/related", http.StatusOK},
		{"/api/digimon/9999", http.StatusNotFound},
		{"/api/digimon?sort=bogus", http.StatusBadRequest},
		{"/api/stats", http.StatusOK},
		{"/api/skills", http.StatusOK},
		{"/api/items", http.StatusOK},
		{"/api/bosses", http.StatusOK},
		{"/api/evolution/roots", http.StatusOK},
		{"/api/search?q=agu", http.StatusOK},
		{"/api/search/suggest?q=agu", http.StatusOK},
		{"/api/teams", http.StatusOK},
		{"/api/guides", http.StatusOK},
		{"/guide/evolution/armor", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/image?src=a.png", http.StatusNotFound},
	}
	for _, tt := range tests {
		if w := get(srv, tt.path); w.Code != tt.status {
			t.Errorf("GET %s = %d, want %d: %s", tt.path, w.Code, tt.status, w.Body.String())
		}
	}
}

func TestLanguageNegotiation(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := get(srv, "/api/digimon/9999", "Accept-Language", "ja-JP,ja;q=0.9")
	if got := w.Header().Get("Content-Language"); got != "ja" {
		t.Errorf("Content-Language = %q, want ja", got)
	}

	w = get(srv, "/api/digimon?lang=ja")
	if !strings.Contains(w.Header().Get("Set-Cookie"), "dg_lang=ja") {
		t.Errorf("expected the lang cookie, got %q", w.Header().Get("Set-Cookie"))
	}
}

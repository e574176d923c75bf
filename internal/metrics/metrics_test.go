package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Instrument)
	r.Get("/api/digimon/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/digimon/{id}", "404"))
	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/digimon/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/digimon/{id}", "404"))
	assert.Equal(t, 3.0, after-before)
}

func TestImageOutcome(t *testing.T) {
	before := testutil.ToFloat64(imageOutcomes.WithLabelValues("stale"))
	ImageOutcome("stale")
	assert.Equal(t, 1.0, testutil.ToFloat64(imageOutcomes.WithLabelValues("stale"))-before)
}

func TestHandlerExposesCollectors(t *testing.T) {
	CatalogReload(true)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "digiguide_catalog_reloads_total"))
}

package digidex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/i18n"
	"github.com/digiguide/digiguide/internal/query"
)

const fixtures = "../data/testdata"

func testCatalog(t *testing.T) *data.Catalog {
	t.Helper()
	c, err := data.LoadDir(fixtures)
	require.NoError(t, err)
	return c
}

func ids(items []Summary) []int {
	out := make([]int, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}

func intp(n int) *int { return &n }

func TestListFilters(t *testing.T) {
	c := testCatalog(t)
	ctx := context.Background()
	all := query.Page{Page: 1, PerPage: 50}
	byNumber := query.SortSpec{Field: "number"}

	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{"none", Filter{}, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"stage", Filter{Stage: "rookie"}, []int{2, 7}},
		{"attribute", Filter{Attribute: "Data"}, []int{7, 8}},
		{"type", Filter{Type: "fire"}, []int{2, 3, 4, 5, 6}},
		{"name substring", Filter{Name: "grey"}, []int{3, 4, 5}},
		{"name in other locale", Filter{Name: "アグモン"}, []int{2}},
		{"skill", Filter{Skill: "mega-flame"}, []int{3, 4}},
		{"memory range", Filter{MinMemory: intp(8), MaxMemory: intp(14)}, []int{3, 4, 6, 8}},
		{"combined", Filter{Type: "Fire", MaxMemory: intp(4)}, []int{2}},
		{"no match", Filter{Stage: "Ultra"}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := List(ctx, c, tt.filter, byNumber, all)
			assert.Equal(t, tt.want, ids(res.Items))
			assert.Equal(t, len(tt.want), res.Total)
		})
	}
}

func TestListSortAndPaginate(t *testing.T) {
	c := testCatalog(t)
	ctx := context.Background()

	res := List(ctx, c, Filter{}, query.SortSpec{Field: "total", Desc: true}, query.Page{Page: 1, PerPage: 3})
	assert.Equal(t, []int{5, 4, 6}, ids(res.Items))
	assert.Equal(t, 9, res.Total)
	assert.Equal(t, 3, res.Pages)

	res = List(ctx, c, Filter{}, query.SortSpec{Field: "memory"}, query.Page{Page: 1, PerPage: 4})
	// Ties on memory fall back to id order.
	assert.Equal(t, []int{1, 9, 2, 7}, ids(res.Items))

	res = List(ctx, c, Filter{}, query.SortSpec{Field: "name"}, query.Page{Page: 1, PerPage: 2})
	assert.Equal(t, []int{2, 6}, ids(res.Items))

	res = List(ctx, c, Filter{}, query.SortSpec{Field: "number"}, query.Page{Page: 5, PerPage: 3})
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
}

func TestListLocalizes(t *testing.T) {
	c := testCatalog(t)
	ctx := i18n.WithTag(context.Background(), language.Japanese)

	res := List(ctx, c, Filter{Stage: "Rookie"}, query.SortSpec{Field: "number"}, query.Page{Page: 1, PerPage: 10})
	require.Len(t, res.Items, 2)
	assert.Equal(t, "アグモン", res.Items[0].Name)
	assert.Equal(t, "成長期", res.Items[0].StageLabel)
	assert.Equal(t, "Rookie", res.Items[0].Stage)
	assert.Equal(t, "/api/image?src=digimon%2Fagumon.png", res.Items[0].Image)
}

func TestGet(t *testing.T) {
	c := testCatalog(t)
	ctx := context.Background()

	det, err := Get(ctx, c, "agumon")
	require.NoError(t, err)
	assert.Equal(t, 2, det.ID)
	assert.Equal(t, "Vaccine", det.AttributeLabel)
	assert.Equal(t, 2260, det.Total)

	require.Len(t, det.EvolvesFrom, 1)
	assert.Equal(t, "Koromon", det.EvolvesFrom[0].Name)
	assert.Empty(t, det.EvolvesFrom[0].Requirements)

	require.Len(t, det.EvolvesTo, 2)
	assert.Equal(t, "greymon", det.EvolvesTo[0].Slug)
	assert.Len(t, det.EvolvesTo[0].Requirements, 2)
	assert.Equal(t, "Armor", det.EvolvesTo[1].Stage)

	require.Len(t, det.Skills, 1)
	assert.Equal(t, "pepper-breath", det.Skills[0].ID)
	assert.NotEqual(t, "pepper-breath", det.Skills[0].Name)

	byID, err := Get(ctx, c, "2")
	require.NoError(t, err)
	assert.Equal(t, det.Slug, byID.Slug)

	_, err = Get(ctx, c, "nope")
	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestStats(t *testing.T) {
	c := testCatalog(t)
	o := Stats(c, "en")

	assert.Equal(t, 9, o.Counts.Digimon)
	assert.Equal(t, 2, o.ByStage["Rookie"])
	assert.Equal(t, 2, o.ByStage["In-Training II"])
	assert.Equal(t, 4, o.ByAttribute["Vaccine"])
	assert.Equal(t, 2, o.ByType["Ice"])

	require.Len(t, o.Top["total"], topN)
	assert.Equal(t, "WarGreymon", o.Top["total"][0].Name)
	assert.Equal(t, 6140, o.Top["total"][0].Value)
	assert.Equal(t, 5, o.Top["atk"][0].ID)

	// Rookie averages: Agumon hp 1000 and Gabumon hp 1050.
	assert.InDelta(t, 1025.0, o.AvgByStage["Rookie"]["hp"], 0.01)
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	src := data.NewSource(data.DirLoader(fixtures))
	r := chi.NewRouter()
	RegisterRoutes(r, src, query.Limits{PerPage: 5, MaxPerPage: 10}, zap.NewNop())
	return r
}

func TestHandleList(t *testing.T) {
	h := newRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/digimon?type=Fire&sort=-atk&per_page=2&page=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res query.Result[Summary]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 2, res.PerPage)
	assert.Len(t, res.Items, 2)
}

func TestHandleListBadParams(t *testing.T) {
	h := newRouter(t)
	for _, target := range []string{
		"/api/digimon?page=x",
		"/api/digimon?sort=weight",
		"/api/digimon?min_memory=lots",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `"error"`, target)
	}
}

func TestHandleGet(t *testing.T) {
	h := newRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/digimon/greymon", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var det Detail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &det))
	assert.Equal(t, 3, det.ID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/digimon/404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleStats(t *testing.T) {
	h := newRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var o Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, 9, o.Counts.Digimon)
}

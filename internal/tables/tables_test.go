package tables

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

var firstPage = query.Page{Page: 1, PerPage: 50}

func testCatalog(t *testing.T) *data.Catalog {
	t.Helper()
	c, err := data.LoadDir(fixtures)
	require.NoError(t, err)
	return c
}

func intp(n int) *int { return &n }

func TestListSkills(t *testing.T) {
	c := testCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter SkillFilter
		sort   query.SortSpec
		want   []string
	}{
		{"all by id", SkillFilter{}, query.SortSpec{Field: "id"},
			[]string{"gaia-force", "heal", "howling-blaster", "mega-flame", "pepper-breath", "petit-fire"}},
		{"element", SkillFilter{Element: "ice"}, query.SortSpec{Field: "id"}, []string{"howling-blaster"}},
		{"kind", SkillFilter{Kind: "support"}, query.SortSpec{Field: "id"}, []string{"heal"}},
		{"min power by power desc", SkillFilter{MinPower: intp(100)}, query.SortSpec{Field: "power", Desc: true},
			[]string{"gaia-force", "mega-flame", "howling-blaster"}},
		{"max sp by sp", SkillFilter{MaxSP: intp(8)}, query.SortSpec{Field: "sp"}, []string{"petit-fire", "pepper-breath"}},
		{"name", SkillFilter{Name: "flame"}, query.SortSpec{Field: "name"}, []string{"mega-flame"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ListSkills(ctx, c, tt.filter, tt.sort, firstPage)
			got := make([]string, len(res.Items))
			for i, r := range res.Items {
				got[i] = r.ID
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetSkill(t *testing.T) {
	c := testCatalog(t)
	det, err := GetSkill(context.Background(), c, "mega-flame")
	require.NoError(t, err)
	assert.Equal(t, "Mega Flame", det.Name)
	require.Len(t, det.LearnedBy, 2)
	assert.Equal(t, "greymon", det.LearnedBy[0].Slug)
	assert.Equal(t, "metalgreymon", det.LearnedBy[1].Slug)

	heal, err := GetSkill(context.Background(), c, "heal")
	require.NoError(t, err)
	assert.Equal(t, 1, heal.Hits)
	assert.Empty(t, heal.LearnedBy)

	_, err = GetSkill(context.Background(), c, "nope")
	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestListItems(t *testing.T) {
	c := testCatalog(t)
	ctx := i18n.WithTag(context.Background(), language.Japanese)

	res := ListItems(ctx, c, ItemFilter{Category: "consumable"}, query.SortSpec{Field: "price", Desc: true}, firstPage)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "sp-disk", res.Items[0].ID)
	assert.Equal(t, "SP回復フロッピー", res.Items[0].Name)

	res = ListItems(ctx, c, ItemFilter{MaxPrice: intp(100)}, query.SortSpec{Field: "id"}, firstPage)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "courage-digimental", res.Items[0].ID)
	assert.Equal(t, []string{"Chapter 5", "Kowloon"}, res.Items[0].Sources)
}

func TestGetItemUnlocks(t *testing.T) {
	c := testCatalog(t)
	det, err := GetItem(context.Background(), c, "courage-digimental")
	require.NoError(t, err)
	require.Len(t, det.UnlocksEvolutions, 1)
	assert.Equal(t, "agumon", det.UnlocksEvolutions[0].From.Slug)
	assert.Equal(t, "flamedramon", det.UnlocksEvolutions[0].To.Slug)
}

func TestListBosses(t *testing.T) {
	c := testCatalog(t)
	ctx := context.Background()

	res := ListBosses(ctx, c, BossFilter{Weakness: "fire"}, query.SortSpec{Field: "hp", Desc: true}, firstPage)
	require.Len(t, res.Items, 2)
	assert.Equal(t, 3, res.Items[0].ID)
	assert.Equal(t, 2, res.Items[1].ID)

	res = ListBosses(ctx, c, BossFilter{MinLevel: intp(30), MaxLevel: intp(40)}, query.SortSpec{Field: "id"}, firstPage)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Etemon", res.Items[0].Name)
	assert.Equal(t, []string{}, res.Items[0].Resistances)

	res = ListBosses(ctx, c, BossFilter{Location: "island"}, query.SortSpec{Field: "id"}, firstPage)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.Items[0].ID)
}

func TestRoutes(t *testing.T) {
	src := data.NewSource(data.DirLoader(fixtures))
	r := chi.NewRouter()
	RegisterRoutes(r, src, query.Limits{PerPage: 2, MaxPerPage: 10}, zap.NewNop())

	tests := []struct {
		target string
		status int
	}{
		{"/api/skills", http.StatusOK},
		{"/api/skills?sort=-power&min_power=50", http.StatusOK},
		{"/api/skills/heal", http.StatusOK},
		{"/api/skills/nope", http.StatusNotFound},
		{"/api/skills?sort=weight", http.StatusBadRequest},
		{"/api/items?max_price=cheap", http.StatusBadRequest},
		{"/api/items/sp-disk", http.StatusOK},
		{"/api/bosses?min_level=10", http.StatusOK},
		{"/api/bosses/2", http.StatusOK},
		{"/api/bosses/etemon", http.StatusNotFound},
		{"/api/bosses/99", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
		assert.Equal(t, tt.status, rec.Code, tt.target)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills?page=2", nil))
	var res query.Result[SkillRow]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 6, res.Total)
	assert.Equal(t, 3, res.Pages)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "howling-blaster", res.Items[0].ID)
}

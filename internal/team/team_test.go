package team

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/config"
	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/db"
)

const fixtures = "../data/testdata"

var teamCfg = config.TeamConfig{MaxSize: 6, MemoryCapacity: 60}

func testCatalog(t *testing.T) *data.Catalog {
	t.Helper()
	c, err := data.LoadDir(fixtures)
	require.NoError(t, err)
	return c
}

func TestAnalyze(t *testing.T) {
	c := testCatalog(t)

	a, err := Analyze(c, []int{2, 7}, teamCfg, "en")
	require.NoError(t, err)
	assert.Equal(t, 2, a.Size)
	assert.Equal(t, 2050, a.Totals.HP)
	assert.Equal(t, 230, a.Totals.ATK)
	assert.Equal(t, 2260+2275, a.Total)
	assert.Equal(t, 1025.0, a.Averages["hp"])
	assert.Equal(t, 97.5, a.Averages["spd"])
	assert.Equal(t, 8, a.Memory)
	assert.False(t, a.OverCapacity)
	assert.Equal(t, map[string]int{"Vaccine": 1, "Data": 1}, a.Attributes)
	assert.Equal(t, map[string]int{"Fire": 1, "Ice": 1}, a.Types)
	assert.Equal(t, []string{"Fire"}, a.Elements)
	assert.Equal(t, "Agumon", a.Members[0].Name)
}

func TestAnalyzeTotalsMatchMemberSums(t *testing.T) {
	c := testCatalog(t)
	ids := []int{1, 3, 5, 6, 8, 9}
	a, err := Analyze(c, ids, teamCfg, "en")
	require.NoError(t, err)

	var sum data.Stats
	for _, id := range ids {
		d, err := c.DigimonByID(id)
		require.NoError(t, err)
		sum = sum.Add(d.Stats)
	}
	assert.Equal(t, sum, a.Totals)
	assert.Equal(t, sum.Total(), a.Total)
}

func TestAnalyzeRepeatsAndCapacity(t *testing.T) {
	c := testCatalog(t)
	a, err := Analyze(c, []int{5, 5, 5, 4}, teamCfg, "ja")
	require.NoError(t, err)
	assert.Equal(t, 74, a.Memory)
	assert.True(t, a.OverCapacity)
	assert.Equal(t, 4, a.Attributes["Vaccine"])
	assert.Equal(t, "ウォーグレイモン", a.Members[0].Name)
}

func TestAnalyzeEmpty(t *testing.T) {
	a, err := Analyze(testCatalog(t), nil, teamCfg, "en")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Size)
	assert.Equal(t, data.Stats{}, a.Totals)
	assert.Equal(t, 0.0, a.Averages["hp"])
	assert.Empty(t, a.Members)
	assert.NotNil(t, a.Elements)
}

func TestAnalyzeErrors(t *testing.T) {
	c := testCatalog(t)

	_, err := Analyze(c, []int{1, 2, 3, 4, 5, 6, 7}, teamCfg, "en")
	assert.ErrorIs(t, err, ErrTooManyMembers)

	_, err = Analyze(c, []int{1, 404}, teamCfg, "en")
	assert.ErrorIs(t, err, ErrUnknownDigimon)
}

func newStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return NewStore(d)
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	team := &Team{Name: "Fire squad", Members: []int{2, 3, 5}}
	require.NoError(t, s.Create(ctx, team))
	assert.NotEmpty(t, team.ID)

	got, err := s.Get(ctx, team.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Fire squad", got.Name)
	assert.Equal(t, []int{2, 3, 5}, got.Members)
	assert.True(t, got.CreatedAt.Equal(team.CreatedAt), "created_at %v != %v", got.CreatedAt, team.CreatedAt)

	require.NoError(t, s.Create(ctx, &Team{Name: "Empty"}))
	teams, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, teams, 2)

	ok, err := s.Delete(ctx, team.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = s.Get(ctx, team.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = s.Delete(ctx, team.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, data.NewSource(data.DirLoader(fixtures)), newStore(t), teamCfg, zap.NewNop())
	return r
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeRoute(t *testing.T) {
	h := newRouter(t)

	rec := do(h, http.MethodPost, "/api/teams/analyze", `{"members":[2,7]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var a Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, 8, a.Memory)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/api/teams/analyze", `{"members":[1,1,1,1,1,1,1]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/api/teams/analyze", `{"members":[404]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/api/teams/analyze", `{"members":`).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/api/teams/analyze", `{"mambers":[1]}`).Code)
}

func TestSavedTeamRoutes(t *testing.T) {
	h := newRouter(t)

	rec := do(h, http.MethodPost, "/api/teams", `{"name":"Ice","members":[7,8]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var saved Saved
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.ID)
	require.NotNil(t, saved.Analysis)
	assert.Equal(t, 12, saved.Analysis.Memory)

	rec = do(h, http.MethodGet, "/api/teams/"+saved.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got Saved
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []int{7, 8}, got.Members)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, saved.Analysis.Total, got.Analysis.Total)

	rec = do(h, http.MethodGet, "/api/teams", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Team
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, "/api/teams/"+saved.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/api/teams/"+saved.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodDelete, "/api/teams/"+saved.ID, "").Code)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/api/teams", `{"name":" ","members":[1]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/api/teams", `{"name":"x","members":[404]}`).Code)
}

package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/language"

	"github.com/digiguide/digiguide/internal/i18n"
)

func TestWriteErrorLocalized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/digimon/999", nil)
	req = req.WithContext(i18n.WithTag(req.Context(), language.Japanese))
	rec := httptest.NewRecorder()

	WriteError(rec, req, http.StatusNotFound, i18n.MsgNotFound, "999")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "見つかりません", body.Error)
	assert.Equal(t, "999", body.Detail)
}

func TestInternalLogs(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)

	Internal(rec, req, zap.New(core), errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "/api/stats", logs.All()[0].ContextMap()["path"])
}

func TestIntParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&bad=x", nil)

	n, ok := IntParam(req, "limit", 10)
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	n, ok = IntParam(req, "missing", 10)
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	_, ok = IntParam(req, "bad", 10)
	assert.False(t, ok)
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "", ImageURL(""))
	assert.Equal(t, "/api/image?src=digimon%2Fagumon.png", ImageURL("digimon/agumon.png"))
}

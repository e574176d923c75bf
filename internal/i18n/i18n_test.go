package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func testResolver() *Resolver {
	return NewResolver("en", []string{"en", "ja"})
}

func TestResolveTagPrecedence(t *testing.T) {
	r := testResolver()

	tests := []struct {
		name        string
		query       string
		cookie      string
		accept      string
		wantTag     language.Tag
		wantPersist bool
	}{
		{name: "default", wantTag: language.English},
		{name: "query wins", query: "ja", cookie: "en", accept: "en", wantTag: language.Japanese, wantPersist: true},
		{name: "cookie over header", cookie: "ja", accept: "en-US", wantTag: language.Japanese},
		{name: "accept-language", accept: "ja-JP,ja;q=0.9,en;q=0.5", wantTag: language.Japanese},
		{name: "unsupported query falls through", query: "xx-invalid-!!", accept: "ja", wantTag: language.Japanese},
		{name: "unsupported header", accept: "sw", wantTag: language.English},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/api/digimon"
			if tt.query != "" {
				url += "?lang=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			tag, persist := r.ResolveTag(req)
			assert.Equal(t, tt.wantTag, tag)
			assert.Equal(t, tt.wantPersist, persist)
		})
	}
}

func TestMiddlewareSetsContextAndCookie(t *testing.T) {
	r := testResolver()
	var seen language.Tag
	h := r.Middleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		seen = FromContext(req.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?lang=ja", nil))

	assert.Equal(t, language.Japanese, seen)
	assert.Equal(t, "ja", rec.Header().Get("Content-Language"))
	cookies := rec.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, LangCookieName, cookies[0].Name)
		assert.Equal(t, "ja", cookies[0].Value)
	}
}

func TestTranslate(t *testing.T) {
	ja := WithTag(context.Background(), language.Japanese)
	assert.Equal(t, "見つかりません", T(ja, MsgNotFound))
	assert.Equal(t, "not found", T(context.Background(), MsgNotFound))
	assert.Equal(t, "成長期", T(ja, "stage.rookie"))
}

func TestLocale(t *testing.T) {
	assert.Equal(t, "ja", Locale(language.MustParse("ja-JP")))
	assert.Equal(t, "en", Locale(language.English))
}

// Package i18n resolves the request language and localizes the small set
// of strings the API itself produces.
package i18n

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "dg_lang"
)

type ctxKey struct{}

// Resolver picks one of the supported languages for a request.
type Resolver struct {
	supported []language.Tag
	matcher   language.Matcher
	def       language.Tag
}

// NewResolver builds a resolver. Unparseable locale strings are skipped;
// if def is missing from supported it is prepended.
func NewResolver(def string, supported []string) *Resolver {
	defTag := language.Make(def)
	tags := []language.Tag{defTag}
	for _, s := range supported {
		t, err := language.Parse(s)
		if err != nil || t == defTag {
			continue
		}
		tags = append(tags, t)
	}
	return &Resolver{
		supported: tags,
		matcher:   language.NewMatcher(tags),
		def:       defTag,
	}
}

// Default returns the fallback language.
func (r *Resolver) Default() language.Tag { return r.def }

// Supported returns the supported languages, default first.
func (r *Resolver) Supported() []language.Tag { return r.supported }

// Parse maps a user-supplied value onto a supported tag.
func (r *Resolver) Parse(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return r.def, false
	}
	t, err := language.Parse(value)
	if err != nil {
		return r.def, false
	}
	return r.match(t)
}

func (r *Resolver) match(tags ...language.Tag) (language.Tag, bool) {
	_, idx, conf := r.matcher.Match(tags...)
	if conf == language.No {
		return r.def, false
	}
	return r.supported[idx], true
}

// ResolveTag determines the best language for the request. The bool
// reports whether the choice came from the lang query parameter and
// should be persisted as a cookie.
func (r *Resolver) ResolveTag(req *http.Request) (language.Tag, bool) {
	if req == nil {
		return r.def, false
	}

	if v := req.URL.Query().Get(LangParam); v != "" {
		if tag, ok := r.Parse(v); ok {
			return tag, true
		}
	}

	if cookie, err := req.Cookie(LangCookieName); err == nil {
		if tag, ok := r.Parse(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(req.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			if tag, ok := r.match(tags...); ok {
				return tag, false
			}
		}
	}

	return r.def, false
}

// Middleware stores the resolved language in the request context.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		tag, persist := r.ResolveTag(req)
		if persist {
			http.SetCookie(w, &http.Cookie{
				Name:     LangCookieName,
				Value:    tag.String(),
				Path:     "/",
				MaxAge:   int((365 * 24 * time.Hour).Seconds()),
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set("Content-Language", tag.String())
		next.ServeHTTP(w, req.WithContext(WithTag(req.Context(), tag)))
	})
}

// WithTag returns a context carrying tag.
func WithTag(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, ctxKey{}, tag)
}

// FromContext returns the request language, or English when none was set.
func FromContext(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(ctxKey{}).(language.Tag); ok {
		return tag
	}
	return language.English
}

// Locale returns the base language code of tag, e.g. "ja" for ja-JP.
// Record name maps are keyed by these codes.
func Locale(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// Printer returns a message printer backed by the built-in catalog.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(messages))
}

// T localizes key for the request language.
func T(ctx context.Context, key string, args ...any) string {
	return Printer(FromContext(ctx)).Sprintf(key, args...)
}

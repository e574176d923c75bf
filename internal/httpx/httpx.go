// Package httpx holds the JSON response helpers shared by every API route.
package httpx

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/i18n"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes a localized error message for key. detail is passed
// through untranslated and may be empty.
func WriteError(w http.ResponseWriter, r *http.Request, status int, key, detail string) {
	WriteJSON(w, status, ErrorBody{
		Error:  i18n.T(r.Context(), key),
		Detail: detail,
	})
}

// Internal logs err and answers with a generic 500.
func Internal(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	log.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	WriteError(w, r, http.StatusInternalServerError, i18n.MsgInternal, "")
}

// IntParam parses an optional integer query parameter. ok is false when the
// value is present but not a number.
func IntParam(r *http.Request, name string, def int) (n int, ok bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, false
	}
	return n, true
}

// ImageURL maps a data-relative image path onto the image proxy route.
func ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return "/api/image?src=" + url.QueryEscape(path)
}

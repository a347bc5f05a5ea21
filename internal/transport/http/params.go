package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// pathParam returns a decoded URL parameter. chi routes on RawPath when the
// request carries one, leaving names such as "rate%2Fyear" escaped; otherwise
// it routes on the already decoded Path.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// queryList returns the trimmed values of a repeated query parameter in
// request order.
func queryList(r *http.Request, name string) []string {
	values := r.URL.Query()[name]
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

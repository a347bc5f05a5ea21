package middleware

import (
	"fmt"
	"net/http"
	"strings"
)

// SecureHeaders provides configurable security headers
type SecureHeaders struct {
	// HSTS settings
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	ContentSecurityPolicy string

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	PermissionsPolicy   string

	// Development mode (relaxes some policies)
	DevMode bool
}

// DefaultSecureHeaders returns secure headers with default settings
func DefaultSecureHeaders() *SecureHeaders {
	return &SecureHeaders{
		HSTSMaxAge:            63072000, // 2 years
		HSTSIncludeSubdomains: true,
		XFrameOptions:         "DENY",
		XContentTypeOptions:   "nosniff",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

// SecurityHeaders adds the default security headers
func SecurityHeaders(next http.Handler) http.Handler {
	return DefaultSecureHeaders().Handler(next)
}

// Handler returns the middleware handler
func (sh *SecureHeaders) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		if sh.HSTSMaxAge > 0 && r.TLS != nil {
			hsts := fmt.Sprintf("max-age=%d", sh.HSTSMaxAge)
			if sh.HSTSIncludeSubdomains {
				hsts += "; includeSubDomains"
			}
			h.Set("Strict-Transport-Security", hsts)
		}

		if sh.ContentSecurityPolicy != "" {
			h.Set("Content-Security-Policy", sh.ContentSecurityPolicy)
		} else {
			h.Set("Content-Security-Policy", sh.defaultCSP())
		}

		if sh.XFrameOptions != "" {
			h.Set("X-Frame-Options", sh.XFrameOptions)
		}
		if sh.XContentTypeOptions != "" {
			h.Set("X-Content-Type-Options", sh.XContentTypeOptions)
		}
		if sh.ReferrerPolicy != "" {
			h.Set("Referrer-Policy", sh.ReferrerPolicy)
		}

		if sh.PermissionsPolicy != "" {
			h.Set("Permissions-Policy", sh.PermissionsPolicy)
		} else if !sh.DevMode {
			h.Set("Permissions-Policy", sh.defaultPermissionsPolicy())
		}

		next.ServeHTTP(w, r)
	})
}

// defaultCSP returns the default Content Security Policy. Charts are served
// as SVG or PNG from the same origin.
func (sh *SecureHeaders) defaultCSP() string {
	if sh.DevMode {
		return strings.Join([]string{
			"default-src 'self'",
			"img-src * data: blob:",
			"style-src 'self' 'unsafe-inline'",
			"connect-src *",
		}, "; ")
	}
	return strings.Join([]string{
		"default-src 'self'",
		"img-src 'self' data:",
		"style-src 'self' 'unsafe-inline'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}, "; ")
}

// defaultPermissionsPolicy returns the default Permissions Policy
func (sh *SecureHeaders) defaultPermissionsPolicy() string {
	return strings.Join([]string{
		"camera=()",
		"geolocation=()",
		"microphone=()",
		"payment=()",
		"usb=()",
	}, ", ")
}

package middleware

import (
	"net/http"
	"strings"
)

// ContentSecurityPolicy builds the CSP for the bundled frontend. extraImageSources
// are appended to img-src, e.g. the Cloudinary delivery host.
func ContentSecurityPolicy(extraImageSources ...string) string {
	imgSrc := append([]string{"'self'", "data:", "blob:"}, extraImageSources...)

	directives := []string{
		"default-src 'self'",
		"style-src 'self' 'unsafe-inline' https://unpkg.com",
		"script-src 'self' https://unpkg.com",
		"img-src " + strings.Join(imgSrc, " "),
		"connect-src 'self'",
		"font-src 'self'",
		"object-src 'none'",
		"media-src 'self'",
		"frame-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
	}
	return strings.Join(directives, "; ")
}

// SecurityHeaders sets the response headers every page and API response carries.
func SecurityHeaders(csp string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("X-DNS-Prefetch-Control", "off")
			next.ServeHTTP(w, r)
		})
	}
}

// LimitBody caps the size of request bodies.
func LimitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

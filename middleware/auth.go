package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"

	"civicreport/backend/models"
)

const sessionMaxAge = 24 * 60 * 60

// SessionChecker reports whether a token belongs to a live admin session.
type SessionChecker interface {
	Has(token string) bool
}

// AdminGate decides whether a request carries a valid admin session cookie.
type AdminGate struct {
	sessions   SessionChecker
	production bool
}

func NewAdminGate(sessions SessionChecker, production bool) *AdminGate {
	return &AdminGate{sessions: sessions, production: production}
}

// SessionToken returns the decoded admin cookie value, or "" when there is none.
func (g *AdminGate) SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(models.AdminCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	token, err := url.PathUnescape(cookie.Value)
	if err != nil {
		return cookie.Value
	}
	return token
}

// IsAdmin reports whether the request belongs to a logged-in admin.
func (g *AdminGate) IsAdmin(r *http.Request) bool {
	token := g.SessionToken(r)
	return token != "" && g.sessions.Has(token)
}

// RequireAdmin rejects requests without an admin session before next runs
func (g *AdminGate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.IsAdmin(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *AdminGate) SetSessionCookie(w http.ResponseWriter, token string) {
	cookie := g.baseCookie()
	cookie.Value = url.PathEscape(token)
	cookie.MaxAge = sessionMaxAge
	http.SetCookie(w, cookie)
}

func (g *AdminGate) ClearSessionCookie(w http.ResponseWriter) {
	cookie := g.baseCookie()
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
}

func (g *AdminGate) baseCookie() *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if g.production {
		sameSite = http.SameSiteStrictMode
	}
	return &http.Cookie{
		Name:     models.AdminCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   g.production,
		SameSite: sameSite,
	}
}

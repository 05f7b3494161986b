package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// stubSessions is a fixed set of live tokens
type stubSessions map[string]bool

func (s stubSessions) Has(token string) bool {
	return s[token]
}

func TestSessionToken(t *testing.T) {
	gate := NewAdminGate(stubSessions{}, false)

	testCases := []struct {
		name          string
		cookie        string
		expectedToken string
	}{
		{
			name:          "Plain token",
			cookie:        "abc123",
			expectedToken: "abc123",
		},
		{
			name:          "Percent-encoded token",
			cookie:        "abc%20123",
			expectedToken: "abc 123",
		},
		{
			name:          "Malformed encoding keeps raw value",
			cookie:        "abc%zz",
			expectedToken: "abc%zz",
		},
		{
			name:          "No cookie",
			cookie:        "",
			expectedToken: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/admin/me", nil)
			if tc.cookie != "" {
				req.Header.Set("Cookie", "admin_session="+tc.cookie)
			}

			if token := gate.SessionToken(req); token != tc.expectedToken {
				t.Errorf("Expected token '%s', got '%s'", tc.expectedToken, token)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	gate := NewAdminGate(stubSessions{"live": true}, false)

	testCases := []struct {
		name     string
		cookie   string
		expected bool
	}{
		{"Live session", "admin_session=live", true},
		{"Unknown token", "admin_session=stale", false},
		{"Empty cookie", "admin_session=", false},
		{"Other cookie only", "theme=dark", false},
		{"No cookie", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.cookie != "" {
				req.Header.Set("Cookie", tc.cookie)
			}
			if got := gate.IsAdmin(req); got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	gate := NewAdminGate(stubSessions{"live": true}, false)

	called := false
	handler := gate.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("DELETE", "/api/reports/r_1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if called {
		t.Error("Protected handler must not run without a session")
	}
	if body := strings.TrimSpace(rr.Body.String()); body != `{"error":"Unauthorized"}` {
		t.Errorf("Unexpected body %s", body)
	}

	req = httptest.NewRequest("DELETE", "/api/reports/r_1", nil)
	req.Header.Set("Cookie", "admin_session=live")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || !called {
		t.Errorf("Expected protected handler to run, status %d", rr.Code)
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	testCases := []struct {
		name       string
		production bool
		sameSite   http.SameSite
	}{
		{"Development", false, http.SameSiteLaxMode},
		{"Production", true, http.SameSiteStrictMode},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gate := NewAdminGate(stubSessions{}, tc.production)

			rr := httptest.NewRecorder()
			gate.SetSessionCookie(rr, "tok")
			cookies := rr.Result().Cookies()
			if len(cookies) != 1 {
				t.Fatalf("Expected one cookie, got %d", len(cookies))
			}
			c := cookies[0]
			if c.Name != "admin_session" || c.Value != "tok" {
				t.Errorf("Unexpected cookie %s=%s", c.Name, c.Value)
			}
			if !c.HttpOnly || c.Path != "/" || c.MaxAge != 86400 {
				t.Errorf("Unexpected cookie attributes %+v", c)
			}
			if c.SameSite != tc.sameSite {
				t.Errorf("Expected SameSite %v, got %v", tc.sameSite, c.SameSite)
			}
			if c.Secure != tc.production {
				t.Errorf("Expected Secure=%v, got %v", tc.production, c.Secure)
			}

			rr = httptest.NewRecorder()
			gate.ClearSessionCookie(rr)
			cleared := rr.Result().Cookies()
			if len(cleared) != 1 || cleared[0].MaxAge != -1 || cleared[0].Value != "" {
				t.Errorf("Expected an expired empty cookie, got %+v", cleared)
			}
		})
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIsAllowedOrigin(t *testing.T) {
	allowedOrigins := []string{
		"https://example.com",
		"http://localhost:5173",
	}

	testCases := []struct {
		name     string
		origin   string
		expected bool
	}{
		{
			name:     "Allowed origin",
			origin:   "https://example.com",
			expected: true,
		},
		{
			name:     "Another allowed origin",
			origin:   "http://localhost:5173",
			expected: true,
		},
		{
			name:     "Disallowed origin",
			origin:   "https://evil.com",
			expected: false,
		},
		{
			name:     "Empty origin",
			origin:   "",
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := isAllowedOrigin(tc.origin, allowedOrigins)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v for origin %s", tc.expected, result, tc.origin)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	allowed := []string{"https://reports.example"}

	testCases := []struct {
		name           string
		production     bool
		method         string
		origin         string
		expectedStatus int
		expectedOrigin string
	}{
		{
			name:           "Development echoes any origin",
			method:         "GET",
			origin:         "http://localhost:5173",
			expectedStatus: http.StatusOK,
			expectedOrigin: "http://localhost:5173",
		},
		{
			name:           "Development preflight",
			method:         "OPTIONS",
			origin:         "http://localhost:5173",
			expectedStatus: http.StatusNoContent,
			expectedOrigin: "http://localhost:5173",
		},
		{
			name:           "Production allowed origin",
			production:     true,
			method:         "GET",
			origin:         "https://reports.example",
			expectedStatus: http.StatusOK,
			expectedOrigin: "https://reports.example",
		},
		{
			name:           "Production disallowed origin",
			production:     true,
			method:         "GET",
			origin:         "https://evil.com",
			expectedStatus: http.StatusOK,
			expectedOrigin: "",
		},
		{
			name:           "Request with no origin",
			method:         "GET",
			origin:         "",
			expectedStatus: http.StatusOK,
			expectedOrigin: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := CORS(allowed, tc.production)(testHandler)

			req := httptest.NewRequest(tc.method, "/api/reports", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, rr.Code)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tc.expectedOrigin {
				t.Errorf("Expected allow-origin %q, got %q", tc.expectedOrigin, got)
			}
			if tc.expectedOrigin != "" && rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("Expected credentials to be allowed")
			}
			if methods := rr.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(methods, "DELETE") {
				t.Errorf("Expected DELETE in allowed methods, got %q", methods)
			}
			if headers := rr.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(headers, "Cookie") {
				t.Errorf("Expected Cookie in allowed headers, got %q", headers)
			}
		})
	}
}

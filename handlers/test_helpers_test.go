package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"civicreport/backend/middleware"
	"civicreport/backend/services"
	"civicreport/backend/store"

	"github.com/gorilla/mux"
)

const (
	testAdminUser = "admin"
	testAdminPass = "admin123"
	testMaxImage  = 1024
)

// testEnv wires the handlers to a temporary JSON store and uploads directory
type testEnv struct {
	router   *mux.Router
	sessions *services.SessionRegistry
	store    *store.JSONFileStore
	uploads  string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	reports, err := store.OpenJSONFileStore(filepath.Join(dir, "data", "reports.json"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	uploads := filepath.Join(dir, "uploads")
	images, err := services.NewDiskImageStore(uploads)
	if err != nil {
		t.Fatalf("Failed to create image store: %v", err)
	}

	sessions := services.NewSessionRegistry()
	gate := middleware.NewAdminGate(sessions, false)
	admin := NewAdminHandler(services.NewAdminAuth(testAdminUser, testAdminPass, sessions), gate)
	reportHandler := NewReportHandler(services.NewReportService(reports, images), testMaxImage)

	r := mux.NewRouter()
	r.HandleFunc("/api/admin/me", admin.Me).Methods("GET")
	r.HandleFunc("/api/admin/login", admin.Login).Methods("POST")
	r.HandleFunc("/api/admin/logout", admin.Logout).Methods("POST")
	r.HandleFunc("/api/reports", reportHandler.List).Methods("GET")
	r.HandleFunc("/api/reports", reportHandler.Create).Methods("POST")
	r.Handle("/api/reports/{id}/resolve", gate.RequireAdmin(http.HandlerFunc(reportHandler.Resolve))).Methods("PUT")
	r.Handle("/api/reports/{id}", gate.RequireAdmin(http.HandlerFunc(reportHandler.Delete))).Methods("DELETE")
	r.HandleFunc("/api/health", HealthCheck).Methods("GET")

	return &testEnv{router: r, sessions: sessions, store: reports, uploads: uploads}
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// adminCookie logs in directly through the registry
func (e *testEnv) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := e.sessions.Create()
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return &http.Cookie{Name: "admin_session", Value: token}
}

type filePart struct {
	field    string
	filename string
	content  []byte
}

// multipartRequest builds a POST /api/reports request
func multipartRequest(t *testing.T, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatalf("Failed to create file part: %v", err)
		}
		if _, err := fw.Write(f.content); err != nil {
			t.Fatalf("Failed to write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/reports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

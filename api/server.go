package api

import (
	"net/http"
	"os"
	"path/filepath"

	"civicreport/backend/handlers"
	"civicreport/backend/middleware"
	"civicreport/backend/services"

	"github.com/gorilla/mux"
)

// maxRequestBody caps JSON and urlencoded bodies
const maxRequestBody = 10 << 20

// Deps are the collaborators the API server routes to.
type Deps struct {
	Reports        *services.ReportService
	Auth           *services.AdminAuth
	Gate           *middleware.AdminGate
	AllowedOrigins []string
	Production     bool
	MaxImageBytes  int64
	// UploadsDir is served at /uploads/ when set. Leave it empty for remote image stores.
	UploadsDir string
	PublicDir  string
	// ImageSources are extra img-src entries for the content security policy
	ImageSources []string
}

// Server represents the API server
type Server struct {
	router  *mux.Router
	reports *handlers.ReportHandler
	admin   *handlers.AdminHandler
	gate    *middleware.AdminGate
	deps    Deps
}

// NewServer creates a new API server
func NewServer(deps Deps) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		reports: handlers.NewReportHandler(deps.Reports, deps.MaxImageBytes),
		admin:   handlers.NewAdminHandler(deps.Auth, deps.Gate),
		gate:    deps.Gate,
		deps:    deps,
	}
	s.RegisterRoutes()
	return s
}

// RegisterRoutes registers all API routes
func (s *Server) RegisterRoutes() {
	bodyLimit := int64(maxRequestBody)
	if limit := s.deps.MaxImageBytes + 1<<20; limit > bodyLimit {
		bodyLimit = limit
	}

	// Apply global middleware
	s.router.Use(middleware.LogRequests)
	s.router.Use(middleware.SecurityHeaders(middleware.ContentSecurityPolicy(s.deps.ImageSources...)))
	s.router.Use(middleware.CORS(s.deps.AllowedOrigins, s.deps.Production))
	s.router.Use(middleware.LimitBody(bodyLimit))

	api := s.router.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/health", handlers.HealthCheck).Methods("GET", "OPTIONS")
	api.HandleFunc("/admin/me", s.admin.Me).Methods("GET", "OPTIONS")
	api.HandleFunc("/admin/login", s.admin.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/admin/logout", s.admin.Logout).Methods("POST", "OPTIONS")
	api.HandleFunc("/reports", s.reports.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports", s.reports.Create).Methods("POST")

	// Admin-only routes
	protected := api.PathPrefix("/reports").Subrouter()
	protected.Use(s.gate.RequireAdmin)
	protected.HandleFunc("/{id}/resolve", s.reports.Resolve).Methods("PUT")
	protected.HandleFunc("/{id}", s.reports.Delete).Methods("DELETE")

	// Preflight for the admin routes must not hit the session check
	api.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if s.deps.UploadsDir != "" {
		uploads := sandboxed(http.StripPrefix(services.UploadsURLPrefix, http.FileServer(noListing{http.Dir(s.deps.UploadsDir)})))
		s.router.PathPrefix(services.UploadsURLPrefix).Handler(uploads).Methods("GET", "HEAD")
	}

	if s.deps.PublicDir != "" {
		s.router.PathPrefix("/").Handler(s.frontend()).Methods("GET", "HEAD")
	}
}

// frontend serves files from the public directory and index.html for "/"
func (s *Server) frontend() http.Handler {
	fs := http.FileServer(noListing{http.Dir(s.deps.PublicDir)})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.ServeFile(w, r, filepath.Join(s.deps.PublicDir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// sandboxed serves user uploads under a CSP sandbox so they never run as
// active content on this origin.
func sandboxed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "sandbox")
		next.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP handler for the API server
func (s *Server) Handler() http.Handler {
	return s.router
}

// noListing hides directory indexes
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := n.fs.Open(filepath.ToSlash(filepath.Join(name, "index.html")))
		if err != nil {
			f.Close()
			return nil, os.ErrNotExist
		}
		index.Close()
	}
	return f, nil
}

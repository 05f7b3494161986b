package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civicreport/backend/api"
	"civicreport/backend/config"
	"civicreport/backend/database"
	"civicreport/backend/middleware"
	"civicreport/backend/models"
	"civicreport/backend/services"
	"civicreport/backend/store"

	"github.com/joho/godotenv"
)

const cloudinaryDeliveryHost = "https://res.cloudinary.com"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Production {
		log.Println("Running in production environment")
	} else {
		log.Println("Running in development environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Server terminated: %v", err)
	}
	log.Println("Server stopped cleanly")
}

func run(ctx context.Context, cfg config.Config) error {
	reports, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := reports.Close(); cerr != nil {
			log.Printf("Error closing report store: %v", cerr)
		}
	}()

	deps := api.Deps{
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.Production,
		MaxImageBytes:  cfg.MaxUploadBytes,
		PublicDir:      cfg.PublicDir,
	}

	var images services.ImageStore
	if cfg.CloudinaryURL != "" {
		cld, err := services.NewCloudinaryImageStore(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			return err
		}
		log.Printf("Storing images in Cloudinary folder %s", cfg.CloudinaryFolder)
		images = cld
		deps.ImageSources = []string{cloudinaryDeliveryHost}
	} else {
		disk, err := services.NewDiskImageStore(cfg.UploadsDir)
		if err != nil {
			return err
		}
		log.Printf("Storing images in %s", cfg.UploadsDir)
		images = disk
		deps.UploadsDir = cfg.UploadsDir

		services.StartScheduler(ctx, services.NewOrphanSweeper(reports, cfg.UploadsDir), cfg.OrphanSweepInterval)
	}

	sessions := services.NewSessionRegistry()
	deps.Reports = services.NewReportService(reports, images)
	deps.Auth = services.NewAdminAuth(cfg.AdminUser, cfg.AdminPass, sessions)
	deps.Gate = middleware.NewAdminGate(sessions, cfg.Production)

	srv := newHTTPServer(cfg.Port, api.NewServer(deps).Handler())

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server running at http://localhost:%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// Upload bodies are size-capped but may arrive slowly. For HTTP/1 the write
// deadline starts after the headers are read, so it covers the body as well.
const (
	readHeaderTimeout = 15 * time.Second
	bodyTimeout       = 5 * time.Minute
	idleTimeout       = 60 * time.Second
)

func newHTTPServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		Addr:              fmt.Sprintf(":%d", port),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       bodyTimeout,
		WriteTimeout:      bodyTimeout,
		IdleTimeout:       idleTimeout,
	}
}

func openStore(cfg config.Config) (store.ReportStore, error) {
	switch cfg.StoreBackend {
	case models.BackendSQLite:
		db, err := database.Init(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Printf("Using SQLite report store at %s", cfg.DatabasePath)
		return store.NewSQLiteStore(db), nil
	default:
		s, err := store.OpenJSONFileStore(cfg.ReportsFile())
		if err != nil {
			return nil, err
		}
		log.Printf("Using JSON report store at %s", s.Path())
		return s, nil
	}
}

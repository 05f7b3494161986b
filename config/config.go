package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"civicreport/backend/models"
)

// Config lists the tunable parameters of the report server.
type Config struct {
	Port                int
	Production          bool
	AdminUser           string
	AdminPass           string
	DataDir             string
	UploadsDir          string
	PublicDir           string
	StoreBackend        string
	DatabasePath        string
	AllowedOrigins      []string
	CloudinaryURL       string
	CloudinaryFolder    string
	MaxUploadBytes      int64
	OrphanSweepInterval time.Duration
}

const (
	defaultPort                = 3000
	defaultAdminUser           = "admin"
	defaultAdminPass           = "admin123"
	defaultDataDir             = "data"
	defaultUploadsDir          = "uploads"
	defaultPublicDir           = "public"
	defaultAllowedOrigin       = "http://localhost:3000"
	defaultCloudinaryFolder    = "civicreport/reports"
	defaultMaxUploadBytes      = 8 << 20
	defaultOrphanSweepInterval = 24 * time.Hour
)

// Load derives configuration values from environment variables, falling back to defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                defaultPort,
		Production:          isProduction(),
		AdminUser:           defaultAdminUser,
		AdminPass:           defaultAdminPass,
		DataDir:             defaultDataDir,
		UploadsDir:          defaultUploadsDir,
		PublicDir:           defaultPublicDir,
		StoreBackend:        models.BackendJSON,
		AllowedOrigins:      []string{defaultAllowedOrigin},
		CloudinaryFolder:    defaultCloudinaryFolder,
		MaxUploadBytes:      defaultMaxUploadBytes,
		OrphanSweepInterval: defaultOrphanSweepInterval,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := os.Getenv("ADMIN_USER"); v != "" {
		cfg.AdminUser = v
	}
	if v := os.Getenv("ADMIN_PASS"); v != "" {
		cfg.AdminPass = v
	}
	if cfg.Production && (cfg.AdminUser == defaultAdminUser || cfg.AdminPass == defaultAdminPass) {
		log.Println("Warning: ADMIN_USER/ADMIN_PASS not set, using default admin credentials. This is NOT secure for production!")
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("UPLOADS_DIR"); v != "" {
		cfg.UploadsDir = v
	}
	if v := os.Getenv("PUBLIC_DIR"); v != "" {
		cfg.PublicDir = v
	}

	if v := os.Getenv("STORE_BACKEND"); v != "" {
		backend := strings.ToLower(strings.TrimSpace(v))
		if backend != models.BackendJSON && backend != models.BackendSQLite {
			return Config{}, fmt.Errorf("invalid STORE_BACKEND %q: must be %q or %q", v, models.BackendJSON, models.BackendSQLite)
		}
		cfg.StoreBackend = backend
	}

	cfg.DatabasePath = filepath.Join(cfg.DataDir, "reports.db")
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	cfg.CloudinaryURL = os.Getenv("CLOUDINARY_URL")
	if v := os.Getenv("CLOUDINARY_FOLDER"); v != "" {
		cfg.CloudinaryFolder = v
	}

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid MAX_UPLOAD_BYTES %q", v)
		}
		cfg.MaxUploadBytes = n
	}

	if v := os.Getenv("ORPHAN_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("invalid ORPHAN_SWEEP_INTERVAL %q", v)
		}
		cfg.OrphanSweepInterval = d
	}

	return cfg, nil
}

// ReportsFile is the JSON document used by the flat-file backend.
func (c Config) ReportsFile() string {
	return filepath.Join(c.DataDir, "reports.json")
}

// isProduction checks every variable deployments commonly use to name the environment
func isProduction() bool {
	for _, key := range []string{"APP_ENV", "NODE_ENV", "ENVIRONMENT", "ENV"} {
		if strings.EqualFold(os.Getenv(key), "production") {
			return true
		}
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

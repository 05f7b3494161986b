package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"civicreport/backend/models"
	"civicreport/backend/store"
)

func writeUpload(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("img"), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	mod := time.Now().Add(-age)
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatalf("Failed to age %s: %v", name, err)
	}
}

func TestOrphanSweep(t *testing.T) {
	root := t.TempDir()
	uploads := filepath.Join(root, "uploads")
	if err := os.MkdirAll(uploads, 0o755); err != nil {
		t.Fatalf("Failed to create uploads dir: %v", err)
	}

	reports, err := store.OpenJSONFileStore(filepath.Join(root, "reports.json"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	ctx := context.Background()
	_, err = reports.Create(ctx, models.NewReport{Description: "kept", Lat: 1, Lng: 2, ImageURL: "/uploads/kept.png"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	writeUpload(t, uploads, "kept.png", 48*time.Hour)
	writeUpload(t, uploads, "orphan.png", 48*time.Hour)
	writeUpload(t, uploads, "fresh.png", time.Minute)
	writeUpload(t, uploads, ".gitkeep", 48*time.Hour)

	sweeper := NewOrphanSweeper(reports, uploads)
	removed, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed file, got %d", removed)
	}

	for name, wantExists := range map[string]bool{
		"kept.png":   true,
		"orphan.png": false,
		"fresh.png":  true,
		".gitkeep":   true,
	} {
		_, err := os.Stat(filepath.Join(uploads, name))
		if exists := err == nil; exists != wantExists {
			t.Errorf("%s: expected exists=%v, got %v", name, wantExists, exists)
		}
	}
}

func TestOrphanSweepStorageFailureRemovesNothing(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "reports.json")
	reports, err := store.OpenJSONFileStore(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("Failed to corrupt document: %v", err)
	}

	writeUpload(t, root, "orphan.png", 48*time.Hour)

	sweeper := NewOrphanSweeper(reports, root)
	if _, err := sweeper.Sweep(context.Background()); err == nil {
		t.Fatal("Expected sweep to fail when reports cannot be read")
	}
	if _, err := os.Stat(filepath.Join(root, "orphan.png")); err != nil {
		t.Error("Expected no files to be removed")
	}
}

func TestStartSchedulerRunsImmediately(t *testing.T) {
	root := t.TempDir()
	uploads := filepath.Join(root, "uploads")
	if err := os.MkdirAll(uploads, 0o755); err != nil {
		t.Fatalf("Failed to create uploads dir: %v", err)
	}
	reports, err := store.OpenJSONFileStore(filepath.Join(root, "reports.json"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	writeUpload(t, uploads, "orphan.png", 48*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartScheduler(ctx, NewOrphanSweeper(reports, uploads), time.Hour)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(filepath.Join(uploads, "orphan.png")); os.IsNotExist(err) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("Expected the first sweep to run on start")
}

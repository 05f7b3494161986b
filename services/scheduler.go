package services

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"civicreport/backend/store"
)

// OrphanGracePeriod protects images whose report may still be being created
const OrphanGracePeriod = time.Hour

// StartScheduler starts the periodic orphan image sweep. It runs once
// immediately and then every interval until ctx is cancelled.
func StartScheduler(ctx context.Context, sweeper *OrphanSweeper, interval time.Duration) {
	if sweeper == nil || interval <= 0 {
		log.Println("Orphan image sweep disabled")
		return
	}

	log.Printf("Starting task scheduler, orphan image sweep every %v", interval)
	go runSweepLoop(ctx, sweeper, interval)
}

func runSweepLoop(ctx context.Context, sweeper *OrphanSweeper, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if removed, err := sweeper.Sweep(ctx); err != nil {
			log.Printf("Orphan image sweep failed: %v", err)
		} else if removed > 0 {
			log.Printf("Orphan image sweep removed %d file(s)", removed)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// OrphanSweeper deletes files in the uploads directory that no report references.
type OrphanSweeper struct {
	reports store.ReportStore
	dir     string
	grace   time.Duration
	now     func() time.Time
}

func NewOrphanSweeper(reports store.ReportStore, dir string) *OrphanSweeper {
	return &OrphanSweeper{reports: reports, dir: dir, grace: OrphanGracePeriod, now: time.Now}
}

// Sweep removes unreferenced files older than the grace period and returns how many it removed.
func (s *OrphanSweeper) Sweep(ctx context.Context) (int, error) {
	reports, err := s.reports.List(ctx)
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]struct{}, len(reports))
	for _, r := range reports {
		if name, ok := uploadName(r.ImageURL); ok {
			referenced[name] = struct{}{}
		}
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.grace)
	removed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, ok := referenced[entry.Name()]; ok {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			log.Printf("Failed to remove orphan image %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	return removed, nil
}

package migrations

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"civicreport/backend/models"
)

type demoReport struct {
	id          string
	description string
	lat, lng    float64
	status      string
	age         time.Duration
}

var demoReports = []demoReport{
	{"r_demo_1", "Pothole near the bus stop", 12.9716, 77.5946, "Pending", 72 * time.Hour},
	{"r_demo_2", "Streetlight out on the corner", 12.9352, 77.6245, "Resolved", 48 * time.Hour},
	{"r_demo_3", "Overflowing garbage bin", 12.9081, 77.6476, "Pending", 2 * time.Hour},
}

// SeedTestData replaces the reports table with a handful of demo reports.
// It refuses to run in production.
func SeedTestData(db *sql.DB, production bool) error {
	if production {
		log.Println("Refusing to seed test data in production environment")
		return nil
	}

	log.Println("Seeding demo reports...")

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM reports"); err != nil {
		return fmt.Errorf("failed to clear reports: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	// oldest first so the newest ends up with the highest seq
	for _, r := range demoReports {
		created := now.Add(-r.age)
		var resolvedAt interface{}
		if r.status == "Resolved" {
			resolvedAt = models.FormatTimestamp(created.Add(time.Hour))
		}

		_, err := tx.Exec(`
			INSERT INTO reports (id, description, lat, lng, image_url, status, created_at, resolved_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.id, r.description, r.lat, r.lng, "/uploads/"+r.id+".png", r.status, models.FormatTimestamp(created), resolvedAt)
		if err != nil {
			return fmt.Errorf("failed to insert demo report %s: %w", r.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit demo reports: %w", err)
	}

	log.Printf("Seeded %d demo reports", len(demoReports))
	return nil
}

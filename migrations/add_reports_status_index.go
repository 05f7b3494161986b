package migrations

import (
	"database/sql"
	"log"
)

// AddReportsStatusIndex indexes reports by status for the admin dashboard
func AddReportsStatusIndex(db *sql.DB) error {
	log.Println("Adding status index to reports table...")

	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);`)
	if err != nil {
		log.Printf("Error adding reports status index: %v", err)
		return err
	}

	return nil
}

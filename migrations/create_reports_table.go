package migrations

import (
	"database/sql"
	"log"
)

// CreateReportsTable creates the reports table. seq keeps insertion order so
// listing can return the newest report first.
func CreateReportsTable(db *sql.DB) error {
	log.Println("Creating reports table...")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			image_url TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Pending',
			created_at TEXT NOT NULL,
			resolved_at TEXT
		);
	`)
	if err != nil {
		log.Printf("Error creating reports table: %v", err)
		return err
	}

	log.Println("Reports table created successfully")
	return nil
}

package migrations

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"civicreport/backend/models"
)

// ImportJSONReports copies the reports of a flat JSON document into the
// reports table. The document is newest first, so it is inserted in reverse
// to keep the same listing order. Reports whose id already exists are skipped.
// It returns the number of reports inserted.
func ImportJSONReports(db *sql.DB, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read report document: %w", err)
	}

	var reports []models.Report
	if err := json.Unmarshal(raw, &reports); err != nil {
		return 0, fmt.Errorf("decode report document: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	imported := 0
	for i := len(reports) - 1; i >= 0; i-- {
		r := reports[i]
		if r.Status == "" {
			r.Status = models.StatusPending
		}

		var resolvedAt sql.NullString
		if r.ResolvedAt != nil {
			resolvedAt = sql.NullString{String: models.FormatTimestamp(*r.ResolvedAt), Valid: true}
		}

		res, err := tx.Exec(`
			INSERT INTO reports (id, description, lat, lng, image_url, status, created_at, resolved_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, r.ID, r.Description, r.Lat, r.Lng, r.ImageURL, string(r.Status),
			models.FormatTimestamp(r.CreatedAt), resolvedAt)
		if err != nil {
			return 0, fmt.Errorf("insert report %s: %w", r.ID, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert report %s: %w", r.ID, err)
		}
		imported += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	log.Printf("Imported %d of %d reports from %s", imported, len(reports), path)
	return imported, nil
}

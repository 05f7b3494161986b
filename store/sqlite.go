package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"civicreport/backend/models"
)

const reportColumns = `id, description, lat, lng, image_url, status, created_at, resolved_at`

// SQLiteStore keeps reports in the reports table created by migrations.
// Mutations run in transactions over a single connection.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an initialized database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// DB exposes the underlying sql.DB for callers that need raw access.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) List(ctx context.Context) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY seq DESC;`)
	if err != nil {
		return nil, &models.StorageError{Op: "query reports", Err: err}
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, &models.StorageError{Op: "scan report", Err: err}
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "iterate reports", Err: err}
	}
	return reports, nil
}

func (s *SQLiteStore) Create(ctx context.Context, in models.NewReport) (models.Report, error) {
	if err := in.Validate(); err != nil {
		return models.Report{}, err
	}

	report := newReport(in)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, description, lat, lng, image_url, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);`,
		report.ID,
		report.Description,
		report.Lat,
		report.Lng,
		report.ImageURL,
		string(report.Status),
		formatTime(report.CreatedAt),
	)
	if err != nil {
		return models.Report{}, &models.StorageError{Op: "insert report", Err: err}
	}
	return report, nil
}

func (s *SQLiteStore) Resolve(ctx context.Context, id string) (models.Report, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Report{}, &models.StorageError{Op: "begin resolve", Err: err}
	}
	defer tx.Rollback()

	report, err := getReport(ctx, tx, id)
	if err != nil {
		return models.Report{}, err
	}

	if !resolve(&report) {
		return report, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE reports SET status = ?, resolved_at = ? WHERE id = ?;`,
		string(report.Status), formatTime(*report.ResolvedAt), id)
	if err != nil {
		return models.Report{}, &models.StorageError{Op: "resolve report", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return models.Report{}, &models.StorageError{Op: "commit resolve", Err: err}
	}
	return report, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) (models.Report, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Report{}, &models.StorageError{Op: "begin delete", Err: err}
	}
	defer tx.Rollback()

	report, err := getReport(ctx, tx, id)
	if err != nil {
		return models.Report{}, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = ?;`, id); err != nil {
		return models.Report{}, &models.StorageError{Op: "delete report", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return models.Report{}, &models.StorageError{Op: "commit delete", Err: err}
	}
	return report, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func getReport(ctx context.Context, tx *sql.Tx, id string) (models.Report, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?;`, id)
	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Report{}, models.NotFound(id)
	}
	if err != nil {
		return models.Report{}, &models.StorageError{Op: "get report", Err: err}
	}
	return report, nil
}

func scanReport(row rowScanner) (models.Report, error) {
	var (
		r            models.Report
		status       string
		createdAtStr string
		resolvedAt   sql.NullString
	)
	if err := row.Scan(&r.ID, &r.Description, &r.Lat, &r.Lng, &r.ImageURL, &status, &createdAtStr, &resolvedAt); err != nil {
		return models.Report{}, err
	}

	r.Status = models.ReportStatus(status)

	createdAt, err := parseTime(createdAtStr)
	if err != nil {
		return models.Report{}, err
	}
	r.CreatedAt = createdAt

	if resolvedAt.Valid {
		ts, err := parseTime(resolvedAt.String)
		if err != nil {
			return models.Report{}, err
		}
		r.ResolvedAt = &ts
	}
	return r, nil
}

func formatTime(t time.Time) string {
	return models.FormatTimestamp(t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

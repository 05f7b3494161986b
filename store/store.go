// Package store persists reports. Every implementation serialises its
// mutations so concurrent requests cannot overwrite each other's changes.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"civicreport/backend/models"

	"github.com/google/uuid"
)

// ReportStore owns the ordered, newest-first sequence of reports.
type ReportStore interface {
	// List returns every report, newest first.
	List(ctx context.Context) ([]models.Report, error)
	// Create validates the input and prepends a new pending report.
	Create(ctx context.Context, in models.NewReport) (models.Report, error)
	// Resolve marks a report resolved. Resolving twice is a no-op.
	Resolve(ctx context.Context, id string) (models.Report, error)
	// Delete removes a report and returns the removed record.
	Delete(ctx context.Context, id string) (models.Report, error)
	Close() error
}

// clock is swapped in tests
var now = time.Now

// newReport builds the record for a validated input.
func newReport(in models.NewReport) models.Report {
	return models.Report{
		ID:          newReportID(),
		Description: strings.TrimSpace(in.Description),
		Lat:         in.Lat,
		Lng:         in.Lng,
		ImageURL:    in.ImageURL,
		Status:      models.StatusPending,
		CreatedAt:   models.Timestamp(now()),
	}
}

// newReportID returns r_<unix millis>_<12 random hex chars>.
func newReportID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("r_%d_%s", now().UnixMilli(), random[:12])
}

// resolve applies the Pending to Resolved transition in place. It reports
// whether anything changed.
func resolve(r *models.Report) bool {
	if r.IsResolved() && r.ResolvedAt != nil {
		return false
	}
	resolvedAt := models.Timestamp(now())
	r.Status = models.StatusResolved
	r.ResolvedAt = &resolvedAt
	return true
}

func indexOf(reports []models.Report, id string) int {
	for i := range reports {
		if reports[i].ID == id {
			return i
		}
	}
	return -1
}

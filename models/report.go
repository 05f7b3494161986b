package models

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Report is a single citizen complaint: a photo pinned to a location.
type Report struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	Lat         float64      `json:"lat"`
	Lng         float64      `json:"lng"`
	ImageURL    string       `json:"imageUrl"`
	Status      ReportStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	ResolvedAt  *time.Time   `json:"resolvedAt,omitempty"`
}

// NewReport is the validated input for creating a report.
type NewReport struct {
	Description string
	Lat         float64
	Lng         float64
	ImageURL    string
}

// Validate checks the fields a stored report cannot do without.
func (n NewReport) Validate() error {
	if err := ValidateCoordinates(n.Lat, n.Lng); err != nil {
		return err
	}
	if strings.TrimSpace(n.ImageURL) == "" {
		return NewValidationError("Image is required")
	}
	return nil
}

// ValidateCoordinates rejects NaN and infinite coordinates.
func ValidateCoordinates(lat, lng float64) error {
	if !isFinite(lat) || !isFinite(lng) {
		return NewValidationError("Valid GPS coordinates are required")
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsResolved reports whether the report has been closed by an admin.
func (r Report) IsResolved() bool {
	return r.Status == StatusResolved
}

// Timestamp returns t in UTC truncated to milliseconds, the precision used
// by the persisted documents.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// TimestampLayout is ISO 8601 in UTC with exactly three fractional digits.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// MarshalJSON writes timestamps with fixed millisecond precision.
func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	out := struct {
		plain
		CreatedAt  string  `json:"createdAt"`
		ResolvedAt *string `json:"resolvedAt,omitempty"`
	}{
		plain:     plain(r),
		CreatedAt: FormatTimestamp(r.CreatedAt),
	}
	if r.ResolvedAt != nil {
		resolved := FormatTimestamp(*r.ResolvedAt)
		out.ResolvedAt = &resolved
	}
	return json.Marshal(out)
}

package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"civicreport/backend/models"
	"civicreport/backend/services"

	"github.com/gorilla/mux"
)

// maxFieldBytes bounds each non-file multipart field
const maxFieldBytes = 64 << 10

// ReportHandler serves the report endpoints.
type ReportHandler struct {
	reports       *services.ReportService
	maxImageBytes int64
}

func NewReportHandler(reports *services.ReportService, maxImageBytes int64) *ReportHandler {
	return &ReportHandler{reports: reports, maxImageBytes: maxImageBytes}
}

// List handles GET /api/reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to read reports")
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// Create handles POST /api/reports with a multipart body carrying one image
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.readSubmission(r)
	if err != nil {
		writeServiceError(w, err, "Failed to create report")
		return
	}

	report, err := h.reports.Submit(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, "Failed to create report")
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// Resolve handles PUT /api/reports/{id}/resolve
func (h *ReportHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	report, err := h.reports.Resolve(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to resolve report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Delete handles DELETE /api/reports/{id}
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.reports.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "Failed to delete report")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// readSubmission streams the multipart body. The image is buffered in memory
// up to maxImageBytes so an oversized upload never reaches the image store.
// A body that is not multipart simply has no image.
func (h *ReportHandler) readSubmission(r *http.Request) (services.SubmitInput, error) {
	var in services.SubmitInput

	mr, err := r.MultipartReader()
	if err != nil {
		return in, nil
	}

	seen := map[string]bool{}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return in, bodyError(err)
		}

		name := part.FormName()
		if part.FileName() != "" {
			if name != "image" {
				part.Close()
				return in, models.NewValidationError("Unexpected file field " + name)
			}
			if in.HasImage {
				part.Close()
				return in, models.NewValidationError("Only one image is allowed")
			}

			var buf bytes.Buffer
			n, err := io.Copy(&buf, io.LimitReader(part, h.maxImageBytes+1))
			part.Close()
			if err != nil {
				return in, bodyError(err)
			}
			if n > h.maxImageBytes {
				return in, models.NewValidationError("Image must be " + formatSize(h.maxImageBytes) + " or smaller")
			}

			in.Image = bytes.NewReader(buf.Bytes())
			in.Filename = part.FileName()
			in.HasImage = true
			continue
		}

		value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
		part.Close()
		if err != nil {
			return in, bodyError(err)
		}
		if len(value) > maxFieldBytes {
			return in, models.NewValidationError("Field too long")
		}
		// the first occurrence of a field wins
		if seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case "description":
			in.Description = string(value)
		case "lat":
			in.Lat = string(value)
		case "lng":
			in.Lng = string(value)
		}
	}

	return in, nil
}

func formatSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return models.NewValidationError("Request body too large")
	}
	return models.NewValidationError("Malformed multipart body")
}

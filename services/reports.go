package services

import (
	"context"
	"io"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"civicreport/backend/models"
	"civicreport/backend/store"
)

// imageRemovalTimeout bounds the background removal of a deleted report's image
const imageRemovalTimeout = 30 * time.Second

// ReportService orchestrates the report store and the image store.
type ReportService struct {
	store  store.ReportStore
	images ImageStore
}

func NewReportService(reports store.ReportStore, images ImageStore) *ReportService {
	return &ReportService{store: reports, images: images}
}

// SubmitInput carries the raw fields of a citizen submission.
type SubmitInput struct {
	Description string
	Lat         string
	Lng         string
	Image       io.Reader
	Filename    string
	HasImage    bool
}

func (s *ReportService) List(ctx context.Context) ([]models.Report, error) {
	return s.store.List(ctx)
}

func (s *ReportService) Create(ctx context.Context, in models.NewReport) (models.Report, error) {
	return s.store.Create(ctx, in)
}

// Submit validates a submission, stores its image and creates the report.
// Nothing is written when the input is rejected.
func (s *ReportService) Submit(ctx context.Context, in SubmitInput) (models.Report, error) {
	if !in.HasImage || in.Image == nil {
		return models.Report{}, models.NewValidationError("Image is required")
	}

	lat, lng, err := parseCoordinates(in.Lat, in.Lng)
	if err != nil {
		return models.Report{}, err
	}
	if err := ValidateImageName(in.Filename); err != nil {
		return models.Report{}, err
	}

	imageURL, err := s.images.Save(ctx, in.Image, in.Filename)
	if err != nil {
		return models.Report{}, err
	}

	report, err := s.store.Create(ctx, models.NewReport{
		Description: in.Description,
		Lat:         lat,
		Lng:         lng,
		ImageURL:    imageURL,
	})
	if err != nil {
		if rmErr := s.images.Remove(context.WithoutCancel(ctx), imageURL); rmErr != nil {
			log.Printf("Failed to remove image %s after rejected report: %v", imageURL, rmErr)
		}
		return models.Report{}, err
	}

	return report, nil
}

func (s *ReportService) Resolve(ctx context.Context, id string) (models.Report, error) {
	return s.store.Resolve(ctx, id)
}

// Delete removes the report, then removes its image in the background.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}

	if removed.ImageURL != "" {
		go s.removeImage(removed.ImageURL)
	}
	return nil
}

func (s *ReportService) removeImage(imageURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), imageRemovalTimeout)
	defer cancel()

	if err := s.images.Remove(ctx, imageURL); err != nil {
		log.Printf("Failed to remove image %s: %v", imageURL, err)
	}
}

func parseCoordinates(rawLat, rawLng string) (float64, float64, error) {
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(rawLat), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(rawLng), 64)
	if latErr != nil || lngErr != nil || math.IsNaN(lat) || math.IsNaN(lng) {
		return 0, 0, models.NewValidationError("Valid GPS coordinates are required")
	}
	if err := models.ValidateCoordinates(lat, lng); err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"civicreport/backend/models"
	"civicreport/backend/security"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// UploadsURLPrefix is the public path the disk store serves images under
const UploadsURLPrefix = "/uploads/"

const maxExtLen = 10

// imageExtensions are the photo formats accepted for upload, compared case-insensitively.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".heic": true,
}

// ValidateImageName rejects uploads whose file name does not carry a photo extension.
func ValidateImageName(filename string) error {
	if !imageExtensions[strings.ToLower(filepath.Ext(filename))] {
		return models.NewValidationError("Only JPEG, PNG, GIF, WebP or HEIC images are allowed")
	}
	return nil
}

// ImageStore persists uploaded report photos and returns the URL to store on the report.
type ImageStore interface {
	Save(ctx context.Context, file io.Reader, filename string) (string, error)
	Remove(ctx context.Context, imageURL string) error
}

// DiskImageStore keeps images in a local directory served at /uploads/.
type DiskImageStore struct {
	dir string
}

func NewDiskImageStore(dir string) (*DiskImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &DiskImageStore{dir: dir}, nil
}

func (s *DiskImageStore) Dir() string {
	return s.dir
}

func (s *DiskImageStore) Save(ctx context.Context, file io.Reader, filename string) (string, error) {
	name, err := imageFileName(filename)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(s.dir, name)
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return UploadsURLPrefix + name, nil
}

// Remove deletes the file behind an /uploads/ URL. Missing files are not an error.
func (s *DiskImageStore) Remove(ctx context.Context, imageURL string) error {
	name, ok := uploadName(imageURL)
	if !ok {
		return fmt.Errorf("refusing to remove image outside uploads: %q", imageURL)
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

// imageFileName builds report_<unix millis>_<random hex><ext>.
func imageFileName(original string) (string, error) {
	ext := filepath.Ext(original)
	if len(ext) > maxExtLen {
		ext = ext[:maxExtLen]
	}
	// extensions end up in a path, keep them to a single plain segment
	if strings.ContainsAny(ext, `/\`) {
		ext = ""
	}

	suffix, err := security.RandomHex(16)
	if err != nil {
		return "", fmt.Errorf("failed to name image: %w", err)
	}
	return fmt.Sprintf("report_%d_%s%s", time.Now().UnixMilli(), suffix, ext), nil
}

// uploadName maps an /uploads/ URL to a bare file name, rejecting anything
// that would resolve outside the uploads directory.
func uploadName(imageURL string) (string, bool) {
	name, found := strings.CutPrefix(imageURL, UploadsURLPrefix)
	if !found || name == "" || name == "." || name == ".." {
		return "", false
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", false
	}
	return name, true
}

// CloudinaryImageStore uploads images to a Cloudinary folder.
type CloudinaryImageStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryImageStore(cloudinaryURL, folder string) (*CloudinaryImageStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryImageStore{cld: cld, folder: strings.Trim(folder, "/")}, nil
}

func (s *CloudinaryImageStore) Save(ctx context.Context, file io.Reader, filename string) (string, error) {
	suffix, err := security.RandomHex(16)
	if err != nil {
		return "", fmt.Errorf("failed to name image: %w", err)
	}
	publicID := fmt.Sprintf("report_%d_%s", time.Now().UnixMilli(), suffix)
	overwrite := false

	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     publicID,
		ResourceType: "image",
		Overwrite:    &overwrite,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload failed: %s", result.Error.Message)
	}

	return result.SecureURL, nil
}

func (s *CloudinaryImageStore) Remove(ctx context.Context, imageURL string) error {
	publicID := cloudinaryPublicID(imageURL)
	if publicID == "" {
		return fmt.Errorf("failed to extract public ID from URL: %s", imageURL)
	}

	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to delete image from cloudinary: %s", result.Error.Message)
	}
	return nil
}

// cloudinaryPublicID turns a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1712/civicreport/reports/report_1.jpg
// into civicreport/reports/report_1.
func cloudinaryPublicID(imageURL string) string {
	_, rest, found := strings.Cut(imageURL, "/upload/")
	if !found || rest == "" {
		return ""
	}
	if i := strings.IndexAny(rest, "?#"); i != -1 {
		rest = rest[:i]
	}

	parts := strings.Split(rest, "/")
	if len(parts) > 1 && isVersionSegment(parts[0]) {
		parts = parts[1:]
	}
	publicID := strings.Join(parts, "/")

	if dot := strings.LastIndex(publicID, "."); dot > strings.LastIndex(publicID, "/") {
		publicID = publicID[:dot]
	}
	return publicID
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

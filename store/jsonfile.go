package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"civicreport/backend/models"
)

// JSONFileStore keeps all reports in one JSON array document that is
// rewritten wholesale on every mutation.
type JSONFileStore struct {
	path string
	mu   sync.RWMutex
}

// OpenJSONFileStore prepares the document at path, creating its directory and
// an empty array document when they do not exist yet.
func OpenJSONFileStore(path string) (*JSONFileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("create report document: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat report document: %w", err)
	}

	return &JSONFileStore{path: path}, nil
}

// Path returns the location of the backing document.
func (s *JSONFileStore) Path() string {
	return s.path
}

func (s *JSONFileStore) List(ctx context.Context) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read()
}

func (s *JSONFileStore) Create(ctx context.Context, in models.NewReport) (models.Report, error) {
	if err := in.Validate(); err != nil {
		return models.Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.read()
	if err != nil {
		return models.Report{}, err
	}

	report := newReport(in)
	reports = append([]models.Report{report}, reports...)

	if err := s.write(reports); err != nil {
		return models.Report{}, err
	}
	return report, nil
}

func (s *JSONFileStore) Resolve(ctx context.Context, id string) (models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.read()
	if err != nil {
		return models.Report{}, err
	}

	idx := indexOf(reports, id)
	if idx == -1 {
		return models.Report{}, models.NotFound(id)
	}

	if !resolve(&reports[idx]) {
		return reports[idx], nil
	}

	if err := s.write(reports); err != nil {
		return models.Report{}, err
	}
	return reports[idx], nil
}

func (s *JSONFileStore) Delete(ctx context.Context, id string) (models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.read()
	if err != nil {
		return models.Report{}, err
	}

	idx := indexOf(reports, id)
	if idx == -1 {
		return models.Report{}, models.NotFound(id)
	}

	removed := reports[idx]
	reports = append(reports[:idx], reports[idx+1:]...)

	if err := s.write(reports); err != nil {
		return models.Report{}, err
	}
	return removed, nil
}

// Close is a no-op; the document is only open while it is being read or written.
func (s *JSONFileStore) Close() error {
	return nil
}

// read loads the document. Callers hold s.mu.
func (s *JSONFileStore) read() ([]models.Report, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &models.StorageError{Op: "read reports", Err: err}
	}

	var reports []models.Report
	if err := json.Unmarshal(raw, &reports); err != nil {
		return nil, &models.StorageError{Op: "decode reports", Err: err}
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return reports, nil
}

// write replaces the document through a temp file and rename so readers
// never see a partial document. Callers hold s.mu for writing.
func (s *JSONFileStore) write(reports []models.Report) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return &models.StorageError{Op: "encode reports", Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".reports-*.json")
	if err != nil {
		return &models.StorageError{Op: "write reports", Err: err}
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &models.StorageError{Op: "write reports", Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &models.StorageError{Op: "write reports", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &models.StorageError{Op: "write reports", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &models.StorageError{Op: "write reports", Err: err}
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &models.StorageError{Op: "write reports", Err: err}
	}
	return nil
}

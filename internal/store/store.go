// Package store manages the on-disk working directories of the service:
// uploaded input files, generated sample files, and the periodic cleanup
// that keeps uploads from accumulating.
package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dataveil/dataveil/internal/security"
)

// ErrNotFound is returned when a requested file exists in neither the
// uploads nor the samples directory.
var ErrNotFound = errors.New("file not found")

// Store is the filesystem layout for one service instance. Uploads are
// transient and subject to cleanup; samples persist until regenerated.
type Store struct {
	UploadsDir string
	SamplesDir string
}

// New creates the store directories if needed.
func New(uploadsDir, samplesDir string) (*Store, error) {
	for _, dir := range []string{uploadsDir, samplesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return &Store{UploadsDir: uploadsDir, SamplesDir: samplesDir}, nil
}

// SaveUpload writes an uploaded file into the uploads directory under a
// sanitized name and returns the stored path.
func (s *Store) SaveUpload(name string, r io.Reader) (string, error) {
	clean := security.SanitizeFilename(name)
	if clean == "" {
		return "", fmt.Errorf("unusable filename %q", name)
	}
	path := filepath.Join(s.UploadsDir, clean)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// Resolve maps a client-supplied filename to a stored path, checking the
// uploads directory first and the samples directory second. The name is
// sanitized before lookup so it cannot address anything outside the store.
func (s *Store) Resolve(name string) (string, error) {
	clean := security.SanitizeFilename(name)
	if clean == "" {
		return "", ErrNotFound
	}
	for _, dir := range []string{s.UploadsDir, s.SamplesDir} {
		path := filepath.Join(dir, clean)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", ErrNotFound
}

// Remove deletes a stored file by path. Paths outside the store directories
// are refused.
func (s *Store) Remove(path string) error {
	dir := filepath.Dir(path)
	if dir != s.UploadsDir && dir != s.SamplesDir {
		return fmt.Errorf("path %s is outside the store", path)
	}
	return os.Remove(path)
}

// ListSamples returns the names of the sample files currently on disk.
func (s *Store) ListSamples() ([]string, error) {
	entries, err := os.ReadDir(s.SamplesDir)
	if err != nil {
		return nil, fmt.Errorf("read samples directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xlsx":
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Cleanup deletes uploads older than maxAge, judged by modification time,
// and returns the names of the files removed. Samples are never cleaned.
func (s *Store) Cleanup(maxAge time.Duration) ([]string, error) {
	entries, err := os.ReadDir(s.UploadsDir)
	if err != nil {
		return nil, fmt.Errorf("read uploads directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	var removed []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.UploadsDir, e.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("cleanup could not remove file", "path", path, "error", err)
			continue
		}
		removed = append(removed, e.Name())
	}
	return removed, nil
}

package media

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Staging spills large uploads to a temp directory so they can be handed to
// the media store as a path source instead of being held in memory.
type Staging struct {
	tempDir string
	ttl     time.Duration
}

func NewStaging(tempDir string, ttl time.Duration) (*Staging, error) {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &Staging{tempDir: tempDir, ttl: ttl}, nil
}

// Store writes data to a fresh temp file and returns its path. pattern
// follows os.CreateTemp conventions, e.g. "image-*.png".
func (s *Staging) Store(data []byte, pattern string) (string, error) {
	tempFile, err := os.CreateTemp(s.tempDir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tempFile.Close()

	if _, err := tempFile.Write(data); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return tempFile.Name(), nil
}

func (s *Staging) Delete(path string) error {
	// Only paths inside the staging directory may be removed.
	if !filepath.HasPrefix(path, s.tempDir) {
		return fmt.Errorf("invalid file path: must be within temp directory")
	}
	return os.Remove(path)
}

// CleanupAfter removes the staged file once the TTL elapses, covering the
// case where the request never reached its deletion point.
func (s *Staging) CleanupAfter(path string) {
	go func() {
		time.Sleep(s.ttl)
		if err := s.Delete(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to clean up staged upload", "path", path, "error", err)
		}
	}()
}

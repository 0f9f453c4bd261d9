// Package filestore writes built month payloads into the published tree.
package filestore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/prayer-month-builder/internal/domain"
	"github.com/spf13/afero"
)

// latestName is the region-wide file holding the most recently built month.
const latestName = "latest.json"

// Store writes payloads below an output root.
// It implements pipeline.OutputLoader.
type Store struct {
	fs     afero.Fs
	root   string
	logger *slog.Logger
}

// NewStore creates a Store rooted at root.
func NewStore(fs afero.Fs, root string, logger *slog.Logger) *Store {
	return &Store{fs: fs, root: root, logger: logger}
}

// PathsFor returns where a build for req lands:
// <root>/<region>/<year>/<month>.json and <root>/<region>/latest.json.
func (s *Store) PathsFor(req domain.MonthRequest) domain.OutputPaths {
	regionDir := filepath.Join(s.root, req.Region)
	return domain.OutputPaths{
		Month:  filepath.Join(regionDir, strconv.Itoa(req.Year), req.Month+".json"),
		Latest: filepath.Join(regionDir, latestName),
	}
}

// EnsureDir creates the month's output directory and its parents.
func (s *Store) EnsureDir(req domain.MonthRequest) error {
	dir := filepath.Dir(s.PathsFor(req).Month)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// WriteMonth writes data to the month file and then to latest.json. Both are
// plain overwrites.
func (s *Store) WriteMonth(req domain.MonthRequest, data []byte) (domain.OutputPaths, error) {
	paths := s.PathsFor(req)
	if err := afero.WriteFile(s.fs, paths.Month, data, 0o644); err != nil {
		return domain.OutputPaths{}, fmt.Errorf("write month: %w", err)
	}
	if err := afero.WriteFile(s.fs, paths.Latest, data, 0o644); err != nil {
		return domain.OutputPaths{}, fmt.Errorf("write latest: %w", err)
	}
	s.logger.Debug("payload written", "month_path", paths.Month, "latest_path", paths.Latest, "bytes", len(data))
	return paths, nil
}

// ReadPayload loads a previously written payload file.
func ReadPayload(fs afero.Fs, path string) (domain.MonthPayload, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return domain.MonthPayload{}, fmt.Errorf("read payload: %w", err)
	}
	var p domain.MonthPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.MonthPayload{}, fmt.Errorf("decode payload %s: %w", path, err)
	}
	return p, nil
}

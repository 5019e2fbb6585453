package datastore

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/aleister1102/webwatch/internal/models"
	"github.com/rs/zerolog"
)

// SiteStore persists the site collection as one JSON array file.
type SiteStore struct {
	path   string
	logger zerolog.Logger
}

// NewSiteStore creates a store backed by path.
func NewSiteStore(path string, logger zerolog.Logger) *SiteStore {
	return &SiteStore{
		path:   path,
		logger: logger.With().Str("component", "SiteStore").Str("path", path).Logger(),
	}
}

// Path returns the backing file.
func (s *SiteStore) Path() string {
	return s.path
}

// Load reads all records. A missing or empty file yields an empty slice.
// Records without an id are skipped; missing interval and mode get defaults.
func (s *SiteStore) Load() ([]models.SiteRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info().Msg("Site file not found, starting with no sites")
		return []models.SiteRecord{}, nil
	}
	if err != nil {
		return nil, errorwrapper.NewPersistenceError("read", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.SiteRecord{}, nil
	}

	var raw []models.SiteRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errorwrapper.NewPersistenceError("decode", s.path, err)
	}

	records := make([]models.SiteRecord, 0, len(raw))
	for _, rec := range raw {
		if rec.ID == "" {
			s.logger.Warn().Str("url", rec.URL).Msg("Skipping stored site without id")
			continue
		}
		rec.ApplyDefaults()
		records = append(records, rec)
	}

	s.logger.Debug().Int("count", len(records)).Msg("Loaded sites")
	return records, nil
}

// Save replaces the file contents atomically.
func (s *SiteStore) Save(records []models.SiteRecord) error {
	if records == nil {
		records = []models.SiteRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errorwrapper.NewPersistenceError("encode", s.path, err)
	}
	data = append(data, '\n')

	if err := writeFileAtomic(s.path, data, 0o600); err != nil {
		return errorwrapper.NewPersistenceError("write", s.path, err)
	}

	s.logger.Debug().Int("count", len(records)).Int("bytes", len(data)).Msg("Saved sites")
	return nil
}

// writeFileAtomic writes to a temporary sibling and renames it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

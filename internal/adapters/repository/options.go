package repository

import (
	"os"

	"github.com/okian/matchdesk/pkg/logger"
)

// Option applies a configuration option to the CSVStore.
type Option func(*CSVStore)

// WithExportPath mirrors every write to a structured JSON file at path.
// An empty path disables the export.
func WithExportPath(path string) Option {
	return func(s *CSVStore) {
		s.exportPath = path
	}
}

// WithLogger sets the logger used for store writes.
func WithLogger(l logger.Logger) Option {
	return func(s *CSVStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFileMode sets the permission bits of written files.
func WithFileMode(mode os.FileMode) Option {
	return func(s *CSVStore) {
		if mode != 0 {
			s.fileMode = mode
		}
	}
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// FileStore keeps audio as <dir>/<id>.mp3 on local disk.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}

	log.Info().Str("dir", dir).Msg("File audio store initialized")

	return &FileStore{dir: dir}, nil
}

// Path returns the file path for a story id.
func (s *FileStore) Path(id string) string {
	return filepath.Join(s.dir, id+AudioExt)
}

// Save streams r into the file for id, replacing it if present. The data goes
// to a temp file in the same directory first, so a failed write leaves any
// previous audio for id untouched.
func (s *FileStore) Save(ctx context.Context, id string, r io.Reader) error {
	if !ValidID(id) {
		return fmt.Errorf("invalid story id %q", id)
	}

	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close audio file: %w", err)
	}

	path := s.Path(id)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move audio file into place: %w", err)
	}

	log.Info().
		Str("path", path).
		Int64("size_bytes", n).
		Msg("Audio file saved")

	return nil
}

// Open returns the audio for id, or ErrNotFound.
func (s *FileStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}

	f, err := os.Open(s.Path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	return f, nil
}

package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
)

// ErrNotFound is returned by Open when no audio exists for the story id.
var ErrNotFound = errors.New("audio not found")

// AudioExt is the file extension of stored narration audio.
const AudioExt = ".mp3"

var storyIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidID reports whether id can be used as a storage key.
func ValidID(id string) bool {
	return storyIDPattern.MatchString(id)
}

// AudioStore persists narration audio keyed by story id.
// Save overwrites any existing audio for the same id.
type AudioStore interface {
	Save(ctx context.Context, id string, r io.Reader) error
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}

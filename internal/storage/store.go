package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

const timestampLayout = "20060102T150405Z"

// Store owns the audio output directory and hands out unique file names.
// The sequence counter lives on the Store rather than in package state so
// concurrent operations sharing one Store can never collide on a path.
type Store struct {
	dir string
	seq atomic.Uint64
}

// NewStore creates a store rooted at dir. The directory is created lazily
// on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the output directory path
func (s *Store) Dir() string {
	return s.dir
}

// Create opens a new uniquely named audio file for writing. Names follow
// elevenlabs_<UTC timestamp>_<counter>.<ext>; the counter is monotonic per
// Store so repeated calls within the same second still get distinct paths.
func (s *Store) Create(ext string) (*os.File, string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create output directory %q: %w", s.dir, err)
	}

	name := fmt.Sprintf("elevenlabs_%s_%d.%s",
		time.Now().UTC().Format(timestampLayout),
		s.seq.Add(1),
		ext,
	)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create output file %q: %w", path, err)
	}

	return f, path, nil
}

// ExtForFormat maps an ElevenLabs output format tag to a file extension,
// e.g. "mp3_44100_128" -> "mp3"
func ExtForFormat(format string) string {
	if i := strings.IndexByte(format, '_'); i > 0 {
		return format[:i]
	}
	if format == "" {
		return "mp3"
	}
	return format
}

package relay

import (
	"errors"
	"io"
	"os"

	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/player"
)

// Sink is the destination of relayed audio bytes
type Sink interface {
	io.Writer

	// Finish signals end-of-input and blocks until the sink has fully
	// consumed it. Called exactly once, only after the source reached EOF.
	Finish() error

	// Abort tears the sink down after a source failure. Bytes already
	// delivered are discarded by the sink.
	Abort()

	// Describe names the destination for result messages.
	Describe() string
}

// PlaybackSink streams bytes into a player process's stdin
type PlaybackSink struct {
	proc *player.Process
	name string
}

// NewPlaybackSink wraps an already-started player process
func NewPlaybackSink(proc *player.Process, name string) *PlaybackSink {
	return &PlaybackSink{proc: proc, name: name}
}

// Write forwards a chunk to the player
func (s *PlaybackSink) Write(b []byte) (int, error) {
	return s.proc.Write(b)
}

// Finish closes the player's stdin and waits for it to exit. A non-zero
// exit becomes a *PlaybackError so callers can tell the player failed after
// synthesis itself succeeded.
func (s *PlaybackSink) Finish() error {
	if err := s.proc.CloseInput(); err != nil {
		return &SinkError{Err: err}
	}

	if err := s.proc.Wait(); err != nil {
		var exitErr *player.ExitError
		if errors.As(err, &exitErr) {
			return &PlaybackError{ExitCode: exitErr.Code, Stderr: exitErr.Stderr, Err: err}
		}
		return &SinkError{Err: err}
	}

	return nil
}

// Abort kills the player. Used only after a source failure; the normal path
// always goes through Finish.
func (s *PlaybackSink) Abort() {
	s.proc.CloseInput()
	s.proc.Kill()
	s.proc.Wait()
}

// Describe names the player
func (s *PlaybackSink) Describe() string {
	return s.name
}

// FileSink persists bytes to a file
type FileSink struct {
	f    *os.File
	path string
}

// NewFileSink wraps an already-created output file
func NewFileSink(f *os.File, path string) *FileSink {
	return &FileSink{f: f, path: path}
}

// Write appends a chunk to the file
func (s *FileSink) Write(b []byte) (int, error) {
	return s.f.Write(b)
}

// Finish flushes and closes the file
func (s *FileSink) Finish() error {
	if err := s.f.Sync(); err != nil {
		s.f.Close()
		return &SinkError{Err: err}
	}
	if err := s.f.Close(); err != nil {
		return &SinkError{Err: err}
	}
	return nil
}

// Abort closes and removes the partial file
func (s *FileSink) Abort() {
	s.f.Close()
	os.Remove(s.path)
}

// Describe returns the target path
func (s *FileSink) Describe() string {
	return s.path
}

package relay

import "fmt"

// SourceError reports that the provider stream failed mid-read. The sink
// was aborted; any bytes it already received are discarded.
type SourceError struct {
	Err error
}

// Error implements the error interface
func (e *SourceError) Error() string {
	return fmt.Sprintf("source stream failed: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *SourceError) Unwrap() error {
	return e.Err
}

// SinkError reports that the sink rejected a write or failed to finish.
// Reading from the source stopped as soon as the failure was observed.
type SinkError struct {
	Err error
}

// Error implements the error interface
func (e *SinkError) Error() string {
	return fmt.Sprintf("sink failed: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *SinkError) Unwrap() error {
	return e.Err
}

// PlaybackError reports that every byte reached the player but the player
// itself exited non-zero. Synthesis and delivery succeeded; only the
// playback stage failed.
type PlaybackError struct {
	ExitCode int
	Stderr   string
	Err      error
}

// Error implements the error interface
func (e *PlaybackError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("playback failed (exit %d): %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("playback failed (exit %d)", e.ExitCode)
}

// Unwrap returns the underlying error
func (e *PlaybackError) Unwrap() error {
	return e.Err
}

package player

import "fmt"

// SpawnError reports that the player process could not be started, most
// commonly because the binary is not on PATH
type SpawnError struct {
	Bin string
	Err error
}

// Error implements the error interface
func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start player %q: %v", e.Bin, e.Err)
}

// Unwrap returns the underlying error
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError reports a player process that exited with a non-zero code
type ExitError struct {
	Code   int
	Stderr string
	Err    error
}

// Error implements the error interface
func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("player exited with code %d: %s", e.Code, e.Stderr)
	}
	return fmt.Sprintf("player exited with code %d", e.Code)
}

// Unwrap returns the underlying error
func (e *ExitError) Unwrap() error {
	return e.Err
}

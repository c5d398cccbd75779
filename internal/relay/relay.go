// Package relay moves synthesized audio bytes from a provider stream to a
// sink (an external player's stdin or a file) without materializing the
// stream in memory. The sink's write acceptance paces reads from the
// source, so a slow player throttles the network read instead of growing a
// buffer.
package relay

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

// chunkSize bounds how much of the stream is held in memory at once
const chunkSize = 32 * 1024

// State tracks the relay's lifecycle
type State int

const (
	// StateIdle is the initial state before any byte has moved.
	StateIdle State = iota
	// StateStreaming means bytes are flowing from source to sink.
	StateStreaming
	// StateDraining means the source hit EOF and the sink is finishing.
	StateDraining
	// StateClosed is the success terminal state.
	StateClosed
	// StateFailed is the failure terminal state.
	StateFailed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes a completed relay operation
type Result struct {
	BytesWritten int64
	Destination  string
}

// Relay copies one stream to one sink. A Relay is single-use.
type Relay struct {
	state  State
	logger zerolog.Logger
}

// New creates a relay in the idle state
func New(logger zerolog.Logger) *Relay {
	return &Relay{
		state:  StateIdle,
		logger: logger,
	}
}

// State returns the relay's current state
func (r *Relay) State() State {
	return r.state
}

// Run drains src into sink and returns once both ends have terminated.
// Bytes are forwarded in arrival order through a single bounded chunk
// buffer. On success the sink's Finish (end-of-input) has been called
// exactly once, strictly after the final byte. On a source failure the sink
// is aborted and a *SourceError is returned; on a write failure reading
// stops, the sink is aborted, and a *SinkError is returned. Every failure
// path leaves the sink torn down. There is no partial-success outcome.
func (r *Relay) Run(ctx context.Context, src io.Reader, sink Sink) (Result, error) {
	r.state = StateStreaming
	r.logger.Debug().Str("destination", sink.Describe()).Msg("Relay streaming")

	buf := make([]byte, chunkSize)
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			r.state = StateFailed
			sink.Abort()
			return Result{BytesWritten: written}, &SourceError{Err: err}
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			wn, writeErr := sink.Write(buf[:n])
			written += int64(wn)
			if writeErr != nil {
				r.state = StateFailed
				r.logger.Error().Err(writeErr).Int64("bytes", written).Msg("Sink rejected write")
				sink.Abort()
				return Result{BytesWritten: written}, &SinkError{Err: writeErr}
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			r.state = StateFailed
			r.logger.Error().Err(readErr).Int64("bytes", written).Msg("Source stream failed")
			sink.Abort()
			return Result{BytesWritten: written}, &SourceError{Err: readErr}
		}
	}

	r.state = StateDraining
	r.logger.Debug().Int64("bytes", written).Msg("Source exhausted, draining sink")

	if err := sink.Finish(); err != nil {
		r.state = StateFailed
		return Result{BytesWritten: written}, err
	}

	r.state = StateClosed
	r.logger.Debug().Int64("bytes", written).Str("destination", sink.Describe()).Msg("Relay closed")
	return Result{BytesWritten: written, Destination: sink.Describe()}, nil
}

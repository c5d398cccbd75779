package player

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"sync"
)

// Manager spawns and owns external audio player processes. One Process is
// created per playback operation and never shared.
type Manager struct {
	bin    string
	format string
}

// NewManager creates a player manager for the given binary and input format
// hint (e.g. "ffplay" and "mp3")
func NewManager(bin, format string) *Manager {
	return &Manager{
		bin:    bin,
		format: format,
	}
}

// Bin returns the configured player binary
func (m *Manager) Bin() string {
	return m.bin
}

// Start spawns the player reading raw audio from stdin. The argument set
// tells the player to take input from the pipe, show no window, exit when
// input ends, and keep its logging quiet.
func (m *Manager) Start(ctx context.Context) (*Process, error) {
	args := []string{
		"-f", m.format,
		"-i", "pipe:0",
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
	}

	cmd := exec.CommandContext(ctx, m.bin, args...)

	p := &Process{cmd: cmd}
	cmd.Stdout = io.Discard
	cmd.Stderr = &p.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &SpawnError{Bin: m.bin, Err: err}
	}
	p.stdin = stdin

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Bin: m.bin, Err: err}
	}

	return p, nil
}

// PlayFile plays an already-saved audio file and blocks until the player
// exits. Used in file mode where no pipe is involved.
func (m *Manager) PlayFile(ctx context.Context, path string) error {
	args := []string{
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		path,
	}

	cmd := exec.CommandContext(ctx, m.bin, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return &SpawnError{Bin: m.bin, Err: err}
	}
	if err := cmd.Wait(); err != nil {
		return exitError(err, stderr.String())
	}

	return nil
}

// Process represents one spawned player with a writable input channel and
// an observable exit
type Process struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stderr    bytes.Buffer
	closeOnce sync.Once
	closeErr  error
}

// Write forwards audio bytes to the player's stdin. Writes block when the
// pipe is saturated, which paces the relay's reads from the source.
func (p *Process) Write(b []byte) (int, error) {
	return p.stdin.Write(b)
}

// CloseInput signals end-of-input to the player. Safe to call more than
// once; the pipe is closed exactly once.
func (p *Process) CloseInput() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.stdin.Close()
	})
	return p.closeErr
}

// Wait blocks until the process exits. A non-zero exit is reported as an
// *ExitError carrying the code and captured stderr.
func (p *Process) Wait() error {
	if err := p.cmd.Wait(); err != nil {
		return exitError(err, p.stderr.String())
	}
	return nil
}

// Kill forcibly terminates the process. Only used on the abort path after a
// source failure; the normal path lets the player exit on its own.
func (p *Process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

func exitError(err error, stderr string) error {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{Code: ee.ExitCode(), Stderr: stderr, Err: err}
	}
	return err
}

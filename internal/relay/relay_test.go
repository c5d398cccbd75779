package relay

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// recordingSink captures everything the relay delivers
type recordingSink struct {
	buf        bytes.Buffer
	finishes   int
	aborts     int
	writeErr   error
	finishErr  error
	failAfter  int // fail writes once this many bytes were accepted (0 = never)
}

func (s *recordingSink) Write(b []byte) (int, error) {
	if s.writeErr != nil && s.failAfter > 0 && s.buf.Len() >= s.failAfter {
		return 0, s.writeErr
	}
	return s.buf.Write(b)
}

func (s *recordingSink) Finish() error {
	s.finishes++
	return s.finishErr
}

func (s *recordingSink) Abort() {
	s.aborts++
}

func (s *recordingSink) Describe() string {
	return "recording-sink"
}

// dribbleReader returns at most a few bytes per Read so the relay sees many
// small chunks instead of one
type dribbleReader struct {
	data []byte
	pos  int
}

func (r *dribbleReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := 7
	if n > len(p) {
		n = len(p)
	}
	if r.pos+n > len(r.data) {
		n = len(r.data) - r.pos
	}
	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}

// failingReader errors out after yielding some bytes
type failingReader struct {
	data []byte
	pos  int
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, r.err
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestRun_DeliversAllBytesInOrder(t *testing.T) {
	data := make([]byte, 2048)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("Failed to generate test data: %v", err)
	}

	sink := &recordingSink{}
	r := New(testLogger())

	result, err := r.Run(context.Background(), &dribbleReader{data: data}, sink)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if result.BytesWritten != int64(len(data)) {
		t.Errorf("Expected %d bytes written, got %d", len(data), result.BytesWritten)
	}
	if !bytes.Equal(sink.buf.Bytes(), data) {
		t.Error("Sink bytes differ from source bytes")
	}
	if sink.finishes != 1 {
		t.Errorf("Expected Finish called exactly once, got %d", sink.finishes)
	}
	if sink.aborts != 0 {
		t.Errorf("Expected no aborts, got %d", sink.aborts)
	}
	if r.State() != StateClosed {
		t.Errorf("Expected state closed, got %s", r.State())
	}
}

func TestRun_SourceFailureAbortsSink(t *testing.T) {
	src := &failingReader{data: []byte("partial audio"), err: errors.New("connection reset")}
	sink := &recordingSink{}
	r := New(testLogger())

	_, err := r.Run(context.Background(), src, sink)
	if err == nil {
		t.Fatal("Expected error for failing source")
	}

	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("Expected *SourceError, got %T: %v", err, err)
	}
	if sink.aborts != 1 {
		t.Errorf("Expected sink aborted once, got %d", sink.aborts)
	}
	if sink.finishes != 0 {
		t.Errorf("Finish must not be called on the failure path, got %d", sink.finishes)
	}
	if r.State() != StateFailed {
		t.Errorf("Expected state failed, got %s", r.State())
	}
}

func TestRun_SinkWriteFailure(t *testing.T) {
	data := make([]byte, 4096)
	sink := &recordingSink{writeErr: errors.New("broken pipe"), failAfter: 1}
	r := New(testLogger())

	_, err := r.Run(context.Background(), &dribbleReader{data: data}, sink)
	if err == nil {
		t.Fatal("Expected error for failing sink")
	}

	var sinkErr *SinkError
	if !errors.As(err, &sinkErr) {
		t.Fatalf("Expected *SinkError, got %T: %v", err, err)
	}
	if sink.finishes != 0 {
		t.Errorf("Finish must not be called after a write failure, got %d", sink.finishes)
	}
	if sink.aborts != 1 {
		t.Errorf("Expected sink aborted once after a write failure, got %d", sink.aborts)
	}
	if r.State() != StateFailed {
		t.Errorf("Expected state failed, got %s", r.State())
	}
}

func TestRun_SinkWriteFailureRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.mp3")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	// Close the fd out from under the sink so every write fails
	f.Close()

	sink := NewFileSink(f, path)
	r := New(testLogger())

	_, err = r.Run(context.Background(), bytes.NewReader([]byte("audio")), sink)

	var sinkErr *SinkError
	if !errors.As(err, &sinkErr) {
		t.Fatalf("Expected *SinkError, got %T: %v", err, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected partial file to be removed after sink failure")
	}
}

func TestRun_FinishErrorPropagates(t *testing.T) {
	sink := &recordingSink{finishErr: &PlaybackError{ExitCode: 1}}
	r := New(testLogger())

	_, err := r.Run(context.Background(), bytes.NewReader([]byte("audio")), sink)

	var playErr *PlaybackError
	if !errors.As(err, &playErr) {
		t.Fatalf("Expected *PlaybackError, got %T: %v", err, err)
	}
	if r.State() != StateFailed {
		t.Errorf("Expected state failed, got %s", r.State())
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &recordingSink{}
	r := New(testLogger())

	_, err := r.Run(ctx, bytes.NewReader([]byte("audio")), sink)

	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("Expected *SourceError, got %T: %v", err, err)
	}
	if sink.aborts != 1 {
		t.Errorf("Expected sink aborted once, got %d", sink.aborts)
	}
}

func TestFileSink_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mp3")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	sink := NewFileSink(f, path)
	r := New(testLogger())

	data := []byte("persisted audio bytes")
	result, err := r.Run(context.Background(), bytes.NewReader(data), sink)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if result.Destination != path {
		t.Errorf("Expected destination %s, got %s", path, result.Destination)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("File content differs from source bytes")
	}
}

func TestFileSink_AbortRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.mp3")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	sink := NewFileSink(f, path)
	sink.Write([]byte("incomplete"))
	sink.Abort()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected partial file to be removed after abort")
	}
}

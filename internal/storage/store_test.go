package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreate_UniqueNames(t *testing.T) {
	store := NewStore(t.TempDir())

	f1, path1, err := store.Create("mp3")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	f1.Close()

	f2, path2, err := store.Create("mp3")
	if err != nil {
		t.Fatalf("Second Create() failed: %v", err)
	}
	f2.Close()

	if path1 == path2 {
		t.Errorf("Expected distinct paths, both were %s", path1)
	}

	for _, p := range []string{path1, path2} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected file at %s: %v", p, err)
		}
		base := filepath.Base(p)
		if !strings.HasPrefix(base, "elevenlabs_") || !strings.HasSuffix(base, ".mp3") {
			t.Errorf("Unexpected file name %s", base)
		}
	}
}

func TestCreate_MakesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "audio")
	store := NewStore(dir)

	f, _, err := store.Create("mp3")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	f.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Expected directory %s to exist: %v", dir, err)
	}
}

func TestExtForFormat(t *testing.T) {
	cases := map[string]string{
		"mp3_44100_128": "mp3",
		"pcm_24000":     "pcm",
		"mp3":           "mp3",
		"":              "mp3",
	}
	for format, want := range cases {
		if got := ExtForFormat(format); got != want {
			t.Errorf("ExtForFormat(%q) = %q, want %q", format, got, want)
		}
	}
}

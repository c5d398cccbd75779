package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSynthesize_StreamsBody(t *testing.T) {
	audio := []byte("fake-mp3-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/text-to-speech/voice-1/stream" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("output_format"); got != "mp3_44100_128" {
			t.Errorf("Expected output_format query, got '%s'", got)
		}
		if got := r.Header.Get("xi-api-key"); got != "test-key" {
			t.Errorf("Expected api key header, got '%s'", got)
		}

		var body synthesizeBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if body.Text != "Hello world" {
			t.Errorf("Expected text 'Hello world', got '%s'", body.Text)
		}
		if body.VoiceSettings == nil || body.VoiceSettings.Stability != 0.5 {
			t.Errorf("Voice settings not forwarded: %+v", body.VoiceSettings)
		}

		w.WriteHeader(http.StatusOK)
		w.Write(audio)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	stream, err := client.Synthesize(context.Background(), SynthesisRequest{
		Text:         "Hello world",
		VoiceID:      "voice-1",
		ModelID:      "eleven_monolingual_v1",
		OutputFormat: "mp3_44100_128",
		Settings:     VoiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
	})
	if err != nil {
		t.Fatalf("Synthesize() failed: %v", err)
	}
	defer stream.Close()

	got, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("Failed to read stream: %v", err)
	}
	if string(got) != string(audio) {
		t.Errorf("Expected %q, got %q", audio, got)
	}
}

func TestSynthesize_EmptyText(t *testing.T) {
	client := NewClient("test-key")
	_, err := client.Synthesize(context.Background(), SynthesisRequest{VoiceID: "voice-1"})
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("Expected ErrEmptyText, got %v", err)
	}
}

func TestSynthesize_SettingsOutOfRange(t *testing.T) {
	client := NewClient("test-key")
	_, err := client.Synthesize(context.Background(), SynthesisRequest{
		Text:     "hi",
		VoiceID:  "voice-1",
		Settings: VoiceSettings{Stability: 1.2},
	})
	if !errors.Is(err, ErrSettingsOutOfRange) {
		t.Errorf("Expected ErrSettingsOutOfRange, got %v", err)
	}
}

func TestSynthesize_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"status":"invalid_api_key","message":"Invalid API key"}}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "hi", VoiceID: "voice-1"})
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", apiErr.StatusCode)
	}
	if apiErr.Code != "invalid_api_key" {
		t.Errorf("Expected code 'invalid_api_key', got '%s'", apiErr.Code)
	}
	if !errors.Is(err, ErrInvalidAPIKey) {
		t.Errorf("Expected ErrInvalidAPIKey cause, got %v", apiErr.Cause)
	}
}

func TestListVoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voices" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"voices":[
			{"voice_id":"v1","name":"Rachel","category":"premade","description":"calm"},
			{"voice_id":"v2","name":"Josh","category":"premade","description":"deep"}
		]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	voices, err := client.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices() failed: %v", err)
	}

	if len(voices) != 2 {
		t.Fatalf("Expected 2 voices, got %d", len(voices))
	}
	if voices[0].ID != "v1" || voices[0].Name != "Rachel" {
		t.Errorf("Unexpected first voice: %+v", voices[0])
	}
	if voices[1].Description != "deep" {
		t.Errorf("Unexpected second voice: %+v", voices[1])
	}
}

func TestListVoices_EmptyCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"voices":[]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	voices, err := client.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices() failed: %v", err)
	}
	if voices == nil {
		t.Error("Expected empty slice, got nil")
	}
	if len(voices) != 0 {
		t.Errorf("Expected 0 voices, got %d", len(voices))
	}
}

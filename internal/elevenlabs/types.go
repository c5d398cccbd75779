package elevenlabs

import (
	"context"
	"fmt"
	"io"
)

// SynthesisRequest contains everything needed for one synthesis call
type SynthesisRequest struct {
	Text         string
	VoiceID      string
	ModelID      string
	OutputFormat string // ElevenLabs output format tag, e.g. "mp3_44100_128"
	Settings     VoiceSettings
}

// VoiceSettings configures voice rendering parameters
type VoiceSettings struct {
	Stability       float64
	SimilarityBoost float64
	Style           float64
}

// Validate rejects settings outside the range the API accepts
func (s VoiceSettings) Validate() error {
	fields := map[string]float64{
		"stability":        s.Stability,
		"similarity_boost": s.SimilarityBoost,
		"style":            s.Style,
	}
	for name, v := range fields {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s=%v", ErrSettingsOutOfRange, name, v)
		}
	}
	return nil
}

// Voice is the reduced projection of a catalog entry
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Synthesizer abstracts the ElevenLabs API so the tool handlers can be
// tested with a mock implementation
type Synthesizer interface {
	// Synthesize converts text to audio and returns a read-once stream.
	// The caller is responsible for closing the reader.
	Synthesize(ctx context.Context, req SynthesisRequest) (io.ReadCloser, error)

	// ListVoices returns the provider's voice catalog.
	ListVoices(ctx context.Context) ([]Voice, error)
}

package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the TTS MCP server
type Config struct {
	// ElevenLabs API configuration
	ElevenLabsAPIKey string  `envconfig:"ELEVENLABS_API_KEY" required:"true"`
	VoiceID          string  `envconfig:"ELEVENLABS_VOICE_ID" default:"21m00Tcm4TlvDq8ikWAM"` // Default voice (Rachel)
	ModelID          string  `envconfig:"ELEVENLABS_MODEL_ID" default:"eleven_monolingual_v1"`
	Stability        float64 `envconfig:"ELEVENLABS_STABILITY" default:"0.5"`         // Voice stability [0,1]
	SimilarityBoost  float64 `envconfig:"ELEVENLABS_SIMILARITY_BOOST" default:"0.75"` // Voice similarity boost [0,1]
	Style            float64 `envconfig:"ELEVENLABS_STYLE" default:"0.0"`             // Style exaggeration [0,1]
	OutputFormat     string  `envconfig:"ELEVENLABS_OUTPUT_FORMAT" default:"mp3_44100_128"`

	// Audio output configuration
	OutputDir    string `envconfig:"OUTPUT_DIR" default:"output"` // Directory for saved audio files
	PlayerBin    string `envconfig:"PLAYER_BIN" default:"ffplay"` // External player binary
	PlayerFormat string `envconfig:"PLAYER_FORMAT" default:"mp3"` // Format hint passed to the player

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`        // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`      // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"false"` // Enable the Prometheus/health sidecar
	MetricsPort    string `envconfig:"METRICS_PORT" default:"9090"`     // Port for the sidecar listener
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and numeric ranges
func (c *Config) Validate() error {
	if c.ElevenLabsAPIKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY is required")
	}

	settings := map[string]float64{
		"ELEVENLABS_STABILITY":        c.Stability,
		"ELEVENLABS_SIMILARITY_BOOST": c.SimilarityBoost,
		"ELEVENLABS_STYLE":            c.Style,
	}
	for name, v := range settings {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
	}

	return nil
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

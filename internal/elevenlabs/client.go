package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io/v1"

	// Default timeout for ElevenLabs requests. Synthesis of long passages can
	// take a while before the first byte arrives.
	defaultTimeout = 60 * time.Second

	serverErrorThreshold = 500
)

// Client implements the Synthesizer contract against ElevenLabs' REST API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures the ElevenLabs client
type Option func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a new ElevenLabs API client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// synthesizeBody is the request payload for the text-to-speech endpoint
type synthesizeBody struct {
	Text          string         `json:"text"`
	ModelID       string         `json:"model_id,omitempty"`
	VoiceSettings *voiceSettings `json:"voice_settings,omitempty"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// Synthesize converts text to speech and returns the encoded audio as a
// stream. The caller owns the returned reader and must drain or close it.
func (c *Client) Synthesize(ctx context.Context, req SynthesisRequest) (io.ReadCloser, error) {
	if req.Text == "" {
		return nil, ErrEmptyText
	}
	if err := req.Settings.Validate(); err != nil {
		return nil, err
	}

	body := synthesizeBody{
		Text:    req.Text,
		ModelID: req.ModelID,
		VoiceSettings: &voiceSettings{
			Stability:       req.Settings.Stability,
			SimilarityBoost: req.Settings.SimilarityBoost,
			Style:           req.Settings.Style,
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s/stream", c.baseURL, req.VoiceID)
	if req.OutputFormat != "" {
		endpoint += "?output_format=" + req.OutputFormat
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("xi-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.handleError(resp)
	}

	return resp.Body, nil
}

// voicesResponse is the payload of the voice catalog endpoint
type voicesResponse struct {
	Voices []struct {
		VoiceID     string `json:"voice_id"`
		Name        string `json:"name"`
		Category    string `json:"category"`
		Description string `json:"description"`
	} `json:"voices"`
}

// ListVoices queries the voice catalog. An empty catalog is valid and
// returns an empty slice.
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("voices request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleError(resp)
	}

	var payload voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode voices response: %w", err)
	}

	voices := make([]Voice, 0, len(payload.Voices))
	for _, v := range payload.Voices {
		voices = append(voices, Voice{
			ID:          v.VoiceID,
			Name:        v.Name,
			Category:    v.Category,
			Description: v.Description,
		})
	}

	return voices, nil
}

// errorResponse is the error envelope returned by ElevenLabs
type errorResponse struct {
	Detail struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"detail"`
}

// handleError converts a non-200 response into a typed APIError
func (c *Client) handleError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Code = payload.Detail.Status
		apiErr.Message = payload.Detail.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		apiErr.Cause = ErrInvalidAPIKey
	case http.StatusNotFound:
		apiErr.Cause = ErrInvalidVoice
	case http.StatusTooManyRequests:
		apiErr.Cause = ErrRateLimited
	default:
		if resp.StatusCode >= serverErrorThreshold {
			apiErr.Cause = ErrServiceUnavailable
		}
	}

	return apiErr
}

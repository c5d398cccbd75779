package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/elevenlabs"
	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/observability"
	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/relay"
	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/storage"
)

// GenerateAudioParams are the arguments of the generate_audio tool
type GenerateAudioParams struct {
	Text      string  `json:"text"`
	VoiceID   *string `json:"voice_id,omitempty"`
	ModelID   *string `json:"model_id,omitempty"`
	PlayAudio *bool   `json:"play_audio,omitempty"`
}

// ListVoicesParams are the (empty) arguments of the list_voices tool
type ListVoicesParams struct{}

func buildGenerateAudioSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text": {
				Type:        "string",
				Description: "The text to convert to speech",
			},
			"voice_id": {
				Type:        "string",
				Description: "ElevenLabs voice ID (defaults to the configured voice)",
			},
			"model_id": {
				Type:        "string",
				Description: "ElevenLabs model ID (defaults to the configured model)",
			},
			"play_audio": {
				Type:        "boolean",
				Description: "Play the audio through the local player (default true); when false the audio is saved to the output directory instead",
			},
		},
		Required: []string{"text"},
	}
}

func buildListVoicesSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	}
}

// resolveRequest merges tool arguments over configuration defaults
func (s *Server) resolveRequest(input GenerateAudioParams) elevenlabs.SynthesisRequest {
	req := elevenlabs.SynthesisRequest{
		Text:         input.Text,
		VoiceID:      s.cfg.VoiceID,
		ModelID:      s.cfg.ModelID,
		OutputFormat: s.cfg.OutputFormat,
		Settings: elevenlabs.VoiceSettings{
			Stability:       s.cfg.Stability,
			SimilarityBoost: s.cfg.SimilarityBoost,
			Style:           s.cfg.Style,
		},
	}
	if input.VoiceID != nil && *input.VoiceID != "" {
		req.VoiceID = *input.VoiceID
	}
	if input.ModelID != nil && *input.ModelID != "" {
		req.ModelID = *input.ModelID
	}
	return req
}

func (s *Server) handleGenerateAudio(ctx context.Context, _ *mcp.CallToolRequest, input GenerateAudioParams) (*mcp.CallToolResult, any, error) {
	metrics := observability.NewOperationMetrics("generate_audio")
	metrics.RecordStart()

	opLog := observability.WithOperationID(observability.NewOperationID()).
		With().Str("tool", "generate_audio").Logger()

	if strings.TrimSpace(input.Text) == "" {
		metrics.RecordEnd(false)
		return errorResult("Error: text must be a non-empty string"), nil, nil
	}

	// One synthesis+relay operation at a time; later calls wait here.
	s.synthMu.Lock()
	defer s.synthMu.Unlock()

	req := s.resolveRequest(input)
	playAudio := input.PlayAudio == nil || *input.PlayAudio

	opLog.Debug().
		Str("voice_id", req.VoiceID).
		Str("model_id", req.ModelID).
		Bool("play_audio", playAudio).
		Int("text_len", len(input.Text)).
		Msg("Generate audio requested")

	stream, err := s.synth.Synthesize(ctx, req)
	if err != nil {
		opLog.Error().Err(err).Msg("Synthesis request failed")
		metrics.RecordError("provider", "elevenlabs")
		metrics.RecordEnd(false)
		return errorResult(fmt.Sprintf("Error: synthesis failed: %v", err)), nil, nil
	}
	defer stream.Close()

	var result *mcp.CallToolResult
	if playAudio {
		result = s.playStream(ctx, opLog, metrics, stream, input.Text)
	} else {
		result = s.saveStream(ctx, opLog, metrics, stream, req.OutputFormat)
	}

	metrics.RecordEnd(!result.IsError)
	return result, nil, nil
}

// playStream relays the synthesis stream into a freshly spawned player
func (s *Server) playStream(ctx context.Context, opLog zerolog.Logger, metrics *observability.Metrics, stream io.Reader, text string) *mcp.CallToolResult {
	proc, err := s.players.Start(ctx)
	if err != nil {
		opLog.Error().Err(err).Msg("Player failed to start")
		metrics.RecordError("sink", "player")
		observability.RecordPlayerExit("spawn_error")
		return errorResult(fmt.Sprintf("Error: synthesis succeeded but the audio player could not be started: %v", err))
	}

	sink := relay.NewPlaybackSink(proc, s.players.Bin())
	result, err := relay.New(opLog).Run(ctx, stream, sink)
	if err != nil {
		return s.relayFailure(opLog, metrics, err, result.BytesWritten)
	}

	observability.RecordRelayedBytes("player", result.BytesWritten)
	observability.RecordPlayerExit("ok")
	opLog.Info().Int64("bytes", result.BytesWritten).Msg("Playback completed")

	return textResult(fmt.Sprintf("Played audio for: %s (%d bytes streamed to %s)", text, result.BytesWritten, s.players.Bin()))
}

// saveStream relays the synthesis stream into a new file under the output
// directory
func (s *Server) saveStream(ctx context.Context, opLog zerolog.Logger, metrics *observability.Metrics, stream io.Reader, format string) *mcp.CallToolResult {
	f, path, err := s.store.Create(storage.ExtForFormat(format))
	if err != nil {
		opLog.Error().Err(err).Msg("Failed to create output file")
		metrics.RecordError("sink", "storage")
		return errorResult(fmt.Sprintf("Error: synthesis succeeded but the output file could not be created: %v", err))
	}

	sink := relay.NewFileSink(f, path)
	result, err := relay.New(opLog).Run(ctx, stream, sink)
	if err != nil {
		return s.relayFailure(opLog, metrics, err, result.BytesWritten)
	}

	observability.RecordRelayedBytes("file", result.BytesWritten)
	opLog.Info().Int64("bytes", result.BytesWritten).Str("path", path).Msg("Audio saved")

	return textResult(fmt.Sprintf("Saved audio to %s (%d bytes)", path, result.BytesWritten))
}

// relayFailure converts a typed relay error into a failed tool result that
// names the stage that broke
func (s *Server) relayFailure(opLog zerolog.Logger, metrics *observability.Metrics, err error, written int64) *mcp.CallToolResult {
	var playErr *relay.PlaybackError
	var srcErr *relay.SourceError
	var sinkErr *relay.SinkError

	switch {
	case errors.As(err, &playErr):
		// Every byte reached the player; only the player itself failed.
		opLog.Error().Err(err).Int64("bytes", written).Msg("Player exited abnormally")
		metrics.RecordError("playback", "player")
		observability.RecordPlayerExit("failed")
		return errorResult(fmt.Sprintf("Audio generated successfully (%d bytes), but playback failed: %v", written, playErr))
	case errors.As(err, &srcErr):
		opLog.Error().Err(err).Int64("bytes", written).Msg("Provider stream failed mid-relay")
		metrics.RecordError("provider", "elevenlabs")
		return errorResult(fmt.Sprintf("Error: audio stream interrupted: %v", srcErr))
	case errors.As(err, &sinkErr):
		opLog.Error().Err(err).Int64("bytes", written).Msg("Sink failed mid-relay")
		metrics.RecordError("sink", "relay")
		return errorResult(fmt.Sprintf("Error: synthesis succeeded but audio delivery failed: %v", sinkErr))
	default:
		opLog.Error().Err(err).Msg("Relay failed")
		metrics.RecordError("relay", "relay")
		return errorResult(fmt.Sprintf("Error: %v", err))
	}
}

func (s *Server) handleListVoices(ctx context.Context, _ *mcp.CallToolRequest, _ ListVoicesParams) (*mcp.CallToolResult, any, error) {
	metrics := observability.NewOperationMetrics("list_voices")
	metrics.RecordStart()

	voices, err := s.synth.ListVoices(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Voice catalog query failed")
		metrics.RecordError("provider", "elevenlabs")
		metrics.RecordEnd(false)
		return errorResult(fmt.Sprintf("Error: failed to list voices: %v", err)), nil, nil
	}

	if voices == nil {
		voices = []elevenlabs.Voice{}
	}

	data, err := json.MarshalIndent(voices, "", "  ")
	if err != nil {
		metrics.RecordEnd(false)
		return errorResult(fmt.Sprintf("Error: failed to format voices: %v", err)), nil, nil
	}

	metrics.RecordEnd(true)
	return textResult(string(data)), nil, nil
}

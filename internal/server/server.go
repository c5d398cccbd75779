// Package server declares the MCP tools and dispatches tool calls onto the
// synthesis pipeline. Transport is stdio; diagnostics never touch stdout.
package server

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/config"
	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/elevenlabs"
	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/observability"
	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/player"
	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/storage"
)

const (
	serverName    = "elevenlabs-streaming-mcp-server"
	serverVersion = "1.0.0"
)

// Server wires the tool handlers to the provider client, the relay sinks
// and the player manager
type Server struct {
	cfg     *config.Config
	synth   elevenlabs.Synthesizer
	store   *storage.Store
	players *player.Manager
	logger  zerolog.Logger

	// synthMu serializes generate-audio operations: at most one stream
	// relay and one player process are in flight at a time.
	synthMu sync.Mutex
}

// New creates a tool server
func New(cfg *config.Config, synth elevenlabs.Synthesizer, store *storage.Store, players *player.Manager) *Server {
	return &Server{
		cfg:     cfg,
		synth:   synth,
		store:   store,
		players: players,
		logger:  observability.GetLogger().With().Str("component", "server").Logger(),
	}
}

// Register declares the tools on an MCP server. Unknown tool names are
// rejected by the SDK's dispatch layer and never reach a handler.
func (s *Server) Register(m *mcp.Server) {
	mcp.AddTool(m, &mcp.Tool{
		Name:        "generate_audio",
		Title:       "Generate Audio",
		Description: "Converts text to speech with ElevenLabs and either plays it through the local audio player or saves it under the configured output directory",
		InputSchema: buildGenerateAudioSchema(),
	}, s.handleGenerateAudio)

	mcp.AddTool(m, &mcp.Tool{
		Name:        "list_voices",
		Title:       "List Voices",
		Description: "Lists the voices available from the ElevenLabs account as a JSON array of {id, name, category, description}",
		InputSchema: buildListVoicesSchema(),
	}, s.handleListVoices)
}

// Run serves the tools over stdio until ctx is cancelled or the client
// disconnects
func (s *Server) Run(ctx context.Context) error {
	impl := &mcp.Implementation{
		Name:    serverName,
		Title:   "ElevenLabs Text-to-Speech",
		Version: serverVersion,
	}

	m := mcp.NewServer(impl, nil)
	s.Register(m)

	s.logger.Info().
		Str("name", serverName).
		Str("version", serverVersion).
		Msg("MCP server listening on stdio")

	return m.Run(ctx, &mcp.StdioTransport{})
}

// textResult builds a successful tool result with a text payload
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult builds a failed tool result with a descriptive message
func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

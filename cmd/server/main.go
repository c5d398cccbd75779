package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/config"
	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/elevenlabs"
	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/observability"
	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/player"
	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/server"
	"github.com/CodingButter/elevenlabs-streaming-mcp-server/internal/storage"
)

func main() {
	// Load configuration; a missing or invalid variable is fatal before any
	// protocol message is accepted
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger (stderr; stdout belongs to the protocol)
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("voice_id", cfg.VoiceID).
		Str("model_id", cfg.ModelID).
		Str("output_dir", cfg.OutputDir).
		Str("player", cfg.PlayerBin).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("ElevenLabs MCP server starting")

	client := elevenlabs.NewClient(cfg.ElevenLabsAPIKey)
	store := storage.NewStore(cfg.OutputDir)
	players := player.NewManager(cfg.PlayerBin, cfg.PlayerFormat)
	srv := server.New(cfg, client, store, players)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// When the stdio session ends, take the sidecar down with it
		defer stop()
		return srv.Run(ctx)
	})

	// Optional metrics/health sidecar, entirely separate from the stdio
	// transport
	if cfg.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/health", observability.HealthCheckHandler())
		mux.HandleFunc("/ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
			"player": func(context.Context) (bool, error) {
				_, err := exec.LookPath(cfg.PlayerBin)
				return err == nil, err
			},
		}))

		sidecar := &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.MetricsPort),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		g.Go(func() error {
			logger.Info().Str("port", cfg.MetricsPort).Msg("Metrics sidecar listening")
			if err := sidecar.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return sidecar.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("Server terminated")
	}

	logger.Info().Msg("Server exited gracefully")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/plantscope/plantscope/internal/config"
	"github.com/plantscope/plantscope/internal/engine/advice"
	"github.com/plantscope/plantscope/internal/engine/arbiter"
	"github.com/plantscope/plantscope/internal/engine/classtable"
	"github.com/plantscope/plantscope/internal/engine/vit"
	"github.com/plantscope/plantscope/internal/logging"
	"github.com/plantscope/plantscope/internal/remote/gemini"
	"github.com/plantscope/plantscope/internal/server"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.Server.LogConsole, logging.ParseLevel(cfg.Server.LogLevel))

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("plantscope exited")
	}
}

func run(cfg config.Config) error {
	ctx := context.Background()

	// Startup is ordered: class table, then model weights, then remote
	// clients. Requests are accepted only after all of it completes.
	table, err := classtable.Load(cfg.Engine.ClassesPath)
	if err != nil {
		return err
	}
	log.Info().Int("classes", table.Len()).Str("path", cfg.Engine.ClassesPath).Msg("loaded plant disease classes")

	classifier, err := vit.New(cfg.Engine.ModelPath, table)
	if err != nil {
		return err
	}
	defer classifier.Close()
	log.Info().Str("path", cfg.Engine.ModelPath).Msg("ViT model loaded")

	var remote *gemini.Client
	if cfg.Remote.APIKey != "" {
		remote, err = gemini.New(ctx, cfg.Remote.APIKey, cfg.Remote.VisionModel, cfg.Remote.TextModel)
		if err != nil {
			return err
		}
		log.Info().Str("vision_model", cfg.Remote.VisionModel).Str("text_model", cfg.Remote.TextModel).
			Msg("Gemini (vision + text) configured")
	} else {
		log.Warn().Msg("no GEMINI_API_KEY — Gemini Vision and treatment advice disabled")
	}

	arb := arbiter.New(classifier, remoteOrNil(remote), cfg.Engine.ConfidenceThreshold, log.Logger)
	composer := advice.NewComposer(advisorOrNil(remote))

	srv := server.New(arb, composer, server.Readiness{
		VITLoaded:    true,
		GeminiVision: remote != nil,
		GeminiText:   remote != nil,
	}, table.Len(), cfg.Engine.ConfidenceThreshold)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("plantscope listening")
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// remoteOrNil keeps a typed nil *gemini.Client out of the arbiter's
// interface field, so "not configured" stays an explicit nil check there.
func remoteOrNil(c *gemini.Client) arbiter.RemoteClassifier {
	if c == nil {
		return nil
	}
	return c
}

func advisorOrNil(c *gemini.Client) advice.Advisor {
	if c == nil {
		return nil
	}
	return c
}

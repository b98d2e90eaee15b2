package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/soundtrip/internal/config"
	"github.com/snappy-loop/soundtrip/internal/handlers"
	"github.com/snappy-loop/soundtrip/internal/llm"
	"github.com/snappy-loop/soundtrip/internal/services"
	"github.com/snappy-loop/soundtrip/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Starting Soundtrip API")

	store, err := newAudioStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.AudioStore).Msg("Failed to initialize audio store")
	}

	llmClient := llm.NewClient(cfg)
	speechClient := llm.NewSpeechClient(cfg)

	audioService := services.NewAudioService(speechClient, store)
	storyService := services.NewStoryService(llmClient, audioService, cfg)

	h := handlers.NewHandler(storyService, audioService, store)
	r := handlers.NewRouter(h, cfg.CORSAllowedOrigin)

	// Story creation waits on two model calls plus speech synthesis.
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.LLMTimeout + cfg.TTSTimeout + 15*time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down API...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("API exited")
}

func newAudioStore(cfg *config.Config) (storage.AudioStore, error) {
	if cfg.AudioStore == "s3" {
		s3Store, err := storage.NewS3Store(storage.S3Options{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Prefix:       cfg.S3Prefix,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s3Store, nil
	}

	fileStore, err := storage.NewFileStore(cfg.AudioDir)
	if err != nil {
		return nil, err
	}
	return fileStore, nil
}

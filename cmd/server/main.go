package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ncert-rag/internal/config"
	"ncert-rag/internal/embedding"
	"ncert-rag/internal/index"
	"ncert-rag/internal/llm"
	"ncert-rag/internal/rag"
	"ncert-rag/internal/server"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	store, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing vector store")
	}
	defer store.Close()

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	generator, err := llm.NewGenerator(&cfg.GenLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing generator")
	}

	pipeline := rag.NewPipeline(store, embedder, generator, cfg)
	router := server.NewServer(pipeline).Router()

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Doubt solver API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}

func newStore(cfg *config.Config) (index.Store, error) {
	switch cfg.VectorStore.Backend {
	case "pgvector":
		return index.NewPgVectorStore(index.DatabaseOptions{
			DSN:      cfg.Database.DSN,
			Password: cfg.Database.Password,
			Debug:    cfg.Database.Debug,
		})
	default:
		return index.NewChromemStore(
			cfg.VectorStore.Path,
			cfg.VectorStore.Collection,
			cfg.VectorStore.InMemory,
			cfg.VectorStore.EncryptionKey,
		)
	}
}

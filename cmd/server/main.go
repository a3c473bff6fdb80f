package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Johel506/intelligent-pdf-chatbot/internal/chunker"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/config"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/conversation"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/embedding"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/index"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/intent"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/llmservice"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/orchestrator"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/parser"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/server"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	flag.Parse()

	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("rag", cfg.RAG).Str("document", cfg.Document.Path).Msg("Loaded config")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	units, err := parser.Parse(cfg.Document.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Document.Path).Msg("Error parsing document")
	}
	if len(units) == 0 {
		log.Fatal().Str("path", cfg.Document.Path).Msg("Document produced no text")
	}
	log.Info().Int("pages", len(units)).Msg("Document parsed")

	chunks := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap).Chunk(units)
	log.Info().Int("chunks", len(chunks)).Msg("Document chunked")

	embedder, err := embedding.NewEmbedder(&cfg.Embedding)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	idx, err := index.New(&cfg.Index, embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector index")
	}

	// The build runs while the server comes up; requests that arrive
	// before it completes get a 503 from the readiness check, and a build
	// failure aborts the process.
	go func() {
		buildStart := time.Now()
		if err := idx.Build(ctx, chunks); err != nil {
			log.Fatal().Err(err).Msg("Error building vector index")
		}
		log.Info().Dur("took", time.Since(buildStart)).Msg("Index build complete")
	}()

	llm, err := llmservice.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing LLM client")
	}

	store := conversation.NewStore()
	classifier := intent.NewClassifier(llm)
	orch := orchestrator.New(llm, classifier, idx, store, cfg.RAG)

	srv := server.New(orch, idx.Ready, cfg.Server)
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
	log.Info().Msg("Shutdown complete")
}

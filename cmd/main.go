package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"product-rag/internal/api"
	"product-rag/internal/catalog"
	"product-rag/internal/chromemdb"
	"product-rag/internal/chunker"
	"product-rag/internal/config"
	"product-rag/internal/embedding"
	"product-rag/internal/helper"
	"product-rag/internal/ingest"
	"product-rag/internal/llmservice"
	"product-rag/internal/models"
	"product-rag/internal/rag"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	source := flag.String("source", "", "Path to the product catalog (csv or xlsx) to ingest")
	query := flag.String("query", "", "Question to be answered against the index")
	serve := flag.Bool("serve", false, "Start the HTTP chat server")
	dryRun := flag.Bool("dry-run", false, "Parse and chunk the catalog without embedding or saving")
	flag.Parse()

	if *source != "" && *query != "" {
		log.Fatal().Msg("Please provide either a catalog using the -source flag or a question using the -query flag, but not both")
	}

	switch {
	case *source != "" && *dryRun:
		chunkCatalog(*configPath, *source)
	case *source != "":
		ingestCatalog(context.Background(), *configPath, *source)
	case *query != "":
		answerQuestion(context.Background(), *configPath, *query)
	case *serve:
		serveChat(*configPath)
	default:
		log.Fatal().Msg("Please provide -source to build the index, -query to ask a question, or -serve to start the chat server")
	}
}

// chunkCatalog shows what ingestion would write, without touching any service.
func chunkCatalog(configPath, sourcePath string) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	docs, err := catalog.Load(sourcePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading catalog")
	}

	splitter, err := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating chunker")
	}

	var chunks []models.Chunk
	for _, doc := range docs {
		for i, content := range splitter.Split(doc.Content) {
			chunks = append(chunks, models.Chunk{Content: content, Source: doc.Source, Row: doc.Row, ChunkID: i + 1})
		}
	}

	log.Info().Int("documents", len(docs)).Int("chunks", len(chunks)).Msg("Parsed catalog")
	helper.PrettyPrint(chunks)
}

func ingestCatalog(ctx context.Context, configPath, sourcePath string) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	log.Debug().Interface("config", cfg).Msg("Loaded config")

	if err := helper.CreateFolder(cfg.Index.Path); err != nil {
		log.Fatal().Err(err).Msg("Error creating index folder")
	}

	store, err := chromemdb.NewStore(cfg.Index.Path, cfg.Index.Collection, false)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}

	embedder, err := embedding.NewEmbedder(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	stats, err := ingest.NewBuilder(embedder, store, cfg).BuildIndex(ctx, sourcePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building index")
	}

	log.Info().Int("chunks", stats.ChunkCount).Str("collection", cfg.Index.Collection).Msg("Index built")
}

func newRAG(cfg *config.Config) (*rag.RAG, error) {
	store, err := chromemdb.NewStore(cfg.Index.Path, cfg.Index.Collection, false)
	if err != nil {
		return nil, err
	}

	embedder, err := embedding.NewEmbedder(&cfg.LLM)
	if err != nil {
		return nil, err
	}

	client, err := llmservice.NewClient(&cfg.LLM)
	if err != nil {
		return nil, err
	}

	return rag.NewRAG(embedder, store, client, cfg), nil
}

func answerQuestion(ctx context.Context, configPath, question string) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	r, err := newRAG(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing query pipeline")
	}

	response := r.Answer(ctx, question)

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Question)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	for _, source := range response.Sources {
		fmt.Printf("%s\n", source)
	}
	fmt.Println()

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Content)
}

func serveChat(configPath string) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	r, err := newRAG(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing query pipeline")
	}

	app := fiber.New()
	api.RegisterRoutes(app, r, cfg.Server.StaticDir)

	log.Info().Str("addr", cfg.Server.Addr).Msg("Starting chat server")
	if err := app.Listen(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

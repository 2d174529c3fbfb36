package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/patil-aryan/lumos/internal/config"
	"github.com/patil-aryan/lumos/internal/providers/embedding"
	"github.com/patil-aryan/lumos/internal/providers/graph"
	"github.com/patil-aryan/lumos/internal/providers/llm"
	"github.com/patil-aryan/lumos/internal/service/agent"
	"github.com/patil-aryan/lumos/internal/service/chat"
	"github.com/patil-aryan/lumos/internal/service/entity"
	"github.com/patil-aryan/lumos/internal/service/ingest"
	"github.com/patil-aryan/lumos/internal/service/search"
	"github.com/patil-aryan/lumos/internal/service/tools"
	"github.com/patil-aryan/lumos/internal/storage/sqlite"
	httptransport "github.com/patil-aryan/lumos/internal/transport/http"
	"github.com/patil-aryan/lumos/pkg/log"
	"github.com/patil-aryan/lumos/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// Configuration
	appCfg := config.NewAppConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	embeddingCfg := config.NewEmbeddingConfig(ctx)
	graphCfg := config.NewGraphConfig(ctx)

	// Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	sessionRepo := sqlite.NewSessionRepo(db)
	chunkRepo := sqlite.NewChunkRepo(db)

	// Graph engine behind a circuit breaker
	graphClient, err := graph.Open(ctx, graphCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to graph database")
	}
	services = append(services, srv.NewCleanup(func() error {
		return graphClient.Close(context.Background())
	}))
	graphEngine := graph.NewBreakerEngine(graphClient, graphCfg)

	// Providers
	embedder := embedding.NewOpenAIEmbedder(embeddingCfg)
	provider := llm.NewOpenAI(llmCfg)

	// Retrieval services
	orchestrator := search.NewOrchestrator(embedder, chunkRepo, graphEngine)
	entities := entity.NewService(graphEngine)
	registry := tools.NewRegistry(orchestrator, entities)

	// Agent and conversation controller
	ag := agent.NewAgent(provider, registry, llmCfg.MaxToolRounds)
	controller := chat.NewController(sessionRepo, ag, appCfg)

	// Ingestion
	ingester := ingest.NewService(embedder, chunkRepo, graphEngine)

	// HTTP transport
	server := httptransport.NewServer(appCfg, controller, orchestrator, ingester, newHealth(db, graphClient))
	services = append(services, server)

	return services
}

type health struct {
	db    *sql.DB
	graph *graph.Client
}

func newHealth(db *sql.DB, graphClient *graph.Client) *health {
	return &health{db: db, graph: graphClient}
}

func (h *health) CheckDatabase(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

func (h *health) CheckGraph(ctx context.Context) error {
	return h.graph.Ping(ctx)
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}

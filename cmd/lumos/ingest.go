package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/patil-aryan/lumos/internal/config"
	"github.com/patil-aryan/lumos/internal/providers/embedding"
	"github.com/patil-aryan/lumos/internal/providers/graph"
	"github.com/patil-aryan/lumos/internal/service/ingest"
	"github.com/patil-aryan/lumos/internal/storage/sqlite"
	"github.com/patil-aryan/lumos/pkg/log"
)

var ingestSource string

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest documents into the vector store and knowledge graph",
	Long:  `Reads the given text files, chunks and embeds them into the vector store and writes each document to the knowledge graph as an episode.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		logger := log.FromCtx(ctx)

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		appCfg := config.NewAppConfig(ctx)
		embeddingCfg := config.NewEmbeddingConfig(ctx)
		graphCfg := config.NewGraphConfig(ctx)

		db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
		if err != nil {
			return err
		}
		defer db.Close()

		graphClient, err := graph.Open(ctx, graphCfg)
		if err != nil {
			return err
		}
		defer graphClient.Close(context.WithoutCancel(ctx))

		svc := ingest.NewService(
			embedding.NewOpenAIEmbedder(embeddingCfg),
			sqlite.NewChunkRepo(db),
			graph.NewBreakerEngine(graphClient, graphCfg),
		)

		for _, path := range args {
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			result, err := svc.IngestDocument(ctx, ingest.Document{
				Title:   filepath.Base(path),
				Source:  ingestSource,
				Content: string(content),
			})
			if err != nil {
				return err
			}

			logger.Info().
				Str("path", path).
				Str("document_id", result.DocumentID).
				Int("chunks", result.Chunks).
				Int("episodes", result.Episodes).
				Msg("ingested document")
		}

		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSource, "source", "file", "source label stored with each document")
	rootCmd.AddCommand(ingestCmd)
}

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/patil-aryan/lumos/internal/config"
	"github.com/patil-aryan/lumos/pkg/log"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "lumos",
	Short: "Lumos: hybrid retrieval over documents and a knowledge graph",
	Long:  `Lumos is a RAG service combining vector search over document chunks with a temporal knowledge graph, behind a tool-calling agent.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}

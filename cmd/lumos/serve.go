package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/patil-aryan/lumos/pkg/log"
	"github.com/patil-aryan/lumos/pkg/srv"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Lumos HTTP server",
	Long:  `Opens storage and the graph connection, wires the retrieval services and serves the chat, search and ingest API until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting lumos")

		services := NewServices(ctx)

		srv.StartServices(ctx, services)
		srv.ShutdownServices(ctx, services)

		logger.Info().Msg("lumos has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

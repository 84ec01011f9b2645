package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/factbot/internal/config"
	"github.com/sandevgo/factbot/internal/transport/mcp"
	"github.com/sandevgo/factbot/pkg/log"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:          "mcp",
	Short:        "Serve the fact store to MCP clients over stdio",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}
		appCfg := config.NewAppConfig(ctx)

		memory, cleanup, err := initMemory(ctx, appCfg)
		if err != nil {
			return err
		}
		defer closeAll(ctx, cleanup)

		server := mcp.NewServer(memory, appCfg.GetTopK())
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.FromCtx(ctx).Error().Err(err).Msg("mcp server stopped")
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

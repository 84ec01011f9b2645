package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/factbot/internal/config"
	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/pkg/log"
	"github.com/sandevgo/factbot/pkg/srv"
	"github.com/spf13/cobra"
)

var factsTopK int

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Inspect or seed the facts remembered about a user",
}

var factsSearchCmd = &cobra.Command{
	Use:          "search <user_id> <query>",
	Short:        "Show the stored facts closest to a query",
	Args:         cobra.MinimumNArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFactStore(cmd, args[0], func(ctx context.Context, store core.FactStore) error {
			docs, err := store.Query(ctx, strings.Join(args[1:], " "), factsTopK)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no facts stored")
				return nil
			}
			for i, d := range docs {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, d.Content)
			}
			return nil
		})
	},
}

var factsAddCmd = &cobra.Command{
	Use:          "add <user_id> <fact>",
	Short:        "Store a fact about a user",
	Args:         cobra.MinimumNArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFactStore(cmd, args[0], func(ctx context.Context, store core.FactStore) error {
			doc, err := store.CreateDocument(ctx, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s: %s\n", doc.ID, doc.Content)
			return nil
		})
	},
}

// withFactStore opens the configured memory backend for one user and releases it afterwards.
func withFactStore(cmd *cobra.Command, userID string, fn func(context.Context, core.FactStore) error) error {
	ctx, flushLog := setupLogger(cmd.Context())
	defer flushLog()

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return err
	}

	memory, cleanup, err := initMemory(ctx, config.NewAppConfig(ctx))
	if err != nil {
		return err
	}
	defer closeAll(ctx, cleanup)

	store, err := memory.Facts(ctx, userID)
	if err != nil {
		return err
	}
	return fn(ctx, store)
}

func closeAll(ctx context.Context, services []srv.Service) {
	for _, s := range services {
		if err := s.Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", s)
		}
	}
}

func init() {
	factsCmd.PersistentFlags().IntVarP(&factsTopK, "top-k", "k", 10, "maximum number of facts to show")
	factsCmd.AddCommand(factsSearchCmd, factsAddCmd)
	rootCmd.AddCommand(factsCmd)
}

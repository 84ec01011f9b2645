package main

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/factbot/internal/service/installer"
	"github.com/sandevgo/factbot/pkg/log"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:          "init",
	Short:        "Create the runtime directory with an interactive wizard",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		state, err := installer.RunWizard()
		if err != nil {
			return err
		}

		envPath := filepath.Join(state.RuntimePath, ".env")
		if err := godotenv.Load(envPath); err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("failed to load .env file")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", state.RuntimePath)
		logger.Info().Msg("Setup complete! You can now run 'factbot start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coursereg/coursereg-go/internal/config"
	"github.com/coursereg/coursereg-go/internal/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "api",
		Short: "Student course registration server",
		Long: `Serves signup, login and capacity-limited course registration.

Running without a subcommand is the same as "api serve".`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

// bootstrap loads .env, parses the configuration and builds the logger.
func bootstrap() (config.Config, zerolog.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	logger := logging.New(cfg.Env, cfg.LogLevel)
	if envErr != nil {
		logger.Debug().Msg("no .env file found, using environment variables")
	}
	return cfg, logger, nil
}

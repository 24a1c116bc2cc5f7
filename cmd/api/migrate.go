package main

import (
	"github.com/spf13/cobra"

	"github.com/coursereg/coursereg-go/internal/repository"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run MySQL schema migrations",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all up migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd, false)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert all migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd, true)
			},
		},
	)
	return migrateCmd
}

func runMigrate(cmd *cobra.Command, down bool) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := repository.NewMySQLDB(cmd.Context(), cfg.MySQLDSN)
	if err != nil {
		logger.Error().Err(err).Msg("connecting to mysql failed")
		return err
	}
	defer db.Close()

	direction := "up"
	if down {
		direction = "down"
	}

	if err := repository.MigrateMySQL(db, down); err != nil {
		logger.Error().Err(err).Str("direction", direction).Msg("migration failed")
		return err
	}

	logger.Info().Str("direction", direction).Msg("migrations applied")
	return nil
}

package cmd

import (
	"fmt"

	"github.com/psds-microservice/arm-service-desk/internal/config"
	"github.com/psds-microservice/arm-service-desk/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runMigrateUp,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("migrate: DESK_STORE=%s has no schema", cfg.Store)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := database.MigrateUp(cfg.DatabaseURL(), log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info().Msg("migrate up: ok")
	return nil
}

package main

import (
	"authcore/config"
	"authcore/internal/errors"
	logs "authcore/internal/infra/log"
	"authcore/internal/infra/persistence/postgres"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users table",
		Long:  `Apply the GORM schema to the PostgreSQL database named in the postgres config section.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		return errors.Errorf("migrate requires storage.driver %q, got %q", config.StorageDriverPostgres, cfg.Storage.Driver)
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return err
	}

	cmd.Println("Connecting to database...")
	db, err := postgres.Open(cfg, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}
	defer sqlDB.Close()

	cmd.Println("Running migrations...")
	if err := postgres.Migrate(cmd.Context(), db); err != nil {
		return err
	}

	cmd.Println("Migrations completed successfully")

	return nil
}


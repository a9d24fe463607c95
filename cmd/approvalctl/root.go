package main

import (
	"os"

	"approvalflow/internal/config"
	"approvalflow/internal/database"
	"approvalflow/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var envFiles []string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "approvalctl",
		Short:         "Approval workflow administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{"configs/.env", ".env"}, "dotenv files to load before reading the environment")
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newCheckSchemaCmd())
	cmd.AddCommand(newImportRosterCmd())
	cmd.AddCommand(newFlushCacheCmd())
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

// connect loads configuration and opens the database.
func connect() (*config.Configuration, *gorm.DB, *logrus.Logger, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := logging.New(cfg.LogLevel)
	db, err := database.NewConnection(cfg.Database.DSN())
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, db, logger, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

package main

import (
	"time"

	"approvalflow/internal/database"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the workflow tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, logger, err := connect()
			if err != nil {
				return err
			}
			defer closeDB(db)

			start := time.Now()
			if err := database.Migrate(db); err != nil {
				return err
			}
			if err := database.ValidateSchema(db); err != nil {
				return err
			}
			logger.Info("schema migrated")
			return writeJSON(commandOutput{
				Command:    "migrate",
				RunID:      uuid.NewString(),
				DurationMS: time.Since(start).Milliseconds(),
				Result:     map[string]any{"tables": len(database.Models())},
			})
		},
	}
}

func newCheckSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-schema",
		Short: "Verify that every workflow table and column exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, _, err := connect()
			if err != nil {
				return err
			}
			defer closeDB(db)

			start := time.Now()
			if err := database.ValidateSchema(db); err != nil {
				return err
			}
			return writeJSON(commandOutput{
				Command:    "check-schema",
				RunID:      uuid.NewString(),
				DurationMS: time.Since(start).Milliseconds(),
				Result:     map[string]any{"ok": true},
			})
		},
	}
}

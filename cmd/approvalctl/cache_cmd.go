package main

import (
	"time"

	"approvalflow/internal/app"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newFlushCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush-cache",
		Short: "Drop every shared roster, chain and settings cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, logger, err := connect()
			if err != nil {
				return err
			}
			a, err := app.New(cfg, db, logger)
			if err != nil {
				closeDB(db)
				return err
			}
			defer a.Close()

			start := time.Now()
			removed, err := a.FlushCache(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(commandOutput{
				Command:    "flush-cache",
				RunID:      uuid.NewString(),
				DurationMS: time.Since(start).Milliseconds(),
				Result:     map[string]any{"backend": cfg.Cache.Backend, "removed": removed},
			})
		},
	}
}

package main

import (
	"fmt"
	"os"
	"time"

	"approvalflow/internal/app"
	"approvalflow/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// rosterFile is the on-disk layout read by import-roster.
type rosterFile struct {
	Approvers []service.ApproverInput `yaml:"approvers"`
}

func readRoster(path string) ([]service.ApproverInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f rosterFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("invalid roster file %s: %w", path, err)
	}
	if len(f.Approvers) == 0 {
		return nil, fmt.Errorf("roster file %s has no approvers", path)
	}
	return f.Approvers, nil
}

func newImportRosterCmd() *cobra.Command {
	var (
		file  string
		actor string
	)

	cmd := &cobra.Command{
		Use:   "import-roster",
		Short: "Replace the approver roster from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readRoster(file)
			if err != nil {
				return err
			}
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
			res := a.Approvers.ImportRoster(cmd.Context(), actor, rows)
			if err := writeJSON(commandOutput{
				Command:    "import-roster",
				RunID:      uuid.NewString(),
				DurationMS: time.Since(start).Milliseconds(),
				Result:     res,
			}); err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("import failed: %s", res.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML roster file")
	cmd.Flags().StringVar(&actor, "actor", "", "administrator email recorded in the audit trail")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kubev2v/task-scheduler/internal/config"
	"github.com/kubev2v/task-scheduler/internal/report"
	"github.com/kubev2v/task-scheduler/internal/store"
)

func NewReportCommand(cfg *config.Configuration) *cobra.Command {
	var (
		output string
		since  time.Duration
		pools  []string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the stored statistics history to an xlsx workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Store.DataFolder == "" {
				return errors.New("report needs --data-folder: an in-memory store has no history")
			}

			st, err := openStore(cmd.Context(), cfg.Store.DataFolder)
			if err != nil {
				return err
			}
			defer st.Close()

			opts := []store.ListOption{store.ByPools(pools...)}
			if since > 0 {
				opts = append(opts, store.Since(time.Now().Add(-since)))
			}
			records, err := st.Statistics().List(cmd.Context(), opts...)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := report.Write(f, records); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			zap.S().Named("report").Infow("report written", "file", output, "records", len(records))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "statistics.xlsx", "Workbook to write")
	flags.DurationVar(&since, "since", 24*time.Hour, "Only export snapshots younger than this, 0 exports everything")
	flags.StringSliceVar(&pools, "pool", nil, "Only export these pools")

	return cmd
}

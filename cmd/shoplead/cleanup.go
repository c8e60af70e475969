package main

import (
	"github.com/spf13/cobra"

	"github.com/shoplead/shoplead_server/internal/pkg/cron"
)

func newCleanupCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Fail stale ingestion runs and remove expired uploads",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.open()
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.Config
			summary := cron.NewService(a.Store.Runs, cfg.Upload.TempDir, cfg.Upload.ExpireHours, cfg.Ingest.StaleRunHours).RunNow()
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"stale_runs":  summary.StaleRuns,
				"upload_dirs": summary.UploadDirs,
			})
		},
	}
}

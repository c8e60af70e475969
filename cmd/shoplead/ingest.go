package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shoplead/shoplead_server/internal/pkg/sheet"
	"github.com/shoplead/shoplead_server/internal/service"
)

type ingestOptions struct {
	mode    string
	archive bool
}

func newIngestCmd(root *rootOptions) *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest <file.xlsx|file.csv>",
		Short: "Import an SAP operations extract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.open()
			if err != nil {
				return err
			}
			defer a.Close()

			path := args[0]
			table, err := sheet.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			req := &service.IngestRequest{
				Filename: filepath.Base(path),
				Table:    table,
				Mode:     opts.mode,
			}
			if opts.archive {
				req.ArchiveURL = a.Imports.Archive(path)
			}

			result, err := a.Ingest.Ingest(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "", "upsert or replace (default from config)")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "archive the file to object storage when configured")
	return cmd
}

func newWorkLogsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worklogs <file.xlsx|file.csv>",
		Short: "Append employee work-log postings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.open()
			if err != nil {
				return err
			}
			defer a.Close()

			table, err := sheet.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			result, err := a.WorkLogs.Import(filepath.Base(args[0]), table)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/venueoracle/internal/logger"
	"github.com/rewired-gh/venueoracle/internal/report"
	"github.com/rewired-gh/venueoracle/internal/storage"
)

func newRunsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List stored detection runs, or show the flagged records of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := storage.New(cfg.Storage.MaxRuns, cfg.Storage.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Error("Failed to close storage: %v", err)
				}
			}()

			if len(args) == 0 {
				return listRuns(os.Stdout, store)
			}
			return showRun(os.Stdout, store, args[0], all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Show every record of the run, not only flagged ones")
	return cmd
}

func listRuns(w io.Writer, store *storage.Storage) error {
	runs, err := store.ListRuns()
	if err != nil {
		return err
	}
	return report.WriteRuns(w, runs)
}

func showRun(w io.Writer, store *storage.Storage, id string, all bool) error {
	run, err := store.GetRun(id)
	if err != nil {
		return err
	}
	load := store.GetFlaggedRecords
	if all {
		load = store.GetRecords
	}
	records, err := load(run.ID)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Run %s (%s), %d records, %d flagged\n", run.ID, run.Source, run.Records, run.Flagged); err != nil {
		return err
	}
	for _, r := range records {
		if _, err := fmt.Fprintln(w, report.RecordLine(r)); err != nil {
			return err
		}
	}
	return nil
}

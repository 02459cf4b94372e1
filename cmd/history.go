/*
 * This file is part of Loqa (https://github.com/loqalabs/loqa).
 * Copyright (C) 2025 Loqa Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/loqalabs/loqa-scribe/internal/events"
	"github.com/loqalabs/loqa-scribe/internal/security"
	"github.com/loqalabs/loqa-scribe/internal/storage"
)

type historyFlags struct {
	dbPath  string
	limit   int
	failed  bool
	backend string
	format  string
}

func newHistoryCmd() *cobra.Command {
	f := &historyFlags{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded transcription runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.dbPath == "" {
				f.dbPath = os.Getenv("DB_PATH")
			}
			if f.dbPath == "" {
				return errors.New("no run history configured (set DB_PATH or --db)")
			}

			db, err := storage.NewDatabase(storage.DatabaseConfig{Path: f.dbPath})
			if err != nil {
				return err
			}
			defer db.Close()

			return listRuns(cmd.OutOrStdout(), storage.NewRunsStore(db), f)
		},
	}

	cmd.Flags().StringVar(&f.dbPath, "db", "", "run history database (default $DB_PATH)")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 20, "number of runs to show")
	cmd.Flags().BoolVar(&f.failed, "failed", false, "only show failed runs")
	cmd.Flags().StringVar(&f.backend, "backend", "", "only show runs of this backend")
	cmd.Flags().StringVar(&f.format, "output", "table", "output format: table or json")

	return cmd
}

func listRuns(w io.Writer, store *storage.RunsStore, f *historyFlags) error {
	options := storage.ListOptions{
		Backend: f.backend,
		Limit:   f.limit,
	}
	if f.failed {
		failed := false
		options.Success = &failed
	}

	runs, err := store.List(options)
	if err != nil {
		return err
	}
	total, err := store.Count(options)
	if err != nil {
		return err
	}

	if f.format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if runs == nil {
			runs = []*events.TranscriptionEvent{}
		}
		return encoder.Encode(runs)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tWHEN\tMEDIA\tMODEL\tSEGMENTS\tAUDIO\tTOOK\tSTATUS")
	fmt.Fprintln(tw, "---\t----\t-----\t-----\t--------\t-----\t----\t------")

	for _, run := range runs {
		status := "ok"
		if !run.Success {
			status = "failed: " + security.SanitizeLogInput(run.ErrorMessage)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s/%s\t%d\t%s\t%s\t%s\n",
			shortID(run.RunID),
			humanize.Time(run.Timestamp),
			security.SanitizeLogInput(run.MediaPath),
			run.Backend, run.ModelSize,
			run.SegmentCount,
			seconds(run.AudioDuration),
			(time.Duration(run.ProcessingTime) * time.Millisecond).Round(time.Millisecond),
			status,
		)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("error flushing output: %w", err)
	}
	_, err = fmt.Fprintf(w, "\nShowing %d of %d runs\n", len(runs), total)
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Second)
}

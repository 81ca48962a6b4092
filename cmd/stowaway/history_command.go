package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"stowaway/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent upload attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var attempts []history.Attempt
			if runID = strings.TrimSpace(runID); runID != "" {
				attempts, err = store.ListRun(cmd.Context(), runID)
			} else {
				attempts, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(attempts) == 0 {
				fmt.Fprintln(out, "No upload attempts recorded")
				return nil
			}
			rows := make([][]string, 0, len(attempts))
			for _, a := range attempts {
				rows = append(rows, []string{
					a.FinishedAt.Local().Format("2006-01-02 15:04:05"),
					shortRunID(a.RunID),
					strconv.Itoa(a.Sequence),
					displayPath(a.LocalPath, filepath.Base),
					a.Outcome,
					humanize.IBytes(uint64(max(a.Bytes, 0))),
					a.Detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Finished", "Run", "#", "File", "Outcome", "Size", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Number of attempts to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show only attempts from this run ID")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

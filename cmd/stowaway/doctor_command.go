package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stowaway/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, credentials, and FTP reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var pinger preflight.Pinger
			if !offline {
				pinger = ctx.transport()
			}
			results := preflight.RunAll(cmd.Context(), cfg, ctx.resolveCredentials, pinger)

			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			failed := 0
			for _, r := range results {
				if !renderCheck(out, r, colorize) {
					failed++
				}
			}
			if offline {
				fmt.Fprintln(out, renderStatusLine("FTP server", statusWarn, "skipped (--offline)", colorize))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the FTP login check")
	return cmd
}

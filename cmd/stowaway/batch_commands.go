package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stowaway/internal/batch"
	"stowaway/internal/logging"
	"stowaway/internal/notifications"
	"stowaway/internal/polyglot"
	"stowaway/internal/workspace"
)

func newInjectCommand(ctx *commandContext) *cobra.Command {
	var pending bool

	cmd := &cobra.Command{
		Use:   "inject [entry...]",
		Short: "Embed each entry's payload archive into its host file",
		Long: "Embed payloads into host files. Listed entries are always processed; " +
			"--batch processes every entry that has a payload path and no payload yet.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, batch.OperationInject, args, pending, false)
		},
	}
	cmd.Flags().BoolVar(&pending, "batch", false, "Process every pending entry")
	return cmd
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var pending bool
	var unpack bool

	cmd := &cobra.Command{
		Use:   "extract [entry...]",
		Short: "Recover the appended archive from each entry",
		Long: "Write the archive appended to each entry's generated file (or host file) as " +
			"<name>_extract.zip. --unpack also expands it into a sibling directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, batch.OperationExtract, args, pending, unpack)
		},
	}
	cmd.Flags().BoolVar(&pending, "batch", false, "Process every pending entry")
	cmd.Flags().BoolVar(&unpack, "unpack", false, "Expand each extracted archive")
	return cmd
}

func runBatch(cmd *cobra.Command, ctx *commandContext, operation string, args []string, pending, unpack bool) error {
	if len(args) == 0 && !pending {
		return fmt.Errorf("name entries to %s or pass --batch", operation)
	}
	if len(args) > 0 && pending {
		return errors.New("entry numbers and --batch are mutually exclusive")
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger := ctx.ensureLogger()

	return ctx.withWorkspace(func(ws *workspace.Workspace) error {
		registry := ws.Registry()
		builder := polyglot.NewBuilder(polyglot.WithWorkDir(cfg.Paths.OutputDir), polyglot.WithLogger(logger))
		processor := batch.NewProcessor(registry, builder, polyglot.NewScanner(logger), logger)

		runCtx := cmd.Context()
		var report batch.Report
		switch {
		case pending && operation == batch.OperationInject:
			report = processor.InjectPending(runCtx)
		case pending:
			report = processor.ExtractPending(runCtx)
		default:
			indices, err := resolveSequences(registry, args)
			if err != nil {
				return err
			}
			if operation == batch.OperationInject {
				report = processor.InjectSelected(runCtx, indices)
			} else {
				report = processor.ExtractSelected(runCtx, indices)
			}
		}

		out := cmd.OutOrStdout()
		printBatchReport(out, report)
		if unpack {
			unpackArchives(out, report.Succeeded)
		}

		if operation == batch.OperationInject {
			if err := ws.Save(); err != nil {
				return err
			}
		}
		notifyBatch(runCtx, ctx, report)
		if !report.OK() {
			return fmt.Errorf("%s: %d of %d entries failed", operation, len(report.Failed), report.Total())
		}
		return nil
	})
}

func printBatchReport(out io.Writer, report batch.Report) {
	if report.Total() == 0 {
		fmt.Fprintf(out, "Nothing to %s\n", report.Operation)
		return
	}
	fmt.Fprintf(out, "%s: %d succeeded, %d failed", capitalize(report.Operation), len(report.Succeeded), len(report.Failed))
	if report.Skipped > 0 {
		fmt.Fprintf(out, ", %d skipped", report.Skipped)
	}
	fmt.Fprintln(out)
	for _, path := range report.Succeeded {
		fmt.Fprintf(out, "  ok  %s\n", path)
	}
	if len(report.Failed) == 0 {
		return
	}
	rows := make([][]string, 0, len(report.Failed))
	for _, f := range report.Failed {
		rows = append(rows, []string{strconv.Itoa(f.Entry.Sequence), string(f.Kind()), errorText(f.Reason)})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Kind", "Reason"}, rows, []columnAlignment{alignRight}))
}

func unpackArchives(out io.Writer, archives []string) {
	for _, archive := range archives {
		dest := strings.TrimSuffix(archive, ".zip")
		files, err := polyglot.Unpack(archive, dest)
		if err != nil {
			fmt.Fprintf(out, "  unpack %s: %v\n", archive, err)
			continue
		}
		fmt.Fprintf(out, "  unpacked %d file(s) into %s\n", len(files), dest)
	}
}

func notifyBatch(runCtx context.Context, ctx *commandContext, report batch.Report) {
	if report.Total() == 0 {
		return
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return
	}
	if err := notifications.NewService(cfg).NotifyBatchCompleted(runCtx, report.Operation, len(report.Succeeded), len(report.Failed)); err != nil {
		logging.WarnWithContext(ctx.ensureLogger(), "batch notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "batch outcome was not pushed"),
		)
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"stowaway/internal/catalog"
	"stowaway/internal/config"
	"stowaway/internal/history"
	"stowaway/internal/logging"
	"stowaway/internal/notifications"
	"stowaway/internal/secrets"
	"stowaway/internal/services"
	"stowaway/internal/upload"
	"stowaway/internal/workspace"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var policy string

	cmd := &cobra.Command{
		Use:   "upload [entry...]",
		Short: "Upload generated files to the FTP server",
		Long: "Upload the listed entries, or every entry with a generated file that is not yet " +
			"uploaded. Press Ctrl-C to cancel after the current chunk.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("on-conflict") {
				policy = cfg.Upload.ConflictPolicy
			}
			resolver, err := upload.ResolverForPolicy(policy, newPromptResolver(cmd.InOrStdin(), cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			creds, err := ctx.resolveCredentials()
			if err != nil {
				if errors.Is(err, services.ErrNotFound) {
					return fmt.Errorf("no FTP credentials: run `stowaway credentials set` or set ftp.host in config: %w", err)
				}
				return err
			}
			if err := creds.Validate(); err != nil {
				return err
			}

			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				return runUpload(cmd, ctx, cfg, ws, args, all, resolver, creds)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Upload every entry, including ones already uploaded")
	cmd.Flags().StringVar(&policy, "on-conflict", "", "Remote conflict policy: ask, overwrite, skip, or cancel")
	return cmd
}

func runUpload(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, ws *workspace.Workspace, args []string, all bool, resolver upload.ConflictResolver, creds secrets.Credentials) error {
	logger := ctx.ensureLogger()
	registry := ws.Registry()
	if err := selectForUpload(registry, args, all); err != nil {
		return err
	}
	if len(registry.Selected()) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to upload")
		return nil
	}

	opts := upload.Options{
		ChunkSize:            cfg.FTP.ChunkSize,
		StrictExistenceCheck: cfg.FTP.StrictExistenceCheck,
		ProgressBucket:       float64(cfg.Upload.ProgressBucketPercent),
		Logger:               logger,
	}
	if cfg.History.Enabled {
		journal, err := history.Open(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "upload journal unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run will not appear in `stowaway history`"),
			)
		} else {
			defer journal.Close()
			opts.Journal = journal
		}
	}

	sink := newProgressSink(cmd.ErrOrStderr())
	if closer, ok := sink.(interface{ Close() }); ok {
		defer closer.Close()
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	orchestrator := upload.NewOrchestrator(ctx.transport(), opts)
	run, err := orchestrator.Launch(runCtx, registry, upload.Request{
		Credentials: creds,
		Resolver:    resolver,
		Sink:        sink,
	})
	if err != nil {
		return err
	}
	result := run.Wait()

	printUploadResult(cmd.OutOrStdout(), result)
	saveErr := ws.Save()

	notifier := notifications.NewService(cfg)
	summary := notifications.UploadSummary{
		Server:    creds.Address(),
		Succeeded: len(result.Succeeded),
		Failed:    len(result.Failed),
		Bytes:     result.Bytes,
		Duration:  time.Since(started),
		Cancelled: result.State == upload.StateCancelled,
	}
	notifyCtx := context.WithoutCancel(runCtx)
	if err := notifier.NotifyUploadCompleted(notifyCtx, summary); err != nil {
		logging.WarnWithContext(logger, "upload notification failed", "notification_failed", logging.Error(err))
	}

	if saveErr != nil {
		return saveErr
	}
	switch {
	case result.State == upload.StateCancelled:
		return fmt.Errorf("upload cancelled after %d of %d files", len(result.Succeeded)+len(result.Failed), len(registry.Selected()))
	case len(result.Failed) > 0:
		err := fmt.Errorf("upload: %d of %d files failed", len(result.Failed), len(result.Failed)+len(result.Succeeded))
		if notifyErr := notifier.NotifyError(notifyCtx, err, "upload"); notifyErr != nil {
			logging.WarnWithContext(logger, "error notification failed", "notification_failed", logging.Error(notifyErr))
		}
		return err
	}
	return nil
}

// selectForUpload marks the entries to send. Without args it picks entries
// that have a generated file and, unless all is set, are not yet uploaded.
func selectForUpload(registry *catalog.Registry, args []string, all bool) error {
	registry.SelectAll(false)
	if len(args) > 0 {
		indices, err := resolveSequences(registry, args)
		if err != nil {
			return err
		}
		for _, idx := range indices {
			if err := registry.SetSelected(idx, true); err != nil {
				return err
			}
		}
		return nil
	}
	for idx, entry := range registry.Snapshot() {
		if entry.GeneratedPath == "" || (entry.Uploaded && !all) {
			continue
		}
		if err := registry.SetSelected(idx, true); err != nil {
			return err
		}
	}
	return nil
}

func printUploadResult(out io.Writer, result upload.Result) {
	fmt.Fprintf(out, "Upload %s: %d uploaded, %d failed, %s sent\n",
		result.State, len(result.Succeeded), len(result.Failed), humanize.IBytes(uint64(result.Bytes)))
	if len(result.Failed) == 0 {
		return
	}
	rows := make([][]string, 0, len(result.Failed))
	for _, f := range result.Failed {
		name := f.Name
		if name == "" {
			name = "-"
		}
		rows = append(rows, []string{strconv.Itoa(f.Entry.Sequence), filepath.Base(name), string(f.Kind), errorText(f.Reason)})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "File", "Kind", "Reason"}, rows, []columnAlignment{alignRight}))
}

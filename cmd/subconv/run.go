package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"subconv/internal/batch"
	"subconv/internal/config"
	"subconv/internal/history"
	"subconv/internal/logging"
	"subconv/internal/present"
	"subconv/internal/runlock"
)

// lineObserver prints one status line per batch event.
type lineObserver struct {
	printer *present.Printer
}

func (o lineObserver) OnEmpty(_ string, sourceExt string) {
	o.printer.Line(present.Notice, "No %s files found", sourceExt)
}

func (o lineObserver) OnResult(result batch.Result) {
	o.printer.Line(resultKind(result.Status), "%s", result.Summary())
}

func resultKind(status batch.Status) present.Kind {
	switch status {
	case batch.StatusSuccess:
		return present.Success
	case batch.StatusFailure:
		return present.Failure
	default:
		return present.Notice
	}
}

func runBatch(cmd *cobra.Command, ctx *commandContext, summary bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	dir, err := ctx.batchDir()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	lock, err := runlock.Acquire(cfg.LockDir(), dir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release run lock failed", logging.Error(err))
		}
	}()

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	converter := batch.NewFFmpegConverter(cfg, batch.WithConverterLogger(logger))
	runner := batch.NewRunner(cfg, converter,
		batch.WithObserver(lineObserver{printer: ctx.printer(out)}),
		batch.WithLogger(logger),
	)

	report, runErr := runner.Run(runCtx, dir)

	recordHistory(context.WithoutCancel(runCtx), cfg, report, runErr, logger)

	if summary && !report.Empty && report.Total() > 0 {
		fmt.Fprintln(out, renderRunSummary(report))
	}
	return runErr
}

// recordHistory writes the run to the ledger when enabled. Failures are
// logged and never change the run outcome.
func recordHistory(ctx context.Context, cfg *config.Config, report batch.Report, runErr error, logger *slog.Logger) {
	if !cfg.History.Enabled || (report.Empty && runErr == nil) {
		return
	}
	store, err := history.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "open history failed", "history_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not recorded"),
		)
		return
	}
	defer store.Close()
	if err := store.RecordRun(ctx, report, runErr); err != nil {
		logging.WarnWithContext(logger, "record run failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldRunID, report.RunID),
			logging.String(logging.FieldImpact, "run not recorded"),
		)
	}
}

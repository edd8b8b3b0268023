package batch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"subconv/internal/config"
	"subconv/internal/logging"
	"subconv/internal/services"
)

// Observer receives run progress. Calls happen on the run goroutine in
// discovery order.
type Observer interface {
	// OnEmpty is called once when no input matched.
	OnEmpty(dir, sourceExt string)
	// OnResult is called once per input.
	OnResult(result Result)
}

type nopObserver struct{}

func (nopObserver) OnEmpty(string, string) {}

func (nopObserver) OnResult(Result) {}

// Runner drives one batch over a directory.
type Runner struct {
	sourceExt    string
	targetExt    string
	skipExisting bool
	converter    Converter
	observer     Observer
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithObserver registers the progress observer.
func WithObserver(observer Observer) RunnerOption {
	return func(r *Runner) {
		if observer != nil {
			r.observer = observer
		}
	}
}

// WithLogger sets the base logger; the runner tags it with its component.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logging.NewComponentLogger(logger, "batch")
		}
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) RunnerOption {
	return func(r *Runner) {
		if id = strings.TrimSpace(id); id != "" {
			r.newID = func() string { return id }
		}
	}
}

// NewRunner builds a runner for the configured extensions.
func NewRunner(cfg *config.Config, converter Converter, opts ...RunnerOption) *Runner {
	r := &Runner{
		sourceExt: ".ass",
		targetExt: ".srt",
		converter: converter,
		observer:  nopObserver{},
		logger:    logging.NewComponentLogger(nil, "batch"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	if cfg != nil {
		r.sourceExt = cfg.Convert.SourceExt
		r.targetExt = cfg.Convert.TargetExt
		r.skipExisting = cfg.Convert.SkipExisting
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run converts every matching file in dir.
//
// The returned report covers everything processed before an abort, so callers
// can record partial runs. A nil error means the batch completed (possibly
// with per-file failures) or found nothing to do.
func (r *Runner) Run(ctx context.Context, dir string) (Report, error) {
	report := Report{
		RunID:     r.newID(),
		Dir:       dir,
		SourceExt: r.sourceExt,
		TargetExt: r.targetExt,
		StartedAt: r.now(),
	}

	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, r.logger)

	if r.converter == nil {
		return r.finish(report), services.Wrap(services.ErrConfiguration, "discover", "build runner", "no converter configured", nil)
	}

	inputs, err := Discover(dir, r.sourceExt)
	if err != nil {
		logging.WithContext(services.WithStage(ctx, "discover"), r.logger).Error("discovery failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "discover_failed"),
		)
		return r.finish(report), services.Wrap(services.ErrFilesystem, "discover", "list inputs", "", err)
	}
	inputs = r.withoutOwnOutputs(inputs)
	if len(inputs) == 0 {
		report.Empty = true
		logger.Info("no input files found",
			logging.String("dir", dir),
			logging.String("source_ext", r.sourceExt),
			logging.String(logging.FieldEventType, "batch_empty"),
		)
		r.observer.OnEmpty(dir, r.sourceExt)
		return r.finish(report), nil
	}

	logger.Info("batch started",
		logging.String("dir", dir),
		logging.Int("files", len(inputs)),
		logging.String("source_ext", r.sourceExt),
		logging.String("target_ext", r.targetExt),
		logging.String(logging.FieldEventType, "batch_started"),
	)

	convertCtx := services.WithStage(ctx, "convert")
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return r.finish(report), services.Wrap(services.ErrInterrupted, "convert", "next file", input.Name, err)
		}
		result, err := r.convertOne(services.WithFile(convertCtx, input.Name), input)
		if err != nil {
			logging.WithContext(services.WithFile(convertCtx, input.Name), r.logger).Error("batch aborted",
				logging.Error(err),
				logging.String(logging.FieldEventType, "batch_aborted"),
				logging.Int("processed", report.Total()),
				logging.Int("remaining", len(inputs)-report.Total()),
			)
			return r.finish(report), err
		}
		report.add(result)
		r.observer.OnResult(result)
	}

	logger.Info("batch finished",
		logging.Int("succeeded", report.Succeeded),
		logging.Int("failed", report.Failed),
		logging.Int("skipped", report.Skipped),
		logging.String(logging.FieldEventType, "batch_finished"),
	)
	return r.finish(report), nil
}

func (r *Runner) convertOne(ctx context.Context, input InputFile) (Result, error) {
	logger := logging.WithContext(ctx, r.logger)
	output := DeriveOutputPath(input.Path, r.targetExt)

	if r.skipExisting {
		_, err := os.Lstat(output)
		switch {
		case err == nil:
			logger.Info("output exists, skipping", logging.String("output", output))
			return Result{Input: input, OutputPath: output, Status: StatusSkipped, Detail: "output exists, skipped"}, nil
		case !errors.Is(err, fs.ErrNotExist):
			return Result{}, services.Wrap(services.ErrFilesystem, "convert", "check output", output, err)
		}
	}

	result, err := r.converter.Convert(ctx, input.Path, output)
	if err != nil {
		return result, err
	}
	result.Input = input
	result.OutputPath = output

	if result.Status == StatusSuccess {
		logger.Info("conversion finished",
			logging.String("output", result.OutputName()),
			logging.Duration("duration", result.Duration),
			logging.String(logging.FieldEventType, "conversion_succeeded"),
		)
	} else {
		logging.WarnWithContext(logger, "conversion failed", "conversion_failed",
			logging.Int("exit_code", result.ExitCode),
			logging.String("detail", result.Detail),
		)
	}
	return result, nil
}

// withoutOwnOutputs drops inputs that are themselves outputs of this
// conversion, e.g. "show.zh.srt" when converting ".srt" to ".zh.srt".
func (r *Runner) withoutOwnOutputs(inputs []InputFile) []InputFile {
	if !hasExt(r.targetExt, r.sourceExt) {
		return inputs
	}
	kept := inputs[:0]
	for _, in := range inputs {
		if hasExt(in.Name, r.targetExt) {
			continue
		}
		kept = append(kept, in)
	}
	return kept
}

func (r *Runner) finish(report Report) Report {
	report.FinishedAt = r.now()
	return report
}

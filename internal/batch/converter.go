package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"subconv/internal/config"
	"subconv/internal/logging"
	"subconv/internal/services"
	"subconv/internal/textenc"
)

const maxDetailLength = 200

// Converter turns one input file into one output file.
//
// A non-nil error means the conversion could not be attempted or was
// interrupted; a converter that ran and failed reports StatusFailure instead.
type Converter interface {
	Convert(ctx context.Context, input, output string) (Result, error)
}

type commandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// FFmpegConverter invokes ffmpeg (or a compatible tool) as
// "<tool> -i <input> <output>" from the input's directory.
type FFmpegConverter struct {
	binary    string
	overwrite bool
	charset   string
	timeout   time.Duration
	logger    *slog.Logger
	run       commandRunner
	isUTF8    func(path string) (bool, error)
}

// ConverterOption customizes an FFmpegConverter.
type ConverterOption func(*FFmpegConverter)

// WithCommandRunner injects a custom command runner (primarily for tests).
func WithCommandRunner(r func(ctx context.Context, dir, name string, args ...string) ([]byte, error)) ConverterOption {
	return func(c *FFmpegConverter) {
		if r != nil {
			c.run = r
		}
	}
}

// WithConverterLogger sets the logger used for per-file diagnostics.
func WithConverterLogger(logger *slog.Logger) ConverterOption {
	return func(c *FFmpegConverter) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "converter")
		}
	}
}

// NewFFmpegConverter builds a converter from the [convert] settings.
func NewFFmpegConverter(cfg *config.Config, opts ...ConverterOption) *FFmpegConverter {
	c := &FFmpegConverter{
		binary: "ffmpeg",
		logger: logging.NewNop(),
		run:    defaultCommandRunner,
		isUTF8: textenc.IsUTF8,
	}
	if cfg != nil {
		c.binary = cfg.FFmpegBinary()
		c.overwrite = cfg.Convert.Overwrite
		c.charset = cfg.Convert.CharsetFallback
		if cfg.Convert.TimeoutSeconds > 0 {
			c.timeout = time.Duration(cfg.Convert.TimeoutSeconds) * time.Second
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binary returns the executable the converter invokes.
func (c *FFmpegConverter) Binary() string {
	return c.binary
}

// Convert runs the converter for one file and waits for it to exit.
func (c *FFmpegConverter) Convert(ctx context.Context, input, output string) (Result, error) {
	result := Result{
		Input: InputFile{
			Path: input,
			Name: filepath.Base(input),
			Base: strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)),
		},
		OutputPath: output,
	}
	logger := logging.WithContext(ctx, c.logger)

	args := c.buildArgs(logger, input, output)
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	logger.Debug("invoking converter", logging.String("binary", c.binary), logging.Any("args", args))
	start := time.Now()
	out, err := c.run(runCtx, filepath.Dir(input), c.binary, args...)
	result.Duration = time.Since(start)

	if err == nil {
		result.Status = StatusSuccess
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, services.Wrap(services.ErrInterrupted, "convert", "run converter", result.Input.Name, ctxErr)
	}
	if c.timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.Status = StatusFailure
		result.ExitCode = -1
		result.Detail = fmt.Sprintf("timed out after %s", c.timeout)
		return result, nil
	}

	var exitErr interface{ ExitCode() int }
	if errors.As(err, &exitErr) {
		result.Status = StatusFailure
		result.ExitCode = exitErr.ExitCode()
		result.Detail = fmt.Sprintf("exit status %d", result.ExitCode)
		if tail := outputTail(out); tail != "" {
			result.Detail += ": " + tail
		}
		return result, nil
	}
	return result, services.Wrap(services.ErrExternalTool, "convert", "run converter", c.binary, err)
}

func (c *FFmpegConverter) buildArgs(logger *slog.Logger, input, output string) []string {
	args := make([]string, 0, 6)
	if c.overwrite {
		args = append(args, "-y")
	}
	if c.charset != "" {
		valid, err := c.isUTF8(input)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "charset probe failed", "charset_probe_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "converter decides the input encoding"),
			)
		case !valid:
			logger.Debug("input is not utf-8, adding charset hint", logging.String("charset", c.charset))
			args = append(args, "-sub_charenc", c.charset)
		}
	}
	return append(args, "-i", filepath.Base(input), filepath.Base(output))
}

// outputTail returns the last non-empty line of converter output, trimmed to
// a length that fits on a status line.
func outputTail(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if len(line) > maxDetailLength {
			line = line[:maxDetailLength] + "..."
		}
		return line
	}
	return ""
}

func defaultCommandRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

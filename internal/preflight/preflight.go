package preflight

import (
	"context"

	"subconv/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for converting dir with cfg.
func RunAll(ctx context.Context, cfg *config.Config, dir string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckBinary("Converter", cfg.FFmpegBinary()),
	}
	if results[0].Passed {
		results = append(results, CheckConverterVersion(ctx, cfg.FFmpegBinary()))
	}
	results = append(results,
		CheckDirectoryAccess("Batch directory", dir),
		CheckStateDir("State directory", cfg.Paths.StateDir),
	)
	if cfg.Convert.CharsetFallback != "" {
		results = append(results, CheckCharset(cfg.Convert.CharsetFallback))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}

package config

import (
	"fmt"
	"os"
	"strings"

	"subconv/internal/textenc"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeConvert(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeHistory()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConvert() error {
	c.Convert.SourceExt = NormalizeExt(c.Convert.SourceExt)
	c.Convert.TargetExt = NormalizeExt(c.Convert.TargetExt)

	c.Convert.FFmpegBinary = strings.TrimSpace(c.Convert.FFmpegBinary)
	if c.Convert.FFmpegBinary == "" {
		if value, ok := os.LookupEnv("SUBCONV_FFMPEG"); ok {
			c.Convert.FFmpegBinary = strings.TrimSpace(value)
		}
	}
	if c.Convert.FFmpegBinary == "" {
		c.Convert.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.HasPrefix(c.Convert.FFmpegBinary, "~") {
		expanded, err := expandPath(c.Convert.FFmpegBinary)
		if err != nil {
			return fmt.Errorf("convert.ffmpeg_binary: %w", err)
		}
		c.Convert.FFmpegBinary = expanded
	}

	c.Convert.CharsetFallback = strings.TrimSpace(c.Convert.CharsetFallback)
	if c.Convert.CharsetFallback != "" {
		canonical, err := textenc.Canonical(c.Convert.CharsetFallback)
		if err != nil {
			return fmt.Errorf("convert.charset_fallback: %w", err)
		}
		c.Convert.CharsetFallback = canonical
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeHistory() {
	if c.History.KeepRuns < 0 {
		c.History.KeepRuns = 0
	}
}

// NormalizeExt trims an extension and adds the leading dot when missing.
// "ass", " .ass " and ".ass" all become ".ass". Empty input stays empty.
func NormalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

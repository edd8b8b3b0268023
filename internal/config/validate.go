package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConvert() error {
	if err := validateExt("convert.source_ext", c.Convert.SourceExt); err != nil {
		return err
	}
	if strings.Count(c.Convert.SourceExt, ".") != 1 {
		return fmt.Errorf("convert.source_ext must be a single extension such as .ass (got %q)", c.Convert.SourceExt)
	}
	if err := validateExt("convert.target_ext", c.Convert.TargetExt); err != nil {
		return err
	}
	if strings.EqualFold(c.Convert.SourceExt, c.Convert.TargetExt) {
		return fmt.Errorf("convert.target_ext must differ from convert.source_ext (both %q)", c.Convert.SourceExt)
	}
	if strings.TrimSpace(c.Convert.FFmpegBinary) == "" {
		return errors.New("convert.ffmpeg_binary must be set")
	}
	if c.Convert.TimeoutSeconds < 0 {
		return errors.New("convert.timeout_seconds must be >= 0")
	}
	if c.Convert.Overwrite && c.Convert.SkipExisting {
		return errors.New("convert.overwrite and convert.skip_existing cannot both be enabled")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q (use debug, info, warn, or error)", c.Logging.Level)
	}
}

func validateExt(key, ext string) error {
	if ext == "" || ext == "." {
		return fmt.Errorf("%s must be set", key)
	}
	if strings.ContainsAny(ext, `/\`) {
		return fmt.Errorf("%s must not contain path separators (got %q)", key, ext)
	}
	if strings.HasSuffix(ext, ".") || strings.Contains(ext, "..") {
		return fmt.Errorf("%s is malformed (got %q)", key, ext)
	}
	return nil
}

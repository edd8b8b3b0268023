package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"subconv/internal/config"
	"subconv/internal/logging"
	"subconv/internal/present"
	"subconv/internal/services"
)

type rootFlags struct {
	config  string
	dir     string
	from    string
	to      string
	noColor bool
	verbose bool
}

type commandContext struct {
	flags *rootFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	dirsOnce sync.Once
	dirsErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

// loadConfig loads the configuration once and applies --from/--to. It does
// not touch the filesystem beyond reading the config file.
func (c *commandContext) loadConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		if from := config.NormalizeExt(c.flags.from); from != "" {
			cfg.Convert.SourceExt = from
		}
		if to := config.NormalizeExt(c.flags.to); to != "" {
			cfg.Convert.TargetExt = to
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "apply flags", "", err)
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

// ensureConfig loads the configuration and creates the state directories.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	c.dirsOnce.Do(func() {
		if err := cfg.EnsureDirectories(); err != nil {
			c.dirsErr = services.Wrap(services.ErrFilesystem, "config", "ensure directories", "", err)
		}
	})
	if c.dirsErr != nil {
		return nil, c.dirsErr
	}
	return cfg, nil
}

// batchDir returns the absolute directory to convert.
func (c *commandContext) batchDir() (string, error) {
	dir := strings.TrimSpace(c.flags.dir)
	if dir == "" {
		dir = "."
	}
	abs, err := config.ExpandPath(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory %q: %w", dir, err)
	}
	return filepath.Clean(abs), nil
}

// logger builds the file logger and, with --verbose, tees debug output to stderr.
func (c *commandContext) logger(stderr io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	base, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "logging", "open log", cfg.LogDir(), err)
	}
	if !c.flags.verbose {
		return base, nil
	}
	console, err := logging.NewWriterHandler(stderr, logging.Options{Level: "debug", Format: "console"})
	if err != nil {
		return nil, err
	}
	return logging.TeeLogger(base, console), nil
}

func (c *commandContext) printer(w io.Writer) *present.Printer {
	return present.NewPrinter(w, !c.flags.noColor && present.ShouldColorize(w))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

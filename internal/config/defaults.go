package config

const (
	defaultConfigPath       = "~/.config/subconv/config.toml"
	projectConfigName       = "subconv.toml"
	defaultStateDirFallback = "~/.local/share/subconv"
	defaultSourceExt        = ".ass"
	defaultTargetExt        = ".srt"
	defaultFFmpegBinary     = "ffmpeg"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultHistoryKeepRuns  = 200
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Convert: Convert{
			SourceExt:    defaultSourceExt,
			TargetExt:    defaultTargetExt,
			FFmpegBinary: defaultFFmpegBinary,
		},
		Paths: Paths{
			StateDir: defaultStateDir(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			KeepRuns: defaultHistoryKeepRuns,
		},
	}
}

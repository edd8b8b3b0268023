package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"subconv/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp state directory per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithExtensions overrides the source and target extensions.
func WithExtensions(source, target string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convert.SourceExt = source
		b.cfg.Convert.TargetExt = target
	}
}

// WithHistory enables the run ledger with the given retention.
func WithHistory(keepRuns int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
		b.cfg.History.KeepRuns = keepRuns
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		binDir := b.binDir()
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		prependPath(b.t, binDir)
	}
}

// fakeConverterScript mimics the slice of ffmpeg behaviour subconv relies
// on: it copies the input to the output, refuses to overwrite without -y, and
// fails for inputs whose name contains "fail". Conversions are appended to the
// calls log; "-version" is answered without logging.
const fakeConverterScript = `#!/bin/sh
if [ "$1" = "-version" ]; then
	echo "ffmpeg version 7.0-fake"
	exit 0
fi
echo "$@" >> %q
in=""
out=""
overwrite=0
while [ $# -gt 0 ]; do
	case "$1" in
		-y) overwrite=1; shift ;;
		-sub_charenc) shift 2 ;;
		-i) in="$2"; shift 2 ;;
		*) out="$1"; shift ;;
	esac
done
case "$in" in
	*fail*) echo "$in: Invalid data found when processing input" >&2; exit 1 ;;
esac
if [ -e "$out" ] && [ "$overwrite" != 1 ]; then
	echo "File '$out' already exists. Exiting." >&2
	exit 1
fi
cp "$in" "$out"
`

// WithFakeConverter installs a fake ffmpeg and points the config at it.
func WithFakeConverter() ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(b.binDir(), "ffmpeg")
		script := fmt.Sprintf(fakeConverterScript, filepath.Join(b.baseDir, CallsLogName))
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write fake converter: %v", err)
		}
		b.cfg.Convert.FFmpegBinary = target
	}
}

// CallsLogName is the file, relative to BaseDir, recording fake converter invocations.
const CallsLogName = "ffmpeg-calls.log"

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

func (b *configBuilder) binDir() string {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	return binDir
}

func prependPath(t testing.TB, dir string) {
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

package batch_test

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"subconv/internal/batch"
	"subconv/internal/services"
	"subconv/internal/testsupport"
)

type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func (e exitError) ExitCode() int { return e.code }

type recordedCall struct {
	dir  string
	name string
	args []string
}

func recordingRunner(calls *[]recordedCall, output string, err error) func(context.Context, string, string, ...string) ([]byte, error) {
	return func(_ context.Context, dir, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, recordedCall{dir: dir, name: name, args: append([]string(nil), args...)})
		return []byte(output), err
	}
}

func TestConvertInvokesToolWithInputAndOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var calls []recordedCall
	conv := batch.NewFFmpegConverter(cfg, batch.WithCommandRunner(recordingRunner(&calls, "", nil)))

	dir := t.TempDir()
	result, err := conv.Convert(context.Background(), filepath.Join(dir, "show.ass"), filepath.Join(dir, "show.srt"))
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if result.Status != batch.StatusSuccess {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(calls))
	}
	call := calls[0]
	if call.name != "ffmpeg" || call.dir != dir {
		t.Fatalf("unexpected invocation target: %+v", call)
	}
	if want := []string{"-i", "show.ass", "show.srt"}; !reflect.DeepEqual(call.args, want) {
		t.Fatalf("unexpected args: got %v want %v", call.args, want)
	}
}

func TestConvertNonZeroExitIsFailureNotError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var calls []recordedCall
	output := "ffmpeg version n7.0\n\nbad.ass: Invalid data found when processing input\n"
	conv := batch.NewFFmpegConverter(cfg, batch.WithCommandRunner(recordingRunner(&calls, output, exitError{code: 1})))

	result, err := conv.Convert(context.Background(), "/tmp/x/bad.ass", "/tmp/x/bad.srt")
	if err != nil {
		t.Fatalf("expected per-file failure, got error: %v", err)
	}
	if result.Status != batch.StatusFailure || result.ExitCode != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Detail != "exit status 1: bad.ass: Invalid data found when processing input" {
		t.Fatalf("unexpected detail: %q", result.Detail)
	}
	if got := result.Summary(); got != "bad.ass -> bad.srt (exit status 1: bad.ass: Invalid data found when processing input)" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestConvertMissingBinaryIsInfrastructureError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Convert.FFmpegBinary = filepath.Join(t.TempDir(), "no-such-ffmpeg")
	conv := batch.NewFFmpegConverter(cfg)

	dir := t.TempDir()
	testsupport.WriteInputs(t, dir, "show.ass")
	_, err := conv.Convert(context.Background(), filepath.Join(dir, "show.ass"), filepath.Join(dir, "show.srt"))
	if err == nil {
		t.Fatal("expected infrastructure error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestConvertCancelledContextIsInterrupted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	runner := func(ctx context.Context, _, _ string, _ ...string) ([]byte, error) {
		cancel()
		<-ctx.Done()
		return nil, exitError{code: -1}
	}
	conv := batch.NewFFmpegConverter(cfg, batch.WithCommandRunner(runner))

	_, err := conv.Convert(ctx, "/tmp/x/show.ass", "/tmp/x/show.srt")
	if !errors.Is(err, services.ErrInterrupted) {
		t.Fatalf("expected interrupted error, got %v", err)
	}
}

func TestConvertTimeoutIsPerFileFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Convert.TimeoutSeconds = 1
	runner := func(ctx context.Context, _, _ string, _ ...string) ([]byte, error) {
		select {
		case <-ctx.Done():
			return nil, exitError{code: -1}
		case <-time.After(5 * time.Second):
			return nil, nil
		}
	}
	conv := batch.NewFFmpegConverter(cfg, batch.WithCommandRunner(runner))

	result, err := conv.Convert(context.Background(), "/tmp/x/slow.ass", "/tmp/x/slow.srt")
	if err != nil {
		t.Fatalf("expected per-file failure, got error: %v", err)
	}
	if result.Status != batch.StatusFailure || !strings.Contains(result.Detail, "timed out after 1s") {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestConvertOverwriteAndCharsetArgs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Convert.Overwrite = true
	cfg.Convert.CharsetFallback = "ISO-8859-1"

	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "latin.ass"), "Dialogue: caf\xe9\n")
	testsupport.WriteFile(t, filepath.Join(dir, "utf8.ass"), "Dialogue: café\n")

	var calls []recordedCall
	conv := batch.NewFFmpegConverter(cfg, batch.WithCommandRunner(recordingRunner(&calls, "", nil)))
	for _, name := range []string{"latin", "utf8"} {
		if _, err := conv.Convert(context.Background(), filepath.Join(dir, name+".ass"), filepath.Join(dir, name+".srt")); err != nil {
			t.Fatalf("Convert %s: %v", name, err)
		}
	}

	wantLatin := []string{"-y", "-sub_charenc", "ISO-8859-1", "-i", "latin.ass", "latin.srt"}
	if !reflect.DeepEqual(calls[0].args, wantLatin) {
		t.Fatalf("unexpected latin args: %v", calls[0].args)
	}
	wantUTF8 := []string{"-y", "-i", "utf8.ass", "utf8.srt"}
	if !reflect.DeepEqual(calls[1].args, wantUTF8) {
		t.Fatalf("unexpected utf8 args: %v", calls[1].args)
	}
}

func TestConvertWithRealSubprocess(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	cfg := testsupport.NewConfig(t, testsupport.WithFakeConverter())
	conv := batch.NewFFmpegConverter(cfg)

	dir := t.TempDir()
	testsupport.WriteInputs(t, dir, "ok.ass", "fail.ass")

	ok, err := conv.Convert(context.Background(), filepath.Join(dir, "ok.ass"), filepath.Join(dir, "ok.srt"))
	if err != nil || ok.Status != batch.StatusSuccess {
		t.Fatalf("expected success, got %+v err=%v", ok, err)
	}
	bad, err := conv.Convert(context.Background(), filepath.Join(dir, "fail.ass"), filepath.Join(dir, "fail.srt"))
	if err != nil {
		t.Fatalf("expected per-file failure, got error: %v", err)
	}
	if bad.Status != batch.StatusFailure || bad.ExitCode != 1 {
		t.Fatalf("unexpected failure result: %+v", bad)
	}
	if !strings.Contains(bad.Detail, "Invalid data found") {
		t.Fatalf("expected converter output in detail, got %q", bad.Detail)
	}
}

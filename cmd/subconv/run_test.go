package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"subconv/internal/runlock"
	"subconv/internal/testsupport"
)

func TestRunConvertsSingleFile(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteInputs(t, env.workDir, "show.ass")

	stdout, stderr, code := env.run(t)
	requireExit(t, code, 0, stderr)
	if stdout != "[OK] show.ass -> show.srt\n" {
		t.Fatalf("unexpected stdout: %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(env.workDir, "show.srt")); err != nil {
		t.Fatalf("expected show.srt: %v", err)
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.workDir, "notes.txt"), "x")

	stdout, stderr, code := env.run(t)
	requireExit(t, code, 0, stderr)
	if stdout != "[INFO] No .ass files found\n" {
		t.Fatalf("unexpected stdout: %q", stdout)
	}
	if got := testsupport.ListDir(t, env.workDir); !reflect.DeepEqual(got, []string{"notes.txt"}) {
		t.Fatalf("expected no files created, got %v", got)
	}
	if calls := testsupport.ReadCalls(t, testsupport.BaseDir(env.cfg)); len(calls) != 0 {
		t.Fatalf("converter must not run, got %v", calls)
	}
}

func TestRunOneFailureStillExitsZero(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteInputs(t, env.workDir, "a.ass", "fail.ass", "c.ass")

	stdout, stderr, code := env.run(t)
	requireExit(t, code, 0, stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	want := []string{
		"[OK] a.ass -> a.srt",
		"[OK] c.ass -> c.srt",
		"[FAIL] fail.ass -> fail.srt (exit status 1: fail.ass: Invalid data found when processing input)",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("unexpected lines:\n got %q\nwant %q", lines, want)
	}
	got := testsupport.ListDir(t, env.workDir)
	if !reflect.DeepEqual(got, []string{"a.ass", "a.srt", "c.ass", "c.srt", "fail.ass"}) {
		t.Fatalf("unexpected directory contents: %v", got)
	}
}

func TestRunMissingDirectoryAborts(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.workDir, "missing")

	stdout, stderr, code := runCLI(t, []string{"--config", env.configPath, "--dir", missing})
	requireExit(t, code, 1, stderr)
	if stdout != "" {
		t.Fatalf("expected no status lines, got %q", stdout)
	}
	if !strings.HasPrefix(stderr, "[ERROR] ") {
		t.Fatalf("expected error line, got %q", stderr)
	}
	requireContains(t, stderr, "filesystem error")
	if strings.Count(stderr, "[ERROR]") != 1 {
		t.Fatalf("error must be printed once, got %q", stderr)
	}
}

func TestRunMissingConverterAborts(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Convert.FFmpegBinary = filepath.Join(t.TempDir(), "no-ffmpeg")
	writeTestConfig(t, env.configPath, env.cfg)
	testsupport.WriteInputs(t, env.workDir, "a.ass", "b.ass")

	stdout, stderr, code := env.run(t)
	requireExit(t, code, 1, stderr)
	if stdout != "" {
		t.Fatalf("expected no per-file lines, got %q", stdout)
	}
	requireContains(t, stderr, "[ERROR] external tool error")
}

func TestRunBusyDirectoryAborts(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteInputs(t, env.workDir, "a.ass")

	lock, err := runlock.Acquire(env.cfg.LockDir(), env.workDir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	_, stderr, code := env.run(t)
	requireExit(t, code, 1, stderr)
	requireContains(t, stderr, "another subconv run is converting")
	if _, err := os.Stat(filepath.Join(env.workDir, "a.srt")); !os.IsNotExist(err) {
		t.Fatal("nothing may be converted while another run holds the lock")
	}
}

func TestRunExtensionFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteInputs(t, env.workDir, "movie.srt", "other.zh.srt")

	stdout, stderr, code := env.run(t, "--from", "srt", "--to", ".zh.srt")
	requireExit(t, code, 0, stderr)
	if stdout != "[OK] movie.srt -> movie.zh.srt\n" {
		t.Fatalf("unexpected stdout: %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(env.workDir, "other.zh.zh.srt")); !os.IsNotExist(err) {
		t.Fatal("files already carrying the target extension must not be converted again")
	}
}

func TestRunRejectsInvalidExtensionFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	_, stderr, code := env.run(t, "--from", ".srt", "--to", ".srt")
	requireExit(t, code, 1, stderr)
	requireContains(t, stderr, "configuration error")
}

func TestRunSkipExisting(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Convert.SkipExisting = true
	writeTestConfig(t, env.configPath, env.cfg)
	testsupport.WriteInputs(t, env.workDir, "done.ass", "new.ass")
	testsupport.WriteFile(t, filepath.Join(env.workDir, "done.srt"), "kept")

	stdout, stderr, code := env.run(t)
	requireExit(t, code, 0, stderr)
	want := "[INFO] done.ass -> done.srt (output exists, skipped)\n[OK] new.ass -> new.srt\n"
	if stdout != want {
		t.Fatalf("unexpected stdout: %q", stdout)
	}
}

func TestRunExistingOutputFailsWithoutOverwrite(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteInputs(t, env.workDir, "show.ass")
	testsupport.WriteFile(t, filepath.Join(env.workDir, "show.srt"), "old")

	stdout, stderr, code := env.run(t)
	requireExit(t, code, 0, stderr)
	requireContains(t, stdout, "[FAIL] show.ass -> show.srt (exit status 1: File 'show.srt' already exists. Exiting.)")

	env.cfg.Convert.Overwrite = true
	writeTestConfig(t, env.configPath, env.cfg)
	stdout, stderr, code = env.run(t)
	requireExit(t, code, 0, stderr)
	if stdout != "[OK] show.ass -> show.srt\n" {
		t.Fatalf("unexpected stdout with overwrite: %q", stdout)
	}
}

func TestRunSummaryAndHistory(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory(10))
	testsupport.WriteInputs(t, env.workDir, "ep1.ass", "fail.ass")

	stdout, stderr, code := env.run(t, "--summary")
	requireExit(t, code, 0, stderr)
	requireContains(t, stdout, "INPUT")
	requireContains(t, stdout, "ep1.srt")
	requireContains(t, stdout, "1 converted, 1 failed")

	store := testsupport.MustOpenHistory(t, env.cfg)
	runs, err := store.ListRuns(t.Context(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Succeeded != 1 || runs[0].Failed != 1 {
		t.Fatalf("unexpected recorded runs: %+v", runs)
	}

	listOut, stderr, code := env.run(t, "history")
	requireExit(t, code, 0, stderr)
	requireContains(t, listOut, runs[0].ID[:8])
	requireContains(t, listOut, "completed with failures")

	showOut, stderr, code := env.run(t, "history", "show", runs[0].ID[:8])
	requireExit(t, code, 0, stderr)
	requireContains(t, showOut, "Run:       "+runs[0].ID)
	requireContains(t, showOut, "fail.ass")
	requireContains(t, showOut, "Invalid data found")
}

func TestRunVerboseLogsToStderr(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteInputs(t, env.workDir, "show.ass")

	_, stderr, code := env.run(t, "--verbose")
	requireExit(t, code, 0, stderr)
	requireContains(t, stderr, "[batch]")
	requireContains(t, stderr, "batch finished")
	requireContains(t, stderr, "invoking converter")

	logData, err := os.ReadFile(filepath.Join(env.cfg.LogDir(), "subconv.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	requireContains(t, string(logData), "batch finished")
}

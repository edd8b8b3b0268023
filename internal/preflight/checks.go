package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"subconv/internal/textenc"
)

const versionTimeout = 5 * time.Second

// CheckBinary verifies that command resolves to an executable.
func CheckBinary(name, command string) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Name: name, Detail: "no binary configured"}
	}
	path, err := exec.LookPath(command)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not found on PATH)", command)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", command, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckConverterVersion runs "<command> -version" and reports its first line.
func CheckConverterVersion(ctx context.Context, command string) Result {
	const name = "Converter version"

	checkCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	output, err := exec.CommandContext(checkCtx, command, "-version").CombinedOutput()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s -version failed (%v)", command, err)}
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	if first = strings.TrimSpace(first); first == "" {
		first = "responds"
	}
	return Result{Name: name, Passed: true, Detail: first}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStateDir is CheckDirectoryAccess for a directory subconv creates on
// demand: a missing directory passes when its nearest existing parent is
// writable.
func CheckStateDir(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckCharset verifies that the charset fallback names a supported encoding.
func CheckCharset(charset string) Result {
	const name = "Charset fallback"
	canonical, err := textenc.Canonical(charset)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: canonical}
}

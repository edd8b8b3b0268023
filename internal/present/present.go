// Package present renders the human-readable status lines a batch run prints.
//
// Three presentation classes exist (success, failure, notice). They are purely
// visual: colour is applied only when the destination is a terminal and
// NO_COLOR is unset or empty, so piped output stays plain text.
package present

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Kind selects the presentation class of a status line.
type Kind int

const (
	Notice Kind = iota
	Success
	Failure
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// Label returns the bracketed tag printed before the message.
func (k Kind) Label() string {
	switch k {
	case Success:
		return "OK"
	case Failure:
		return "FAIL"
	default:
		return "INFO"
	}
}

func (k Kind) color() string {
	switch k {
	case Success:
		return ansiGreen
	case Failure:
		return ansiRed
	default:
		return ansiYellow
	}
}

// Decorate renders "[LABEL] message", wrapped in the kind's ANSI colour when
// colorize is true.
func Decorate(kind Kind, message string, colorize bool) string {
	line := fmt.Sprintf("[%s] %s", kind.Label(), strings.TrimSpace(message))
	if !colorize {
		return line
	}
	return Colorize(kind, line)
}

// Colorize wraps text in the kind's ANSI colour unconditionally.
func Colorize(kind Kind, text string) string {
	return kind.color() + text + ansiReset
}

// ErrorLine renders the abort line shown when a run stops on an
// infrastructure error.
func ErrorLine(err error, colorize bool) string {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	line := "[ERROR] " + msg
	if !colorize {
		return line
	}
	return ansiRed + line + ansiReset
}

// ShouldColorize reports whether writer is a terminal that should receive
// ANSI colour codes.
func ShouldColorize(writer io.Writer) bool {
	if noColorRequested() {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// noColorRequested follows the NO_COLOR convention: only a non-empty value
// disables colour.
func noColorRequested() bool {
	return os.Getenv("NO_COLOR") != ""
}

// Printer writes decorated lines to one destination with a fixed colour
// decision.
type Printer struct {
	w        io.Writer
	colorize bool
}

// NewPrinter binds a writer and its colour decision.
func NewPrinter(w io.Writer, colorize bool) *Printer {
	return &Printer{w: w, colorize: colorize}
}

// Line writes one decorated status line.
func (p *Printer) Line(kind Kind, format string, args ...any) {
	fmt.Fprintln(p.w, Decorate(kind, fmt.Sprintf(format, args...), p.colorize))
}

// Error writes the abort line for err.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.w, ErrorLine(err, p.colorize))
}

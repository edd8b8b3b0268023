// Package textenc resolves charset names and checks subtitle text encodings.
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"
)

// ErrUnknownCharset is returned when a charset name is not in the IANA registry
// or has no decoder available.
var ErrUnknownCharset = errors.New("unknown charset")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// maxInspectBytes bounds how much of a file IsUTF8 reads. Subtitle files are
// text and rarely exceed a few megabytes.
const maxInspectBytes = 16 << 20

// Canonical resolves name (any registered alias, case-insensitive) and returns
// the preferred MIME name, or the IANA name when no MIME name exists.
func Canonical(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnknownCharset)
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	if enc == nil {
		return "", fmt.Errorf("%w: %q is registered but unsupported", ErrUnknownCharset, name)
	}
	if mime, err := ianaindex.MIME.Name(enc); err == nil && mime != "" {
		return mime, nil
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return canonical, nil
}

// IsUTF8 reports whether the file at path holds valid UTF-8. A leading byte
// order mark is accepted.
func IsUTF8(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxInspectBytes))
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	return ValidUTF8(data), nil
}

// ValidUTF8 reports whether data is UTF-8, ignoring a leading byte order mark.
// A multi-byte sequence cut off at the end of data is tolerated because callers
// may pass a truncated prefix.
func ValidUTF8(data []byte) bool {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return true
	}
	// Allow one incomplete rune at the tail.
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		tail := data[len(data)-i:]
		if utf8.RuneStart(tail[0]) {
			return !utf8.FullRune(tail) && utf8.Valid(data[:len(data)-i])
		}
	}
	return false
}

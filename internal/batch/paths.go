package batch

import (
	"path/filepath"
	"strings"
)

// DeriveOutputPath replaces the last extension of input with targetExt.
// Only the final component is stripped: "a.b.ass" becomes "a.b.srt".
func DeriveOutputPath(input, targetExt string) string {
	ext := filepath.Ext(input)
	if ext == baseName(input) {
		ext = ""
	}
	return strings.TrimSuffix(input, ext) + targetExt
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

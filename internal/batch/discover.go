package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Discover lists the immediate entries of dir whose name ends with ext.
//
// Matching is case-insensitive, directories and hidden entries never match,
// and the order is the directory listing order. An empty result is not an
// error; an unreadable directory is.
func Discover(dir, ext string) ([]InputFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	files := make([]InputFile, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !hasExt(name, ext) {
			continue
		}
		if entry.IsDir() {
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(dir, name))
			if err != nil || info.IsDir() {
				continue
			}
		}
		files = append(files, InputFile{
			Path: filepath.Join(dir, name),
			Name: name,
			Base: name[:len(name)-len(filepath.Ext(name))],
		})
	}
	return files, nil
}

// hasExt reports whether name carries ext and something in front of it.
func hasExt(name, ext string) bool {
	if ext == "" || len(name) <= len(ext) {
		return false
	}
	return strings.EqualFold(name[len(name)-len(ext):], ext)
}

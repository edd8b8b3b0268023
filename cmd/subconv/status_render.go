package main

import (
	"fmt"
	"strings"

	"subconv/internal/present"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

// renderStatusLine renders a labelled check line, e.g.
// "  Converter:           [OK] /usr/bin/ffmpeg".
func renderStatusLine(label string, kind present.Kind, message string, colorize bool) string {
	status := present.Decorate(kind, message, false)
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status)
	if colorize {
		return present.Colorize(kind, base)
	}
	return base
}

func renderSectionHeader(title string) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	return []string{line, strings.Repeat("-", len(line))}
}

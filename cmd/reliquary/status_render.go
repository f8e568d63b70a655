package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 20

var statusStyles = [...]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusStyles[statusInfo]
	if int(kind) < len(statusStyles) {
		style = statusStyles[kind]
	}
	line := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, label+":", style.label)
	if message != "" {
		line += " " + message
	}
	if colorize {
		return style.color + line + ansiReset
	}
	return line
}

// countKind is OK for a zero count and kind otherwise.
func countKind(n int, kind statusKind) statusKind {
	if n == 0 {
		return statusOK
	}
	return kind
}

// statusWriter prints status lines, colorized only when w is a terminal.
type statusWriter struct {
	w        io.Writer
	colorize bool
}

func newStatusWriter(w io.Writer) *statusWriter {
	return &statusWriter{w: w, colorize: shouldColorize(w)}
}

func (s *statusWriter) line(label string, kind statusKind, message string) {
	fmt.Fprintln(s.w, renderStatusLine(label, kind, message, s.colorize))
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

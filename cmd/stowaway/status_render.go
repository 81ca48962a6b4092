package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"stowaway/internal/preflight"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

type statusStyle struct {
	label string
	color string
}

var statusStyles = map[statusKind]statusStyle{
	statusOK:    {label: "OK", color: "\x1b[32m"},
	statusWarn:  {label: "WARN", color: "\x1b[33m"},
	statusError: {label: "FAIL", color: "\x1b[31m"},
}

const statusLabelWidth = 20

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusStyles[kind]
	if !ok {
		style = statusStyles[statusError]
	}
	line := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, label+":", style.label)
	if message != "" {
		line += " " + message
	}
	if !colorize {
		return line
	}
	return style.color + line + ansiReset
}

// renderCheck prints one preflight result and reports whether it passed.
func renderCheck(out io.Writer, result preflight.Result, colorize bool) bool {
	kind := statusOK
	if !result.Passed {
		kind = statusError
	}
	fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
	return result.Passed
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"sflabel/internal/consensus"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// statusBadge renders a consensus status for terminal output, colorized
// when the writer is a tty.
func statusBadge(status consensus.Status, colorize bool) string {
	badge := strings.ToUpper(string(status))
	if !colorize {
		return badge
	}
	switch status {
	case consensus.StatusLabeled:
		return ansiGreen + badge + ansiReset
	case consensus.StatusNeedsReview:
		return ansiYellow + badge + ansiReset
	case consensus.StatusUnlabeled:
		return ansiBlue + badge + ansiReset
	default:
		return badge
	}
}

func sectionHeader(title string, colorize bool) string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if colorize {
		return ansiBlue + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

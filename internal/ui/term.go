package ui

import (
	"os"

	"golang.org/x/term"
)

// TerminalWidth returns the current terminal width. The fallback is
// used when stdout is not a terminal or the size cannot be read.
func TerminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

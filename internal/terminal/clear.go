// Package terminal provides small helpers around the controlling terminal: its width and
// erasing lines that held secrets typed at a prompt.
package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultWidth is used when stdout is not a terminal.
const DefaultWidth = 80

// Width returns the current width of stdout, or DefaultWidth.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return DefaultWidth
}

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// LinesFor returns how many terminal rows textLength characters occupy at the given width,
// plus the empty row the cursor lands on after Enter.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = DefaultWidth
	}
	lines := (textLength + width - 1) / width
	if lines < 1 {
		lines = 1
	}
	return lines + 1
}

// ClearPreviousLines erases the prompt and the user's input (for example a DSN with a
// password) from w. textLength is the number of characters of prompt plus input.
func ClearPreviousLines(w io.Writer, textLength int) {
	linesToClear := LinesFor(textLength, Width())
	for i := 0; i < linesToClear; i++ {
		fmt.Fprint(w, "\r\x1b[2K") // start of line, clear line
		if i < linesToClear-1 {
			fmt.Fprint(w, "\x1b[1A") // up one line
		}
	}
}

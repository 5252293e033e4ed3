package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"atomicgo.dev/cursor"

	"jobdash/cli/internal/sqlexec"
	"jobdash/cli/internal/terminal"
)

var spinnerFrames = []string{"-", "\\", "|", "/"}

// startInlineSpinner starts a simple inline spinner animation on a single line.
// It displays rotating frames followed by text, updating the same line until the
// returned function is called, which clears the line and restores the cursor.
// On a non-interactive terminal nothing is drawn.
func startInlineSpinner(w io.Writer, text string, interval time.Duration) func() {
	if !terminal.IsInteractive() {
		return func() {}
	}

	cursor.Hide()
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], text)
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], text)
				i++
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			cursor.Show()
		})
	}
}

// runWithSpinner shows a spinner on stderr while run executes.
func runWithSpinner(text string, run func() sqlexec.Outcome) sqlexec.Outcome {
	stop := startInlineSpinner(os.Stderr, text, 100*time.Millisecond)
	defer stop()
	return run()
}

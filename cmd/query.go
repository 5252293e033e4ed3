// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jobdash/cli/internal/catalog"
	"jobdash/cli/internal/render"
	"jobdash/cli/internal/sqlexec"
	"jobdash/cli/internal/terminal"
)

var (
	queryOutput      outputOptions
	queryInteractive bool
	failOnError      bool
)

// queryCmd runs free-form SELECT statements.
var queryCmd = &cobra.Command{
	Use:   "query [SQL]",
	Short: "Run a read-only SQL query",
	Long: `The query command runs one SELECT statement and prints the result. Without SQL, or
with --interactive, it starts a prompt that runs one statement per line until 'exit'.
End a line with a backslash to continue the statement on the next line. Use '-' to read
the statement from stdin.

Only statements starting with SELECT are sent to the database. This is a guard against
mistakes, not a security boundary: give jobdash a database user with read-only grants.`,
	Example: `  jobdash query "SELECT job_title, salary_range FROM Job_Postings LIMIT 10"
  jobdash query -i
  echo "SELECT * FROM Companies" | jobdash query - --output csv`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if queryInteractive || (len(args) == 0 && terminal.IsInteractive()) {
			return queryLoop(ctx, os.Stdin, os.Stdout, s.out, func(sqlText string) sqlexec.Outcome {
				return runWithSpinner("running query", func() sqlexec.Outcome {
					return s.exec.Run(ctx, sqlText, sqlexec.SourceUser)
				})
			})
		}

		sqlText := strings.Join(args, " ")
		if sqlText == "-" || len(args) == 0 {
			data, err := readAll(ctx, os.Stdin)
			if err != nil {
				return fmt.Errorf("read query from stdin: %w", err)
			}
			sqlText = string(data)
		}

		out := s.exec.Run(ctx, sqlText, sqlexec.SourceUser)
		if err := emit(s.out, "", out, catalog.ChartNone, queryOutput); err != nil {
			return err
		}
		if failOnError {
			return sqlexec.AsError(out)
		}
		return nil
	},
}

// queryLoop reads statements from in until EOF or an exit command and shows each outcome.
// A rejected or failed statement never ends the loop. Canceling ctx ends it even while the
// prompt is waiting for input.
func queryLoop(ctx context.Context, in io.Reader, prompt io.Writer, r *render.Renderer, run func(string) sqlexec.Outcome) error {
	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(in, done)

	var pending strings.Builder
	fmt.Fprint(prompt, "jobdash> ")
	for {
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(prompt)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(prompt)
				return <-readErr
			}
			line = l
		}
		if ctx.Err() != nil {
			fmt.Fprintln(prompt)
			return nil
		}

		if pending.Len() == 0 {
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "":
				fmt.Fprint(prompt, "jobdash> ")
				continue
			case "exit", "quit", `\q`:
				return nil
			}
		}

		if strings.HasSuffix(line, `\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			pending.WriteString("\n")
			fmt.Fprint(prompt, "     ... ")
			continue
		}
		pending.WriteString(line)
		sqlText := pending.String()
		pending.Reset()

		r.Outcome("", run(sqlText), catalog.ChartNone)
		fmt.Fprint(prompt, "\njobdash> ")
	}
}

// readLines scans in on its own goroutine so a blocked read never holds up cancellation.
// lines is closed at EOF or on a read error, which is then sent on the error channel.
// Closing done stops the scanner from delivering further lines.
func readLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// readAll reads in to EOF unless ctx is canceled first.
func readAll(ctx context.Context, in io.Reader) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(in)
		ch <- result{data: data, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.data, res.err
	}
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryOutput.register(queryCmd.Flags())
	queryCmd.Flags().BoolVarP(&queryInteractive, "interactive", "i", false, "Start an interactive query prompt")
	queryCmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "Exit with status 1 when the query is rejected or fails")
}

// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"jobdash/cli/internal/catalog"
	"jobdash/cli/internal/sqlexec"
	"jobdash/cli/internal/terminal"
)

const (
	viewInsights = "Top Insights"
	viewQuery    = "Query Runner"
	viewTables   = "Tables"
	viewExit     = "Exit"
)

var errNotInteractive = errors.New("the dashboard needs an interactive terminal; use 'jobdash insights' or 'jobdash query' instead")

// dashboardCmd opens the interactive dashboard.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	Long: `The dashboard lets you switch between the Top Insights view, which runs the
predefined reports, and the Query Runner, which runs your own SELECT statements.
Press Ctrl-C or choose Exit to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd.Context())
	},
}

func runDashboard(ctx context.Context) error {
	if !terminal.IsInteractive() {
		return errNotInteractive
	}
	s, err := openSession()
	if err != nil {
		return err
	}

	pterm.DefaultHeader.WithFullWidth().Println("Job Market Insights")
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Database: ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(s.params.Redacted()))

	for ctx.Err() == nil {
		view, ok := choose("Choose a view", []string{viewInsights, viewQuery, viewTables, viewExit})
		if !ok || view == viewExit {
			return nil
		}

		switch view {
		case viewInsights:
			if err := insightsView(ctx, s); err != nil {
				return err
			}
		case viewQuery:
			queryView(ctx, s)
		case viewTables:
			showTables(ctx, s, "")
		}
	}
	return nil
}

// insightsView lets the user pick one report or run them all.
func insightsView(ctx context.Context, s *session) error {
	const all = "All reports"
	options := append([]string{all}, s.reports.Labels()...)
	choice, ok := choose("Choose a report", options)
	if !ok {
		return nil
	}

	entries := s.reports.Entries()
	if choice != all {
		entry, err := s.reports.Lookup(choice)
		if err != nil {
			return err
		}
		entries = []catalog.Entry{entry}
	}
	return runInsights(ctx, s, entries, outputOptions{})
}

// queryView prompts for statements until the user submits an empty line.
func queryView(ctx context.Context, s *session) {
	pterm.Info.Println("Enter a SELECT statement. Submit an empty line to go back.")
	for ctx.Err() == nil {
		interrupted := false
		sqlText, err := pterm.DefaultInteractiveTextInput.
			WithOnInterruptFunc(func() { interrupted = true }).
			Show("SQL")
		if err != nil || interrupted || strings.TrimSpace(sqlText) == "" {
			return
		}
		out := runWithSpinner("running query", func() sqlexec.Outcome {
			return s.exec.Run(ctx, sqlText, sqlexec.SourceUser)
		})
		s.out.Outcome("", out, catalog.ChartNone)
	}
}

// choose shows a select menu. ok is false when the user pressed Ctrl-C.
func choose(title string, options []string) (string, bool) {
	interrupted := false
	choice, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithDefaultText(title).
		WithOnInterruptFunc(func() { interrupted = true }).
		Show()
	if err != nil || interrupted {
		return "", false
	}
	return choice, true
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"jobdash/cli/internal/catalog"
	"jobdash/cli/internal/sqlexec"
)

var (
	insightsOutput outputOptions
	listReports    bool
)

// insightsCmd runs the predefined reports, all of them or the one named.
var insightsCmd = &cobra.Command{
	Use:   "insights [REPORT]",
	Short: "Run the predefined job market reports",
	Long: `The insights command runs the Top Insights reports: the best paying jobs, the most
in-demand skills and the companies with the most postings, plus any reports defined in the
config file. REPORT is a report id or its label; without it every report runs in order.

A report that fails is shown with its error and the remaining reports still run.`,
	Example: `  jobdash insights
  jobdash insights in-demand-skills
  jobdash insights top-paying-jobs --out top.xlsx`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		if listReports {
			printReportList(s.reports)
			return nil
		}

		entries := s.reports.Entries()
		if len(args) == 1 {
			entry, err := s.reports.Lookup(args[0])
			if err != nil {
				return err
			}
			entries = []catalog.Entry{entry}
		}
		if insightsOutput.path != "" && len(entries) > 1 {
			return errors.New("--out needs a single report; name one, e.g. 'jobdash insights in-demand-skills --out skills.csv'")
		}

		return runInsights(cmd.Context(), s, entries, insightsOutput)
	},
}

// runInsights runs each entry in catalog order and shows its outcome.
func runInsights(ctx context.Context, s *session, entries []catalog.Entry, opts outputOptions) error {
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		out := runWithSpinner("running "+entry.Label, func() sqlexec.Outcome {
			return s.exec.Run(ctx, entry.SQL, sqlexec.SourceCatalog)
		})
		if err := emit(s.out, entry.Label, out, entry.Chart, opts); err != nil {
			return err
		}
	}
	return nil
}

func printReportList(c *catalog.Catalog) {
	data := [][]string{{"ID", "Report", "Chart"}}
	for _, e := range c.Entries() {
		chart := ""
		if e.Chart == catalog.ChartBar {
			chart = "bar"
		}
		data = append(data, []string{e.ID, e.Label, chart})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsOutput.register(insightsCmd.Flags())
	insightsCmd.Flags().BoolVarP(&listReports, "list", "l", false, "List the available reports without running them")
}

// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"jobdash/cli/internal/catalog"
	"jobdash/cli/internal/sqlexec"
)

// tablesCmd lists tables, or the columns of one table, to help write ad-hoc queries.
var tablesCmd = &cobra.Command{
	Use:   "tables [TABLE]",
	Short: "List tables or describe one table's columns",
	Long: `The tables command lists the tables and views in the database. With TABLE
("name" or "schema.name") it lists that table's columns, their types and which of them
form the primary key.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		table := ""
		if len(args) == 1 {
			table = args[0]
		}
		showTables(cmd.Context(), s, table)
		return nil
	},
}

func showTables(ctx context.Context, s *session, table string) {
	if table == "" {
		out := runWithSpinner("reading schema", func() sqlexec.Outcome { return s.exec.ListTables(ctx) })
		s.out.Outcome("Tables", out, catalog.ChartNone)
		return
	}

	out := runWithSpinner("reading schema", func() sqlexec.Outcome { return s.exec.DescribeTable(ctx, table) })
	if success, ok := out.(sqlexec.Success); ok && success.Result.RowCount() == 0 {
		schema, name := sqlexec.ParseTableName(table)
		s.out.TableNotFound(schema, name)
		return
	}
	s.out.Outcome("Columns of "+table, out, catalog.ChartNone)
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

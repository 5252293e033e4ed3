// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"jobdash/cli/internal/sqlexec"
)

var checkConnection bool

// dbinfoCmd shows which connection jobdash would use and where it came from.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show the database connection in use",
	Long: `The dbinfo command displays the connection jobdash resolved from flags, environment,
config file or keychain, with the password masked, and names the source it came from.
With --check it also connects and reports the server version.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}

		lines := []string{
			s.params.Redacted(),
			"",
			"Source:   " + string(s.source),
			"Host:     " + s.params.Host,
			"Port:     " + s.params.Port,
			"Database: " + s.params.Database,
			"User:     " + s.params.User,
		}
		if s.params.SSLMode != "" {
			lines = append(lines, "SSL mode: "+s.params.SSLMode)
		}
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithPadding(1).
			Println(strings.Join(lines, "\n"))
		pterm.Println()

		if checkConnection {
			out := runWithSpinner("connecting", func() sqlexec.Outcome {
				return s.exec.Run(cmd.Context(), "SELECT version() AS server_version", sqlexec.SourceCatalog)
			})
			if s.out.Scalar("Connected", out) {
				stats := s.db.Stats()
				pterm.Printfln("   connection attempts: %d, sessions replaced: %d", stats.Dials, stats.Replaced)
			}
		}

		pterm.Println("To change the saved connection, run: jobdash connect")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
	dbinfoCmd.Flags().BoolVar(&checkConnection, "check", false, "Connect and show the server version")
}

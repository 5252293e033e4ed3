// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for jobdash.
// It implements the dashboard and its two views (predefined insights and the ad-hoc query
// runner) as subcommands, plus connection management, using the Cobra CLI framework.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"jobdash/cli/internal/config"
	jderrors "jobdash/cli/internal/errors"
	"jobdash/cli/internal/logging"
	"jobdash/cli/internal/render"
	"jobdash/cli/internal/terminal"
)

var (
	showVersion bool
	verbose     bool
	dsnFlag     string
	configPath  string
	noColor     bool
	logJSON     bool

	// cfg and logger are set by the root command's PersistentPreRunE.
	cfg    = &config.Config{}
	logger = zerolog.Nop()
)

// rootCmd represents the base command when called without any subcommands.
// On a terminal it opens the interactive dashboard.
var rootCmd = &cobra.Command{
	Use:   "jobdash",
	Short: "Job market insights dashboard for a PostgreSQL job postings database",
	Long: `jobdash runs predefined job market reports and ad-hoc read-only SQL against a
PostgreSQL database of job postings, skills and companies.

Connection settings are taken from, in order: --dsn, JOBDASH_DSN (or dsn in the config
file), DATABASE_URL, JOBDASH_DB_HOST/NAME/USER/PASSWORD/PORT (or the db block of the
config file), and finally the connection saved with 'jobdash connect'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		loaded, err := config.Load(config.LoadOptions{Path: configPath})
		if err != nil {
			return jderrors.Wrap(jderrors.Configuration, "could not load settings", err)
		}
		cfg = loaded

		if noColor || cfg.NoColor || os.Getenv("NO_COLOR") != "" {
			render.DisableColor()
		}
		logger = logging.New(logging.Options{
			Level:   cfg.LogLevel,
			Verbose: verbose,
			JSON:    logJSON || cfg.LogJSON,
		})
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion()
			return nil
		}
		if terminal.IsInteractive() {
			return runDashboard(cmd.Context())
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// Ctrl-C cancels the command context; the database session is closed before exiting.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeSession()

	if err != nil {
		fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	pf.StringVar(&dsnFlag, "dsn", "", "PostgreSQL connection string (overrides all other settings)")
	pf.StringVar(&configPath, "config", "", "Path to a config file (default $XDG_CONFIG_HOME/jobdash/config.yaml)")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&logJSON, "log-json", false, "Write diagnostic logs as JSON")
}

// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"jobdash/cli/internal/keychain"
)

// disconnectCmd removes the connection saved by connect.
var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Remove the saved database connection",
	Long: `The disconnect command deletes the connection string saved in the OS keychain by
'jobdash connect'. Connection settings from flags, environment variables or the config
file are not affected.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			pterm.Error.Println("Secure storage is not available on this system")
			return err
		}
		if err := km.ClearDB(); err != nil {
			return err
		}

		pterm.Success.Println("Saved database connection removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(disconnectCmd)
}

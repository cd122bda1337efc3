package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const capycheckVersion = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the capycheck harness version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "capycheck %s\n", capycheckVersion)
		return nil
	},
}

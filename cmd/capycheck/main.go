// Command capycheck is a small development harness around the capy
// semantic middle-end: it loads a capy.toml manifest and reports what the
// pipeline would see (resolved source files, target pointer width), and
// reports whether the on-disk inference cache holds an entry (with its
// signature count) or clears it. It is not "the
// capy CLI" — there is no lexer/parser/codegen backend wired up here yet —
// it exists to exercise the manifest loader and disk cache from a real
// binary.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "capycheck",
	Short: "Development harness for the capy semantic middle-end",
}

func main() {
	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

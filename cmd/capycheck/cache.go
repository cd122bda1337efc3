package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"capy/internal/project"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the on-disk inference cache",
}

var cacheStatCmd = &cobra.Command{
	Use:   "stat <file.capy>",
	Short: "Report whether a source file has a cached, up-to-date cache entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheStat,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached entry",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheStat(cmd *cobra.Command, args []string) error {
	path := args[0]
	digest, err := project.HashFile(path)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", path, err)
	}
	dc, err := project.OpenDiskCache("capy")
	if err != nil {
		return fmt.Errorf("failed to open disk cache: %w", err)
	}
	var payload project.DiskPayload
	hit, err := dc.Get(digest, &payload)
	if err != nil {
		return fmt.Errorf("failed to read cache entry: %w", err)
	}
	if !hit {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: not cached\n", path)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: cached, %d signature(s)\n", path, len(payload.Signatures))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	dc, err := project.OpenDiskCache("capy")
	if err != nil {
		return fmt.Errorf("failed to open disk cache: %w", err)
	}
	if err := dc.DropAll(); err != nil {
		return fmt.Errorf("failed to clear disk cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
	return nil
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"capy/internal/project"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest [dir]",
	Short: "Load capy.toml and print the resolved build inputs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runManifest,
}

type manifestPayload struct {
	Package      string   `json:"package"`
	Entry        string   `json:"entry"`
	PointerWidth int      `json:"pointer_width"`
	Files        []string `json:"files"`
}

func runManifest(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	m, ok, err := project.LoadFromDir(dir)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}
	if !ok {
		return fmt.Errorf("no capy.toml found under %s", dir)
	}

	payload := manifestPayload{
		Package:      m.Config.Package.Name,
		Entry:        m.Config.Build.Entry,
		PointerWidth: m.Config.Build.PointerWidth,
		Files:        m.SourceFiles(),
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

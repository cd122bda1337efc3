// Package project loads capy.toml, the package manifest that names a
// project's source files and entry point.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a parsed capy.toml, resolved relative to the directory that
// contains it.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config is the decoded shape of capy.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
}

// PackageConfig is the [package] table.
type PackageConfig struct {
	Name string `toml:"name"`
}

// BuildConfig is the [build] table.
type BuildConfig struct {
	// Entry is the .capy file containing the program's entry point.
	Entry string `toml:"entry"`
	// Files lists every additional source file in the package, relative to
	// the manifest's directory. Entry is implicitly included even if absent
	// from this list.
	Files []string `toml:"files"`
	// PointerWidth selects the target's pointer width in bits; 0 defaults
	// to 64.
	PointerWidth int `toml:"pointer_width"`
}

// FindManifest walks up from startDir to locate capy.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "capy.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	if !meta.IsDefined("build") {
		return nil, fmt.Errorf("%s: missing [build]", path)
	}
	if !meta.IsDefined("build", "entry") || strings.TrimSpace(cfg.Build.Entry) == "" {
		return nil, fmt.Errorf("%s: missing [build].entry", path)
	}
	if cfg.Build.PointerWidth == 0 {
		cfg.Build.PointerWidth = 64
	}
	if cfg.Build.PointerWidth != 32 && cfg.Build.PointerWidth != 64 {
		return nil, fmt.Errorf("%s: [build].pointer_width must be 32 or 64, got %d", path, cfg.Build.PointerWidth)
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

// LoadFromDir walks up from startDir, returning (manifest, true, nil) if a
// capy.toml is found, (nil, false, nil) if none exists, or an error for a
// found-but-invalid manifest.
func LoadFromDir(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// SourceFiles returns every source file path named by the manifest,
// relative to Root, with Entry first and de-duplicated.
func (m *Manifest) SourceFiles() []string {
	seen := map[string]bool{m.Config.Build.Entry: true}
	out := []string{m.Config.Build.Entry}
	for _, f := range m.Config.Build.Files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// AbsPath joins a manifest-relative source path against Root.
func (m *Manifest) AbsPath(rel string) string {
	return filepath.Join(m.Root, filepath.FromSlash(rel))
}

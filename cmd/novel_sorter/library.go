package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jonathan/novel-sorter/internal/config"
)

// Environment variables read by every command
const (
	libraryEnv     = "NOVEL_SORTER_LIBRARY"
	databaseURLEnv = "DATABASE_URL"
)

// libraryFlags locate the library and its configuration
type libraryFlags struct {
	configPath string
	libraryDir string
}

func (f *libraryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to a YAML, JSON or TOML config file")
	cmd.Flags().StringVarP(&f.libraryDir, "library", "l", "", "Library directory (defaults to "+libraryEnv+" or the current directory)")
}

// load builds the configuration: built-in defaults, then the config file,
// then the environment, then flags the user set explicitly. The result is
// validated before it is returned.
func (f *libraryFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded.MergeWithDefaults(config.Default())
	}

	if env := os.Getenv(libraryEnv); env != "" {
		cfg.Paths.LibraryDir = env
	}
	if cmd.Flags().Changed("library") {
		cfg.Paths.LibraryDir = f.libraryDir
	}
	if cfg.Paths.LibraryDir == "" {
		cfg.Paths.LibraryDir = "."
	}
	abs, err := filepath.Abs(cfg.Paths.LibraryDir)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to resolve library directory: %w", err)
	}
	cfg.Paths.LibraryDir = abs

	return cfg, nil
}

// absDir resolves a directory flag, falling back to def when unset.
func absDir(dir, def string) (string, error) {
	if dir == "" {
		return def, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return abs, nil
}

// withinAny reports whether path lies inside one of dirs.
func withinAny(path string, dirs ...string) bool {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		rel, err := filepath.Rel(dir, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

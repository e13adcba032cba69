// Package main provides the entry point for the novel_sorter CLI, which
// repairs text encodings and sorts novels into category directories.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "novel_sorter",
	Short: "Sort a library of novels into category directories",
	Long: `novel_sorter repairs legacy text encodings to UTF-8, scores each pending novel
against weighted keyword categories and moves it into its category, a review
directory, or leaves it pending.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/novel-sorter/internal/encoding"
	"github.com/jonathan/novel-sorter/internal/observability"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Inspect or purge encoding repair backups",
	Long:  "Backups of repaired files are kept until they are purged explicitly with 'backups purge'.",
}

var backupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, oldest first",
	RunE:  runBackupsList,
}

var backupsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete backups older than --older-than, or all with --all",
	RunE:  runBackupsPurge,
}

var (
	backupsListLibrary  libraryFlags
	backupsPurgeLibrary libraryFlags
	backupsOlderThan    time.Duration
	backupsAll          bool
)

func init() {
	backupsListLibrary.register(backupsListCmd)
	backupsPurgeLibrary.register(backupsPurgeCmd)
	backupsPurgeCmd.Flags().DurationVar(&backupsOlderThan, "older-than", 0, "Delete backups last modified before this long ago (e.g. 720h)")
	backupsPurgeCmd.Flags().BoolVar(&backupsAll, "all", false, "Delete every backup")

	backupsCmd.AddCommand(backupsListCmd, backupsPurgeCmd)
	rootCmd.AddCommand(backupsCmd)
}

func runBackupsList(cmd *cobra.Command, _ []string) error {
	cfg, err := backupsListLibrary.load(cmd)
	if err != nil {
		return err
	}
	backups, err := encoding.ListBackups(cfg.BackupPath())
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintBackups(backups)
	return nil
}

func runBackupsPurge(cmd *cobra.Command, _ []string) error {
	if backupsAll == (backupsOlderThan > 0) {
		return fmt.Errorf("exactly one of --older-than or --all must be provided")
	}

	cfg, err := backupsPurgeLibrary.load(cmd)
	if err != nil {
		return err
	}

	var cutoff time.Time
	if !backupsAll {
		cutoff = time.Now().Add(-backupsOlderThan)
	}
	removed, err := encoding.PurgeBackups(cfg.BackupPath(), cutoff)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Purged %d backup(s) from %s\n", len(removed), cfg.BackupPath())
	return nil
}

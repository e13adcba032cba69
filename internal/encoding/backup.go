package encoding

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// BackupEntry is one file in the backup directory.
type BackupEntry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// ListBackups returns the backups in dir, oldest first. A missing directory
// holds no backups.
func ListBackups(dir string) ([]BackupEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &Error{Message: fmt.Sprintf("failed to list backups in %s", dir), Cause: err}
	}

	backups := make([]BackupEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupEntry{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].ModTime.Before(backups[j].ModTime)
		}
		return backups[i].Name < backups[j].Name
	})
	return backups, nil
}

// PurgeBackups removes backups last modified before cutoff. A zero cutoff
// removes every backup. Backups are never removed implicitly; this is the
// only code path that deletes them.
func PurgeBackups(dir string, cutoff time.Time) ([]BackupEntry, error) {
	backups, err := ListBackups(dir)
	if err != nil {
		return nil, err
	}
	var removed []BackupEntry
	for _, b := range backups {
		if !cutoff.IsZero() && !b.ModTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(b.Path); err != nil {
			return removed, &Error{Message: fmt.Sprintf("failed to remove backup %s", b.Name), Cause: err}
		}
		removed = append(removed, b)
	}
	return removed, nil
}

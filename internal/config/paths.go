package config

import "path/filepath"

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.LibraryDir, p)
}

// BackupPath returns the directory holding pre-repair copies of files.
func (c *Config) BackupPath() string {
	return c.resolve(c.Paths.BackupDir)
}

// LogsPath returns the directory receiving JSON reports.
func (c *Config) LogsPath() string {
	return c.resolve(c.Paths.LogsDir)
}

// PendingPath returns the directory of files waiting for classification.
func (c *Config) PendingPath() string {
	return c.resolve(c.Processing.PendingDir)
}

// HoldingPath returns the directory of files flagged for human review.
func (c *Config) HoldingPath() string {
	return c.resolve(c.Processing.HoldingDir)
}

// CategoryPath returns the directory of a category.
func (c *Config) CategoryPath(id string) string {
	return filepath.Join(c.Paths.LibraryDir, id)
}

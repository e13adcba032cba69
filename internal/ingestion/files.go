// Package ingestion discovers the text files waiting for classification.
package ingestion

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathan/novel-sorter/internal/placement"
)

// TextExt is the canonical extension of library files.
const TextExt = ".txt"

// IsTextFile reports whether name has a .txt extension in any letter case.
// Hidden files, including in-flight repair temp files, are excluded.
func IsTextFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), TextExt)
}

// ListTextFiles returns the text files in dir, sorted by path. A missing
// directory yields no files.
func ListTextFiles(dir string, recursive bool) ([]string, error) {
	var files []string

	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() && IsTextFile(e.Name()) {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
		sort.Strings(files)
		return files, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsTextFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// NormalizeExtension renames a file whose extension is .txt in another
// letter case to use ".txt", adding a numeric suffix if that name is taken.
// It returns the path the file ends up at.
func NormalizeExtension(path string, placer *placement.Placer) (string, error) {
	ext := filepath.Ext(path)
	if ext == TextExt || !strings.EqualFold(ext, TextExt) {
		return path, nil
	}
	name := strings.TrimSuffix(filepath.Base(path), ext) + TextExt
	return placer.Place(path, filepath.Dir(path), name)
}

// ListPending returns the files in the pending directory with their
// extensions normalized.
func ListPending(dir string, placer *placement.Placer) ([]string, error) {
	files, err := ListTextFiles(dir, false)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		normalized, err := NormalizeExtension(f, placer)
		if err != nil {
			return nil, err
		}
		out = append(out, normalized)
	}
	sort.Strings(out)
	return out, nil
}

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// TimestampLayout formats report file timestamps.
const TimestampLayout = "20060102_150405"

// writeJSON writes v as indented JSON to a new file in dir named
// <prefix>_<ts>.json, adding a numeric suffix if a report with that name
// already exists.
func writeJSON(dir, prefix string, ts time.Time, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", &Error{Message: "failed to marshal report", Cause: err}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &Error{Message: fmt.Sprintf("failed to create %s", dir), Cause: err}
	}

	stem := prefix + "_" + ts.Format(TimestampLayout)
	for i := 0; ; i++ {
		name := stem + ".json"
		if i > 0 {
			name = stem + "_" + strconv.Itoa(i) + ".json"
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", &Error{Message: fmt.Sprintf("failed to create %s", path), Cause: err}
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return "", &Error{Message: fmt.Sprintf("failed to write %s", path), Cause: err}
		}
		if err := f.Close(); err != nil {
			return "", &Error{Message: fmt.Sprintf("failed to close %s", path), Cause: err}
		}
		return path, nil
	}
}

// replaceJSON atomically replaces path with v as indented JSON.
func replaceJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &Error{Message: "failed to marshal report", Cause: err}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &Error{Message: fmt.Sprintf("failed to write %s", tmp), Cause: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &Error{Message: fmt.Sprintf("failed to replace %s", path), Cause: err}
	}
	return nil
}

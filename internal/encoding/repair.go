package encoding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"

	"github.com/jonathan/novel-sorter/internal/types"
)

// Stage names a step of an in-place repair
type Stage string

// Repair stages, in order
const (
	StageRead      Stage = "read"
	StageBackup    Stage = "backup"
	StageWriteTemp Stage = "write_temp"
	StageVerify    Stage = "verify"
	StageReplace   Stage = "replace"
	StageCommitted Stage = "committed"
)

// RepairStatus is the result kind of a repair
type RepairStatus string

// Repair statuses
const (
	StatusCanonical RepairStatus = "canonical"
	StatusRepaired  RepairStatus = "repaired"
)

// RepairOutcome describes a successful repair.
type RepairOutcome struct {
	Path       string             `json:"path"`
	Status     RepairStatus       `json:"status"`
	Encoding   string             `json:"encoding"`
	Confidence float64            `json:"confidence"`
	Method     types.DecodeMethod `json:"method"`
	BackupPath string             `json:"backup_path,omitempty"`
}

// Repairer rewrites files as canonical UTF-8. Files are only ever replaced
// by an atomic rename after the backup and the new content are verified.
type Repairer struct {
	resolver  *Resolver
	backupDir string

	// checkpoint is called after each stage completes; a non-nil error aborts
	// the repair as if the process had died there.
	checkpoint func(Stage) error
}

// NewRepairer creates a Repairer writing backups into backupDir.
func NewRepairer(resolver *Resolver, backupDir string) *Repairer {
	return &Repairer{resolver: resolver, backupDir: backupDir}
}

// BackupDir returns the directory receiving backups.
func (r *Repairer) BackupDir() string {
	return r.backupDir
}

// Repair reads, resolves and, when needed, rewrites the file at path.
func (r *Repairer) Repair(ctx context.Context, path string) (*RepairOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := ReadFile(path)
	if err != nil {
		return nil, &RepairIOError{Path: path, Stage: StageRead, Cause: err}
	}
	decoded, ok := r.resolver.Resolve(raw.Content)
	if !ok {
		return nil, &UnresolvedError{Path: path, Tried: r.resolver.Candidates()}
	}
	return r.Apply(path, raw.Content, decoded)
}

// Apply rewrites path with decoded, which must have been resolved from raw.
// Canonical input is left alone and gets no backup.
func (r *Repairer) Apply(path string, raw []byte, decoded types.DecodedText) (*RepairOutcome, error) {
	outcome := &RepairOutcome{
		Path:       path,
		Status:     StatusCanonical,
		Encoding:   decoded.Encoding,
		Confidence: decoded.Confidence,
		Method:     decoded.Method,
	}
	if decoded.Canonical() {
		return outcome, nil
	}

	content := CanonicalBytes(decoded.Text)

	backupPath, err := r.backup(path, raw)
	if err != nil {
		return nil, &RepairIOError{Path: path, Stage: StageBackup, Cause: err}
	}
	outcome.BackupPath = backupPath
	if err := r.reach(StageBackup); err != nil {
		return nil, &RepairIOError{Path: path, Stage: StageBackup, Cause: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &RepairIOError{Path: path, Stage: StageWriteTemp, Cause: err}
	}
	tmpPath, err := writeTemp(path, content, info.Mode().Perm())
	if err != nil {
		return nil, &RepairIOError{Path: path, Stage: StageWriteTemp, Cause: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()
	if err := r.reach(StageWriteTemp); err != nil {
		return nil, &RepairIOError{Path: path, Stage: StageWriteTemp, Cause: err}
	}

	if err := verifyTemp(tmpPath, content); err != nil {
		return nil, &RepairIOError{Path: path, Stage: StageVerify, Cause: err}
	}
	current, err := os.ReadFile(path)
	if err != nil {
		return nil, &RepairIOError{Path: path, Stage: StageVerify, Cause: err}
	}
	if !bytes.Equal(current, raw) {
		return nil, &RepairIOError{Path: path, Stage: StageVerify, Cause: errors.New("source changed since it was read")}
	}
	if err := r.reach(StageVerify); err != nil {
		return nil, &RepairIOError{Path: path, Stage: StageVerify, Cause: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return nil, &RepairIOError{Path: path, Stage: StageReplace, Cause: err}
	}
	committed = true
	if err := r.reach(StageCommitted); err != nil {
		return nil, &RepairIOError{Path: path, Stage: StageCommitted, Cause: err}
	}

	outcome.Status = StatusRepaired
	log.Printf("[ENCODING] Repaired %s (%s, %.2f), backup at %s", filepath.Base(path), decoded.Encoding, decoded.Confidence, backupPath)
	return outcome, nil
}

func (r *Repairer) reach(stage Stage) error {
	if r.checkpoint == nil {
		return nil
	}
	return r.checkpoint(stage)
}

// CanonicalBytes returns the UTF-8 bytes written for a decoded text.
// Replacement characters and NULs become spaces so that the result is itself
// canonical and a second run leaves it alone.
func CanonicalBytes(text string) []byte {
	if !strings.ContainsRune(text, utf8.RuneError) && !strings.ContainsRune(text, 0) {
		return []byte(text)
	}
	return []byte(strings.Map(func(r rune) rune {
		if r == utf8.RuneError || r == 0 {
			return ' '
		}
		return r
	}, text))
}

// backup copies raw into the backup directory under a name no other backup
// holds, then checks the copy landed completely.
func (r *Repairer) backup(path string, raw []byte) (string, error) {
	if err := os.MkdirAll(r.backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	f, backupPath, err := claim(r.backupDir, filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := f.Write(raw); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to sync backup: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close backup: %w", err)
	}

	info, err := os.Stat(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat backup: %w", err)
	}
	want, err := safecast.Conv[int64](len(raw))
	if err != nil {
		return "", err
	}
	if info.Size() != want {
		return "", fmt.Errorf("backup size mismatch: wrote %d bytes, found %d", want, info.Size())
	}
	return backupPath, nil
}

// maxSuffix bounds the search for a free backup name.
const maxSuffix = 10000

// claim creates a new file named name in dir, or name with a numeric suffix
// when that is taken.
func claim(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = stem + "_" + strconv.Itoa(i) + ext
		}
		p := filepath.Join(dir, candidate)
		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, p, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("failed to create backup %s: %w", p, err)
		}
	}
	return nil, "", fmt.Errorf("no free backup name for %s", name)
}

func writeTemp(path string, content []byte, perm fs.FileMode) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	fail := func(err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", err
	}
	if _, err := tmp.Write(content); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return tmpPath, nil
}

func verifyTemp(tmpPath string, want []byte) error {
	got, err := os.ReadFile(tmpPath)
	if err != nil {
		return err
	}
	if !utf8.Valid(got) {
		return errors.New("replacement is not valid UTF-8")
	}
	if !bytes.Equal(got, want) {
		return errors.New("replacement content differs from decoded text")
	}
	return nil
}

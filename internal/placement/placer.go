package placement

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
)

// maxSuffix bounds the search for a free destination name.
const maxSuffix = 10000

// Placer moves files. Destination names are claimed by creating them
// exclusively, so two moves never land on the same name.
type Placer struct {
	mu sync.Mutex
}

// New creates a Placer.
func New() *Placer {
	return &Placer{}
}

// Place moves src into dir under name, or under name with a "_N" suffix
// before the extension when name is taken. It returns the final path. A file
// that already is dir/name is left alone.
func (p *Placer) Place(src, dir, name string) (string, error) {
	if SamePath(src, filepath.Join(dir, name)) {
		return src, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &Error{Message: fmt.Sprintf("failed to create %s", dir), Cause: err}
	}

	dest, err := p.claim(dir, name)
	if err != nil {
		return "", err
	}

	if err := os.Rename(src, dest); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			_ = os.Remove(dest)
			return "", &Error{Message: fmt.Sprintf("failed to move %s", filepath.Base(src)), Cause: err}
		}
		if err := copyThenRemove(src, dest); err != nil {
			_ = os.Remove(dest)
			return "", &Error{Message: fmt.Sprintf("failed to copy %s across devices", filepath.Base(src)), Cause: err}
		}
	}
	return dest, nil
}

// claim reserves a free name in dir by creating an empty placeholder.
func (p *Placer) claim(dir, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = stem + "_" + strconv.Itoa(i) + ext
		}
		dest := filepath.Join(dir, candidate)
		f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			if err := f.Close(); err != nil {
				_ = os.Remove(dest)
				return "", &Error{Message: "failed to claim destination", Cause: err}
			}
			return dest, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", &Error{Message: fmt.Sprintf("failed to claim %s", dest), Cause: err}
		}
	}
	return "", &Error{Message: fmt.Sprintf("no free name for %s in %s", name, dir)}
}

func copyThenRemove(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

// SamePath reports whether two paths name the same location after cleaning.
func SamePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// InDir reports whether path sits directly in dir.
func InDir(path, dir string) bool {
	return SamePath(filepath.Dir(path), dir)
}

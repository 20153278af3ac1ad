package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/forPelevin/hlextract/internal/failure"
)

const (
	dirPrefix  = "hlextract-"
	lockName   = ".lock"
	keepMarker = ".keep"
	sourceName = "source.mp4"
	audioName  = "audio.wav"
)

// Workspace is the scratch directory owned by a single run. It holds the
// downloaded source media and intermediate files, and stays flock-ed for
// as long as the run is alive.
type Workspace struct {
	ID string

	dir      string
	lock     *flock.Flock
	kept     bool
	released bool
	remove   func(string) error
}

// Acquire creates and locks a fresh workspace under parent (os.TempDir()
// when empty).
func Acquire(parent string) (*Workspace, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	id := uuid.NewString()
	dir := filepath.Join(parent, dirPrefix+id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	lk := flock.New(filepath.Join(dir, lockName))
	locked, err := lk.TryLock()
	if err != nil || !locked {
		_ = os.RemoveAll(dir)
		if err == nil {
			err = errors.New("lock held by another process")
		}
		return nil, fmt.Errorf("lock workspace %s: %w", dir, err)
	}
	return &Workspace{ID: id, dir: dir, lock: lk, remove: os.Remove}, nil
}

// Dir is the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

func (w *Workspace) SourcePath() string { return filepath.Join(w.dir, sourceName) }

func (w *Workspace) AudioPath() string { return filepath.Join(w.dir, audioName) }

// RemoveSource deletes the downloaded media. A missing file is not an
// error. When another process still holds the file the returned error
// carries failure.ErrMediaInUse and the file stays where it is.
func (w *Workspace) RemoveSource() error {
	err := w.remove(w.SourcePath())
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if failure.IsInUse(err) {
		_ = w.Keep()
		return failure.Wrap(failure.ErrMediaInUse, "cleanup", "remove source", err)
	}
	return failure.Wrap(failure.ErrCleanup, "cleanup", "remove source", err)
}

// Keep marks the source media to survive Release and Prune.
func (w *Workspace) Keep() error {
	w.kept = true
	return os.WriteFile(filepath.Join(w.dir, keepMarker), nil, 0o644)
}

// Kept reports whether Release will leave the source media on disk.
func (w *Workspace) Kept() bool { return w.kept }

// Release unlocks the workspace and deletes it, except for the source media
// (and the keep marker) when Keep was called or the source could not be
// removed. Calling Release more than once is a no-op.
func (w *Workspace) Release() error {
	if w.released {
		return nil
	}
	w.released = true

	var errs []error
	if err := w.lock.Unlock(); err != nil {
		errs = append(errs, fmt.Errorf("unlock workspace: %w", err))
	}

	if !w.kept {
		if err := os.RemoveAll(w.dir); err != nil {
			errs = append(errs, fmt.Errorf("remove workspace: %w", err))
		}
		return errors.Join(errs...)
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		errs = append(errs, fmt.Errorf("read workspace: %w", err))
		return errors.Join(errs...)
	}
	for _, e := range entries {
		if e.Name() == sourceName || e.Name() == keepMarker {
			continue
		}
		if err := os.RemoveAll(filepath.Join(w.dir, e.Name())); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", e.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Prune removes workspaces under parent left behind by runs that died
// without releasing them: unlocked and not marked to keep. It returns the
// removed directories.
func Prune(parent string) ([]string, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	entries, err := os.ReadDir(parent)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan workspaces: %w", err)
	}

	var removed []string
	var errs []error
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), dirPrefix) {
			continue
		}
		dir := filepath.Join(parent, e.Name())
		if _, err := os.Stat(filepath.Join(dir, keepMarker)); err == nil {
			continue
		}
		lk := flock.New(filepath.Join(dir, lockName))
		locked, err := lk.TryLock()
		if err != nil || !locked {
			continue
		}
		rmErr := os.RemoveAll(dir)
		_ = lk.Unlock()
		if rmErr != nil {
			errs = append(errs, rmErr)
			continue
		}
		removed = append(removed, dir)
	}
	return removed, errors.Join(errs...)
}

// storage.go - Flat-directory file store.
//
// Every name passed to DirStorage must already have been through
// SanitizeFilename. Uploads are staged under a hidden name and then claimed
// with os.Link, which fails if the target exists, so a stored file is never
// overwritten and never visible half written.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	stagingPrefix = ".upload-"
	stagingSuffix = ".part"
)

// StoredFile is the metadata of one stored file, read live from the filesystem.
type StoredFile struct {
	Name     string
	Size     int64
	Modified time.Time
}

// DirStorage stores files directly inside a single directory.
type DirStorage struct {
	dir string
}

// NewDirStorage returns a store rooted at dir, creating it if needed.
func NewDirStorage(dir string) (*DirStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DirStorage{dir: abs}, nil
}

// Dir returns the absolute storage directory.
func (s *DirStorage) Dir() string { return s.dir }

func (s *DirStorage) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether anything occupies name. Errors other than "does
// not exist" are returned rather than guessed at.
func (s *DirStorage) Exists(name string) (bool, error) {
	_, err := os.Lstat(s.path(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Save writes r under safeName, or under the first free stem_N variant of
// it, and returns the final name and the number of bytes stored. Nothing is
// left behind on failure.
func (s *DirStorage) Save(ctx context.Context, safeName string, r io.Reader) (string, int64, error) {
	tmpPath, size, err := s.stage(ctx, r)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = os.Remove(tmpPath) }()

	name, err := s.claim(safeName, tmpPath)
	if err != nil {
		return "", 0, err
	}
	return name, size, nil
}

// stage copies r into a new hidden staging file and returns its path.
func (s *DirStorage) stage(ctx context.Context, r io.Reader) (string, int64, error) {
	tmpPath := s.path(stagingPrefix + uuid.NewString() + stagingSuffix)
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, &StorageError{Op: "create", Err: err}
	}

	size, err := io.Copy(f, r)
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", 0, &StorageError{Op: "write", Err: err}
	}
	return tmpPath, size, nil
}

// claim links tmpPath to the first free variant of safeName. Losing a race
// to a concurrent upload just moves the search on to the next suffix. Any
// other filesystem error ends the search.
func (s *DirStorage) claim(safeName, tmpPath string) (string, error) {
	var statErr error
	exists := func(name string) bool {
		taken, err := s.Exists(name)
		if err != nil {
			statErr = err
			return false
		}
		return taken
	}

	n := 0
	for {
		var name string
		name, n = resolveFrom(safeName, n, exists)
		if statErr != nil {
			return "", &StorageError{Op: "stat", Err: statErr}
		}

		err := os.Link(tmpPath, s.path(name))
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", &StorageError{Op: "link", Err: err}
		}
		n++
	}
}

// List returns the regular files directly inside the directory, sorted by
// name in byte order. Staging files and other dotfiles are skipped, as are
// entries removed while the listing runs.
func (s *DirStorage) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &StorageError{Op: "readdir", Err: err}
	}

	files := make([]StoredFile, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := os.Stat(s.path(e.Name()))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, &StorageError{Op: "stat", Err: err}
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, StoredFile{
			Name:     e.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Open opens a stored file for reading. Anything that is not a regular file
// reports ErrNotFound.
func (s *DirStorage) Open(name string) (*os.File, StoredFile, error) {
	if name == "" || strings.HasPrefix(name, ".") {
		return nil, StoredFile{}, ErrNotFound
	}

	f, err := os.Open(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, StoredFile{}, ErrNotFound
		}
		return nil, StoredFile{}, &StorageError{Op: "open", Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, StoredFile{}, &StorageError{Op: "stat", Err: err}
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, StoredFile{}, ErrNotFound
	}

	return f, StoredFile{Name: name, Size: info.Size(), Modified: info.ModTime()}, nil
}

// Check verifies the directory exists and is writable.
func (s *DirStorage) Check() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return &StorageError{Op: "stat", Err: err}
	}
	if !info.IsDir() {
		return &StorageError{Op: "stat", Err: fmt.Errorf("%s is not a directory", s.dir)}
	}

	probe := s.path(".health-" + uuid.NewString())
	f, err := os.OpenFile(probe, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return &StorageError{Op: "probe", Err: err}
	}
	_ = f.Close()
	return os.Remove(probe)
}

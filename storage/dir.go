// This file is part of cpvc.
//
// cpvc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cpvc is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with cpvc.  If not, see <https://www.gnu.org/licenses/>.

package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Dir implements the Storage interface for a directory on the host
// filesystem.
type Dir struct {
	path string
}

// NewDir is the preferred method of initialisation for the Dir type. The
// directory is created if it does not exist.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) String() string {
	return d.path
}

// resolve the name to a path inside the directory. names cannot refer to
// other directories.
func (d *Dir) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("storage: invalid file name (%s)", name)
	}
	return filepath.Join(d.path, name), nil
}

// Create implements the Storage interface.
func (d *Dir) Create(name string) (Writer, error) {
	pth, err := d.resolve(name)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(d.path, ".cpvc-tmp-*")
	if err != nil {
		return nil, fmt.Errorf("storage: create: %w", err)
	}

	return &atomicFile{
		tmp:    tmp,
		target: pth,
	}, nil
}

// Open implements the Storage interface.
func (d *Dir) Open(name string) (io.ReadCloser, error) {
	pth, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(pth)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	return f, nil
}

// Exists implements the Storage interface.
func (d *Dir) Exists(name string) bool {
	pth, err := d.resolve(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(pth)
	return err == nil
}

// atomicFile is written to a temporary file which is renamed to the target on
// Close().
type atomicFile struct {
	tmp    *os.File
	target string
	done   bool
}

func (f *atomicFile) Write(p []byte) (int, error) {
	if f.done {
		return 0, fmt.Errorf("storage: write to closed file")
	}
	return f.tmp.Write(p)
}

// Close commits the file.
func (f *atomicFile) Close() error {
	if f.done {
		return nil
	}
	f.done = true

	if err := f.tmp.Sync(); err != nil {
		f.discard()
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := f.tmp.Close(); err != nil {
		os.Remove(f.tmp.Name())
		return fmt.Errorf("storage: close: %w", err)
	}
	if err := os.Rename(f.tmp.Name(), f.target); err != nil {
		os.Remove(f.tmp.Name())
		return fmt.Errorf("storage: rename: %w", err)
	}

	// make sure the rename is durable
	dir, err := os.Open(filepath.Dir(f.target))
	if err != nil {
		return fmt.Errorf("storage: fsync dir: %w", err)
	}
	defer dir.Close()
	if err := dir.Sync(); err != nil {
		return fmt.Errorf("storage: fsync dir: %w", err)
	}

	return nil
}

// Abort discards the file. The target file is not changed.
func (f *atomicFile) Abort() error {
	if f.done {
		return nil
	}
	f.done = true
	f.discard()
	return nil
}

func (f *atomicFile) discard() {
	f.tmp.Close()
	os.Remove(f.tmp.Name())
}

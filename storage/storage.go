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


// Package storage is where machine files are kept. The Storage interface is
// implemented by Dir, for files in a directory of the host filesystem, and by
// Memory, which is useful for testing.
//
// Writes are atomic. A file created with Create() does not replace an existing
// file of the same name until the writer is closed successfully.
package storage

import "io"

// Storage is the interface to a collection of named files.
type Storage interface {
	// Create returns a writer for the named file. The contents are committed
	// when Close() is called. Call Abort() instead of Close() to discard the
	// contents
	Create(name string) (Writer, error)

	// Open returns a reader for the named file
	Open(name string) (io.ReadCloser, error)

	// Exists returns true if the named file exists
	Exists(name string) bool
}

// Writer is returned by Storage.Create().
type Writer interface {
	io.WriteCloser
	Abort() error
}

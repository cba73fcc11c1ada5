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
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Memory implements the Storage interface with files held in memory.
type Memory struct {
	crit  sync.Mutex
	files map[string][]byte
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory() *Memory {
	return &Memory{
		files: make(map[string][]byte),
	}
}

// Create implements the Storage interface.
func (m *Memory) Create(name string) (Writer, error) {
	if name == "" {
		return nil, fmt.Errorf("storage: invalid file name (%s)", name)
	}
	return &memoryFile{mem: m, name: name}, nil
}

// Open implements the Storage interface.
func (m *Memory) Open(name string) (io.ReadCloser, error) {
	m.crit.Lock()
	defer m.crit.Unlock()
	b, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("storage: open: %s does not exist", name)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

// Exists implements the Storage interface.
func (m *Memory) Exists(name string) bool {
	m.crit.Lock()
	defer m.crit.Unlock()
	_, ok := m.files[name]
	return ok
}

// Bytes returns a copy of the named file. Returns nil if the file does not
// exist.
func (m *Memory) Bytes(name string) []byte {
	m.crit.Lock()
	defer m.crit.Unlock()
	b, ok := m.files[name]
	if !ok {
		return nil
	}
	return append([]byte{}, b...)
}

// Put replaces the named file with the data.
func (m *Memory) Put(name string, data []byte) {
	m.crit.Lock()
	defer m.crit.Unlock()
	m.files[name] = append([]byte{}, data...)
}

type memoryFile struct {
	mem  *Memory
	name string
	buf  bytes.Buffer
	done bool
}

func (f *memoryFile) Write(p []byte) (int, error) {
	if f.done {
		return 0, fmt.Errorf("storage: write to closed file")
	}
	return f.buf.Write(p)
}

func (f *memoryFile) Close() error {
	if f.done {
		return nil
	}
	f.done = true
	f.mem.Put(f.name, f.buf.Bytes())
	return nil
}

func (f *memoryFile) Abort() error {
	f.done = true
	return nil
}

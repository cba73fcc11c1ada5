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

package machine

import (
	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/historyfile"
	"github.com/alybaek2/cpvc-sub002/logger"
	"github.com/alybaek2/cpvc-sub002/storage"
)

// write the machine to the named file. the machine is paused only for as long
// as it takes to copy the history.
func (m *Machine) write(dest storage.Storage, filename string, diffs bool) error {
	tree, state, err := m.Snapshot()
	if err != nil {
		return err
	}

	f := historyfile.File{
		ID:    m.ID(),
		Name:  m.Name(),
		Tree:  tree,
		State: state,
	}

	w, err := dest.Create(filename)
	if err != nil {
		return curated.Errorf(curated.InvalidState, err)
	}

	if err := historyfile.Encode(w, f, diffs); err != nil {
		_ = w.Abort()
		return curated.Errorf(curated.InvalidState, err)
	}

	if err := w.Close(); err != nil {
		return curated.Errorf(curated.InvalidState, err)
	}

	logger.Logf(logger.Allow, "machine", "wrote %d events to %s (diffs=%v)", tree.Len(), filename, diffs)

	return nil
}

// Persist writes the complete history and the state of the live machine to
// the named file. Bookmark snapshots are written in full.
func (m *Machine) Persist(dest storage.Storage, filename string) error {
	return m.write(dest, filename, false)
}

// Open replaces the history and state of the machine with the contents of the
// named file. If the file cannot be read the machine is left unchanged.
func (m *Machine) Open(source storage.Storage, filename string) error {
	f, err := read(source, filename)
	if err != nil {
		return err
	}

	if err := m.Install(f.Tree, f.State); err != nil {
		return err
	}

	m.crit.Lock()
	m.id = f.ID
	m.crit.Unlock()
	m.SetName(f.Name)

	logger.Logf(logger.Allow, "machine", "opened %s from %s", f.Name, filename)

	return nil
}

// Compact rewrites the machine file. If enableDiffs is true, bookmark
// snapshots are stored as differences from earlier bookmarks, which makes the
// file smaller.
//
// Only one compaction can happen at a time.
func (m *Machine) Compact(enableDiffs bool) error {
	if !m.compacting.CompareAndSwap(false, true) {
		return curated.Errorf(curated.CompactionInProgress)
	}
	defer m.compacting.Store(false)

	if m.store == nil {
		return curated.Errorf(curated.InvalidState, "machine: no storage to compact")
	}

	if err := m.write(m.store, m.filename, enableDiffs); err != nil {
		return err
	}

	m.crit.Lock()
	m.diffs = enableDiffs
	m.crit.Unlock()

	return nil
}

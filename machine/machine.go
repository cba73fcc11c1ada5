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
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/alybaek2/cpvc-sub002/controller"
	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/emulation"
	"github.com/alybaek2/cpvc-sub002/history"
	"github.com/alybaek2/cpvc-sub002/historyfile"
	"github.com/alybaek2/cpvc-sub002/logger"
	"github.com/alybaek2/cpvc-sub002/notifications"
	"github.com/alybaek2/cpvc-sub002/pipeline"
	"github.com/alybaek2/cpvc-sub002/storage"
)

// Machine is an emulated machine with a history.
type Machine struct {
	*controller.Controller

	hub *notifications.Hub

	crit sync.Mutex
	id   uuid.UUID
	name string

	// where the machine file is kept. store can be nil, in which case the
	// machine is not saved when it is closed and cannot be compacted
	store    storage.Storage
	filename string

	// bookmark snapshots are written as differences when the machine file is
	// written on close. follows the file the machine was loaded from and the
	// most recent compaction
	diffs bool

	compacting atomic.Bool
	closed     atomic.Bool
}

func build(engine emulation.Engine, tree *history.Tree, prefs *controller.Preferences) *Machine {
	m := &Machine{
		hub: notifications.NewHub(),
	}
	m.Controller = controller.NewController(engine, tree, pipeline.NewPipeline(m.hub), m.hub, prefs)
	return m
}

// New creates a machine with a new history. The history starts with a
// bookmark of the engine in its current state.
//
// The store and filename arguments say where the machine file is kept. The
// file is not written until the machine is persisted or closed.
func New(name string, engine emulation.Engine, store storage.Storage, filename string, prefs *controller.Preferences) (*Machine, error) {
	snapshot, err := engine.Serialize()
	if err != nil {
		return nil, curated.Errorf(curated.InvalidState, err)
	}

	tree := history.NewTree()
	if _, err := tree.AddBookmark(engine.CurrentTick(), snapshot, false); err != nil {
		return nil, err
	}

	m := build(engine, tree, prefs)
	m.id = uuid.New()
	m.name = name
	m.store = store
	m.filename = filename

	logger.Logf(logger.Allow, "machine", "created %s (%s)", name, m.id)

	return m, nil
}

// Load a machine from the named file. The engine is restored to the state
// in the file.
func Load(engine emulation.Engine, store storage.Storage, filename string, prefs *controller.Preferences) (*Machine, error) {
	f, err := read(store, filename)
	if err != nil {
		return nil, err
	}

	if err := engine.Restore(f.State); err != nil {
		return nil, curated.Errorf(curated.CorruptPersistedData, err)
	}

	m := build(engine, f.Tree, prefs)
	m.id = f.ID
	m.name = f.Name
	m.store = store
	m.filename = filename
	m.diffs = f.Diffs

	logger.Logf(logger.Allow, "machine", "loaded %s (%s) with %d events", m.name, m.id, f.Tree.Len())

	return m, nil
}

func read(source storage.Storage, filename string) (historyfile.File, error) {
	r, err := source.Open(filename)
	if err != nil {
		return historyfile.File{}, curated.Errorf(curated.InvalidState, err)
	}
	defer r.Close()
	return historyfile.Decode(r)
}

// ID returns the unique identifier of the machine.
func (m *Machine) ID() uuid.UUID {
	m.crit.Lock()
	defer m.crit.Unlock()
	return m.id
}

// Name returns the name of the machine.
func (m *Machine) Name() string {
	m.crit.Lock()
	defer m.crit.Unlock()
	return m.name
}

// SetName changes the name of the machine.
func (m *Machine) SetName(name string) {
	m.crit.Lock()
	changed := m.name != name
	m.name = name
	m.crit.Unlock()

	if changed {
		m.hub.Notify(notifications.Event{
			Notice: notifications.NameChanged,
			Detail: name,
		})
	}
}

// Filename returns the name of the machine file in the machine's storage.
func (m *Machine) Filename() string {
	return m.filename
}

// Subscribe to the machine's notifications.
func (m *Machine) Subscribe(buffer int) *notifications.Subscription {
	return m.hub.Subscribe(buffer)
}

// Close the machine. If the machine has storage, the machine file is written
// first, in the same form as it was last written by Compact() or as it was
// found by Load(). The machine is closed even if the file cannot be written.
//
// Closing a closed machine does nothing.
func (m *Machine) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if m.store != nil {
		m.crit.Lock()
		diffs := m.diffs
		m.crit.Unlock()
		err = m.write(m.store, m.filename, diffs)
	}
	m.Controller.Close()
	logger.Logf(logger.Allow, "machine", "closed %s", m.Name())
	return err
}

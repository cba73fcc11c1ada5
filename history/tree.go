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

package history

import (
	"time"

	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/request"
)

// Tree is the history of a machine.
type Tree struct {
	// arena of events indexed by EventID. deleted events leave a nil entry
	events []*Event

	// number of non-nil entries in the arena
	count int

	current EventID

	// the deepest position visited before the current position was moved
	// back towards the root. used to decide which branch to follow when
	// seeking forward
	visited EventID

	// events added while replaying do not move the current position
	replaying bool
}

// NewTree is the preferred method of initialisation for the Tree type. The
// new tree contains only the root event.
func NewTree() *Tree {
	t := &Tree{
		visited: NoParent,
	}
	t.events = append(t.events, &Event{
		ID:      RootID,
		Parent:  NoParent,
		Kind:    Root,
		Created: time.Now(),
	})
	t.count = 1
	return t
}

// Len returns the number of events in the tree, including the root.
func (t *Tree) Len() int {
	return t.count
}

// Size returns the size of the arena. This is the ID that will be given to the
// next event added to the tree.
func (t *Tree) Size() int {
	return len(t.events)
}

// Root returns the root event.
func (t *Tree) Root() Event {
	return t.events[RootID].copy()
}

// CurrentID returns the ID of the current position.
func (t *Tree) CurrentID() EventID {
	return t.current
}

// Current returns the event at the current position.
func (t *Tree) Current() Event {
	return t.events[t.current].copy()
}

// Event returns the event with the specified ID.
func (t *Tree) Event(id EventID) (Event, bool) {
	e := t.get(id)
	if e == nil {
		return Event{}, false
	}
	return e.copy(), true
}

func (t *Tree) get(id EventID) *Event {
	if id >= EventID(len(t.events)) {
		return nil
	}
	return t.events[id]
}

// lookup is like get() but returns a curated error if the event does not
// exist.
func (t *Tree) lookup(id EventID) (*Event, error) {
	e := t.get(id)
	if e == nil {
		return nil, curated.Errorf(curated.StructuralViolation, curated.Errorf(curated.UnknownEvent, id))
	}
	return e, nil
}

// SetReplaying changes whether new events move the current position.
func (t *Tree) SetReplaying(replaying bool) {
	t.replaying = replaying
}

// Replaying returns the value set by SetReplaying().
func (t *Tree) Replaying() bool {
	return t.replaying
}

// AddEvent adds a RequestEvent as a child of the current position.
func (t *Tree) AddEvent(tick uint64, r request.Request) (EventID, error) {
	if r.IsZero() {
		return NoParent, curated.Errorf(curated.InvalidState, "history: cannot add an empty request")
	}
	return t.add(&Event{
		Kind:    RequestEvent,
		Tick:    tick,
		Request: r,
	})
}

// AddBookmark adds a BookmarkEvent as a child of the current position. The
// snapshot is not copied and must not be changed after the call.
func (t *Tree) AddBookmark(tick uint64, snapshot []byte, user bool) (EventID, error) {
	return t.add(&Event{
		Kind:         BookmarkEvent,
		Tick:         tick,
		Snapshot:     snapshot,
		UserBookmark: user,
	})
}

func (t *Tree) add(e *Event) (EventID, error) {
	parent := t.events[t.current]

	if e.Tick < parent.Tick {
		return NoParent, curated.Errorf(curated.StructuralViolation, curated.Errorf(curated.TickOrder, e.Tick, parent.Tick))
	}

	// an identical child already exists. follow it rather than creating a
	// duplicate branch
	for _, c := range parent.Children {
		if t.events[c].same(e) {
			if !t.replaying {
				t.move(c)
			}
			return c, nil
		}
	}

	e.ID = EventID(len(t.events))
	e.Parent = parent.ID
	e.depth = parent.depth + 1
	e.Created = time.Now()
	t.events = append(t.events, e)
	t.count++
	parent.Children = append(parent.Children, e.ID)

	if !t.replaying {
		t.move(e.ID)
	}

	return e.ID, nil
}

// move the current position and update the visited field.
func (t *Tree) move(id EventID) {
	old := t.current
	if old == id {
		return
	}
	t.current = id

	// one step forward is the usual case when events are being added
	if e := t.get(id); e != nil && e.Parent == old {
		if t.visited != NoParent && (t.visited == id || !t.isAncestor(id, t.visited)) {
			t.visited = NoParent
		}
		return
	}

	if t.isAncestor(id, old) {
		// moving back towards the root. remember the deepest point we've
		// been to so that a forward seek can return there
		if t.visited == NoParent || t.get(t.visited) == nil || !t.isAncestor(old, t.visited) {
			t.visited = old
		}
		return
	}

	// moving forwards or to another branch. forget the visited position
	// unless it is still ahead of us
	if t.visited != NoParent && (t.get(t.visited) == nil || !t.isAncestor(id, t.visited) || t.visited == id) {
		t.visited = NoParent
	}
}

// JumpTo moves the current position to the bookmark. The caller is
// responsible for restoring the machine to the bookmark's snapshot before
// calling JumpTo().
func (t *Tree) JumpTo(id EventID) error {
	if t.replaying {
		return curated.Errorf(curated.AlreadyReplaying)
	}

	e, err := t.lookup(id)
	if err != nil {
		return err
	}

	if e.Kind != BookmarkEvent {
		return curated.Errorf(curated.StructuralViolation, curated.Errorf(curated.NotABookmark, id))
	}

	t.move(id)

	return nil
}

// isAncestor returns true if a is b or an ancestor of b. only the depth
// difference between the two events is walked.
func (t *Tree) isAncestor(a EventID, b EventID) bool {
	ea, eb := t.get(a), t.get(b)
	if ea == nil || eb == nil || ea.depth > eb.depth {
		return false
	}
	for eb.depth > ea.depth {
		eb = t.get(eb.Parent)
		if eb == nil {
			return false
		}
	}
	return eb.ID == a
}

// IsAncestor returns true if a is an ancestor of b, or if a and b are the
// same event.
func (t *Tree) IsAncestor(a EventID, b EventID) bool {
	if t.get(a) == nil || t.get(b) == nil {
		return false
	}
	return t.isAncestor(a, b)
}

// Path returns the events from the ancestor event to the descendant event,
// both inclusive, ordered from ancestor to descendant.
func (t *Tree) Path(ancestor EventID, descendant EventID) ([]Event, error) {
	if _, err := t.lookup(ancestor); err != nil {
		return nil, err
	}
	if _, err := t.lookup(descendant); err != nil {
		return nil, err
	}
	if !t.isAncestor(ancestor, descendant) {
		return nil, curated.Errorf(curated.StructuralViolation, curated.Errorf(curated.NotOnPath, descendant, ancestor))
	}

	var path []Event
	for id := descendant; ; id = t.events[id].Parent {
		path = append(path, t.events[id].copy())
		if id == ancestor {
			break
		}
	}

	// reverse so that the ancestor is first
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, nil
}

// Walk calls the function for every event in the tree in order of creation.
// Walk stops early if the function returns false.
func (t *Tree) Walk(f func(e Event) bool) {
	for _, e := range t.events {
		if e == nil {
			continue
		}
		if !f(e.copy()) {
			return
		}
	}
}

// Bookmarks returns all bookmark events in order of creation.
func (t *Tree) Bookmarks() []Event {
	var b []Event
	t.Walk(func(e Event) bool {
		if e.Kind == BookmarkEvent {
			b = append(b, e)
		}
		return true
	})
	return b
}

// Clone returns a copy of the tree. Request and snapshot data is shared
// between the trees but it is never modified so this is safe.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		events:    make([]*Event, len(t.events)),
		count:     t.count,
		current:   t.current,
		visited:   t.visited,
		replaying: t.replaying,
	}
	for i, e := range t.events {
		if e != nil {
			n := e.copy()
			c.events[i] = &n
		}
	}
	return c
}

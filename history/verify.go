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
	"fmt"
	"sort"
)

// Verify checks the integrity of the tree. It returns an error describing the
// first problem found.
func (t *Tree) Verify() error {
	if len(t.events) == 0 || t.events[RootID] == nil {
		return fmt.Errorf("history: tree has no root")
	}

	root := t.events[RootID]
	if root.Kind != Root || root.Parent != NoParent {
		return fmt.Errorf("history: malformed root event")
	}

	count := 0
	for i, e := range t.events {
		if e == nil {
			continue
		}
		count++

		if e.ID != EventID(i) {
			return fmt.Errorf("history: event %d stored at index %d", e.ID, i)
		}

		if e.ID != RootID {
			if e.Kind == Root {
				return fmt.Errorf("history: event %d is a second root", e.ID)
			}

			p := t.get(e.Parent)
			if p == nil {
				return fmt.Errorf("history: event %d has missing parent %d", e.ID, e.Parent)
			}
			if e.Tick < p.Tick {
				return fmt.Errorf("history: event %d has tick %d which precedes parent tick %d", e.ID, e.Tick, p.Tick)
			}
			if e.depth != p.depth+1 {
				return fmt.Errorf("history: event %d has depth %d but parent %d has depth %d", e.ID, e.depth, p.ID, p.depth)
			}

			n := 0
			for _, c := range p.Children {
				if c == e.ID {
					n++
				}
			}
			if n != 1 {
				return fmt.Errorf("history: event %d appears %d times in children of %d", e.ID, n, p.ID)
			}
		}

		switch e.Kind {
		case RequestEvent:
			if e.Request.IsZero() {
				return fmt.Errorf("history: request event %d has no request", e.ID)
			}
		case Root, BookmarkEvent, Marker:
		default:
			return fmt.Errorf("history: event %d has unknown kind (%d)", e.ID, e.Kind)
		}

		for _, c := range e.Children {
			ce := t.get(c)
			if ce == nil || ce.Parent != e.ID {
				return fmt.Errorf("history: event %d lists %d as a child but is not its parent", e.ID, c)
			}
		}
	}

	if count != t.count {
		return fmt.Errorf("history: event count is %d but %d events were found", t.count, count)
	}

	// every event must be reachable from the root. together with the parent
	// checks above this means there are no cycles
	reached := 0
	stack := []EventID{RootID}
	seen := make(map[EventID]bool)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			return fmt.Errorf("history: event %d reached more than once", id)
		}
		seen[id] = true
		reached++
		stack = append(stack, t.events[id].Children...)
	}
	if reached != count {
		return fmt.Errorf("history: %d events are not reachable from the root", count-reached)
	}

	if t.get(t.current) == nil {
		return fmt.Errorf("history: current position %d does not exist", t.current)
	}

	return nil
}

// the largest arena that Rebuild() will accept.
const maxArena = 1 << 26

// Rebuild creates a tree from a list of events. The Children field of the
// events is ignored and recreated from the Parent field, ordered by ID. The
// size argument is the value of Size() for the tree the events came from, so
// that IDs of deleted events are not reused. The tree is verified before it
// is returned.
func Rebuild(events []Event, current EventID, size int) (*Tree, error) {
	if size < len(events) || size > maxArena {
		return nil, fmt.Errorf("history: invalid arena size (%d)", size)
	}

	t := &Tree{
		current: current,
		visited: NoParent,
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	for i := range sorted {
		e := sorted[i]
		if e.ID >= EventID(size) {
			return nil, fmt.Errorf("history: event id %d outside of arena", e.ID)
		}
		if int(e.ID) < len(t.events) {
			return nil, fmt.Errorf("history: duplicate event %d", e.ID)
		}
		for EventID(len(t.events)) < e.ID {
			t.events = append(t.events, nil)
		}
		e.Children = nil
		t.events = append(t.events, &e)
		t.count++
	}

	for len(t.events) < size {
		t.events = append(t.events, nil)
	}

	for _, e := range t.events {
		if e == nil || e.Parent == NoParent {
			continue
		}
		p := t.get(e.Parent)
		if p == nil {
			return nil, fmt.Errorf("history: event %d has missing parent %d", e.ID, e.Parent)
		}
		p.Children = append(p.Children, e.ID)
	}

	// depths are set from the root down. events that cannot be reached, or
	// that are reached twice, are left for Verify() to report
	if root := t.get(RootID); root != nil {
		seen := make([]bool, len(t.events))
		seen[RootID] = true
		queue := []EventID{RootID}
		for len(queue) > 0 {
			e := t.events[queue[0]]
			queue = queue[1:]
			for _, c := range e.Children {
				if seen[c] {
					continue
				}
				seen[c] = true
				t.events[c].depth = e.depth + 1
				queue = append(queue, c)
			}
		}
	}

	if err := t.Verify(); err != nil {
		return nil, err
	}

	return t, nil
}

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
	"github.com/alybaek2/cpvc-sub002/curated"
)

// DeleteBookmarks removes the bookmarks from the tree. A bookmark with
// children is demoted to a Marker so that the children (and their ticks) are
// preserved. A bookmark without children is removed altogether, as is any
// Marker that is left without children as a result.
//
// The current position and its ancestors cannot be deleted. All IDs are
// checked before any change is made to the tree.
func (t *Tree) DeleteBookmarks(ids []EventID) error {
	for _, id := range ids {
		e, err := t.lookup(id)
		if err != nil {
			return err
		}
		if e.Kind != BookmarkEvent {
			return curated.Errorf(curated.StructuralViolation, curated.Errorf(curated.NotABookmark, id))
		}
		if t.isAncestor(id, t.current) {
			return curated.Errorf(curated.StructuralViolation, curated.Errorf(curated.CurrentPositionProtected, id))
		}
	}

	for _, id := range ids {
		e := t.get(id)

		// the same id might appear more than once in the list or it has been
		// removed as a consequence of an earlier deletion in the list
		if e == nil || e.Kind != BookmarkEvent {
			continue
		}

		if len(e.Children) > 0 {
			e.Kind = Marker
			e.Snapshot = nil
			e.UserBookmark = false
			continue
		}

		parent := e.Parent
		t.remove(id)

		// prune markers that no longer lead anywhere
		for parent != NoParent {
			p := t.events[parent]
			if p.Kind != Marker || len(p.Children) > 0 || parent == t.current {
				break
			}
			parent = p.Parent
			t.remove(p.ID)
		}
	}

	return nil
}

// DeleteBranches removes the events and all their descendants from the tree.
// None of the branches can contain the current position. The root can never
// be deleted for that reason. All IDs are checked before any change is made
// to the tree.
func (t *Tree) DeleteBranches(ids []EventID) error {
	for _, id := range ids {
		if _, err := t.lookup(id); err != nil {
			return err
		}
		if t.isAncestor(id, t.current) {
			return curated.Errorf(curated.StructuralViolation, curated.Errorf(curated.CurrentPositionProtected, id))
		}
	}

	for _, id := range ids {
		// branch might have been removed already as part of an earlier branch
		if t.get(id) == nil {
			continue
		}

		var subtree []EventID
		stack := []EventID{id}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			subtree = append(subtree, n)
			stack = append(stack, t.events[n].Children...)
		}

		// removing leaves first keeps the parent's children list consistent
		for i := len(subtree) - 1; i >= 0; i-- {
			t.remove(subtree[i])
		}
	}

	return nil
}

// remove a single event. the event must not have any children.
func (t *Tree) remove(id EventID) {
	e := t.events[id]

	if p := t.get(e.Parent); p != nil {
		for i, c := range p.Children {
			if c == id {
				p.Children = append(p.Children[:i], p.Children[i+1:]...)
				break
			}
		}
	}

	t.events[id] = nil
	t.count--

	if t.visited == id {
		t.visited = NoParent
	}
}
